package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/organizainador/organizer-service/internal/config"
	"github.com/organizainador/organizer-service/internal/events"
	"github.com/organizainador/organizer-service/internal/models"
	"github.com/organizainador/organizer-service/internal/repositories"
	"github.com/organizainador/organizer-service/internal/scheduling"
	"github.com/organizainador/organizer-service/internal/validator"
)

type scheduleService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator

	location *time.Location
	mode     config.ConflictMode
	now      func() time.Time
}

func NewScheduleService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator, location *time.Location, mode config.ConflictMode) ScheduleService {
	if location == nil {
		location = time.UTC
	}
	return &scheduleService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		location:  location,
		mode:      mode,
		now:       time.Now,
	}
}

// slotTiming is the normalized when of a slot.
type slotTiming struct {
	isRecurring bool
	day         models.Weekday
	date        *datatypes.Date
	start       datatypes.Time
	end         datatypes.Time
}

// normalizeTiming canonicalizes request timing. One-off slots take their
// weekday from the date; recurring slots carry no date.
func normalizeTiming(isRecurring bool, day models.Weekday, date *string, start, end string) (slotTiming, error) {
	var timing slotTiming
	var err error

	timing.isRecurring = isRecurring
	if timing.start, err = models.ParseClock(start); err != nil {
		return slotTiming{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if timing.end, err = models.ParseClock(end); err != nil {
		return slotTiming{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	if isRecurring {
		if timing.day, err = models.ParseWeekday(string(day)); err != nil {
			return slotTiming{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		return timing, nil
	}

	if date == nil {
		return slotTiming{}, fmt.Errorf("%w: one-off slot has no date", ErrBadRequest)
	}
	d, err := models.ParseDate(*date)
	if err != nil {
		return slotTiming{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	timing.date = &d
	timing.day = models.WeekdayOf(time.Time(d))
	return timing, nil
}

func (t slotTiming) apply(slot *models.ScheduleSlot) {
	slot.IsRecurring = t.isRecurring
	slot.DayOfWeek = t.day
	slot.SpecificDate = t.date
	slot.StartTime = t.start
	slot.EndTime = t.end
}

func (t slotTiming) candidate(userID string, excludeSlotID *uint) scheduling.Candidate {
	candidate := scheduling.Candidate{
		UserID:        userID,
		DayOfWeek:     t.day,
		Start:         t.start,
		End:           t.end,
		ExcludeSlotID: excludeSlotID,
	}
	if t.date != nil {
		d := time.Time(*t.date)
		candidate.Date = &d
	}
	return candidate
}

// ===== CORE CRUD OPERATIONS =====

func (s *scheduleService) Create(ctx context.Context, req *CreateSlotRequest, userID string) (*models.SlotSummary, error) {
	s.logger.Info("Creating schedule slot",
		"user_id", userID,
		"class_id", req.ClassID,
		"activity_id", req.ActivityID,
		"is_recurring", req.IsRecurring)

	if errors := s.validator.GetBusinessValidator().ValidateSlotCreate(req, s.location); len(errors) > 0 {
		return nil, errors
	}

	slot := &models.ScheduleSlot{}
	if err := s.attachOwner(ctx, slot, req.ClassID, req.ActivityID, userID); err != nil {
		return nil, err
	}

	timing, err := normalizeTiming(req.IsRecurring, req.DayOfWeek, req.SpecificDate, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	timing.apply(slot)

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := s.ensureNoConflict(ctx, tx, timing.candidate(userID, nil)); err != nil {
			return err
		}
		if err := tx.Slot().Create(ctx, nil, slot); err != nil {
			return fmt.Errorf("failed to create schedule slot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Schedule slot created successfully", "slot_id", slot.ID, "day_of_week", slot.DayOfWeek)
	publishEvent(ctx, s.publisher, s.logger, events.SlotCreated, userID, newSlotPayload(slot))

	summary := models.NewSlotSummary(slot)
	return &summary, nil
}

func (s *scheduleService) GetByID(ctx context.Context, id uint, userID string) (*models.SlotSummary, error) {
	slot, err := s.getOwned(ctx, id, userID, "read")
	if err != nil {
		return nil, err
	}
	summary := models.NewSlotSummary(slot)
	return &summary, nil
}

// Update replaces the timing of a slot. The slot itself is left out of the
// conflict check.
func (s *scheduleService) Update(ctx context.Context, id uint, req *UpdateSlotRequest, userID string) (*models.SlotSummary, error) {
	slot, err := s.getOwned(ctx, id, userID, "update")
	if err != nil {
		return nil, err
	}

	if errors := s.validator.GetBusinessValidator().ValidateSlotUpdate(req, slot); len(errors) > 0 {
		return nil, errors
	}

	timing, err := normalizeTiming(req.IsRecurring, req.DayOfWeek, req.SpecificDate, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	timing.apply(slot)

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := s.ensureNoConflict(ctx, tx, timing.candidate(userID, &slot.ID)); err != nil {
			return err
		}
		if err := tx.Slot().Update(ctx, nil, slot); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrSlotNotFound
			}
			return fmt.Errorf("failed to update schedule slot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Schedule slot updated successfully", "slot_id", id)
	publishEvent(ctx, s.publisher, s.logger, events.SlotUpdated, userID, newSlotPayload(slot))

	summary := models.NewSlotSummary(slot)
	return &summary, nil
}

func (s *scheduleService) Delete(ctx context.Context, id uint, userID string) error {
	slot, err := s.getOwned(ctx, id, userID, "delete")
	if err != nil {
		return err
	}

	if err := s.repo.Slot().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSlotNotFound
		}
		return fmt.Errorf("failed to delete schedule slot: %w", err)
	}

	s.logger.Info("Schedule slot deleted successfully", "slot_id", id)
	publishEvent(ctx, s.publisher, s.logger, events.SlotDeleted, userID, newSlotPayload(slot))
	return nil
}

func (s *scheduleService) List(ctx context.Context, userID string, filters SlotListFilters) ([]models.SlotSummary, error) {
	filterType := strings.ToLower(strings.TrimSpace(filters.Type))
	switch filterType {
	case "", SlotTypeRecurring, SlotTypeOneOff:
	default:
		return nil, ValidationErrors{{
			Field:   "type",
			Message: "must be one of: recurring one_off",
			Value:   filters.Type,
			Rule:    "oneof",
		}}
	}

	slots, err := s.repo.Slot().ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule slots: %w", err)
	}

	search := strings.ToLower(strings.TrimSpace(filters.Search))
	matched := make([]*models.ScheduleSlot, 0, len(slots))
	for _, slot := range slots {
		if slot == nil {
			continue
		}
		if filterType == SlotTypeRecurring && !slot.IsRecurring {
			continue
		}
		if filterType == SlotTypeOneOff && slot.IsRecurring {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(slot.OwnerName()), search) {
			continue
		}
		matched = append(matched, slot)
	}

	sortSlots(matched)
	return summarize(matched), nil
}

// CheckConflict answers whether the described slot could be saved.
func (s *scheduleService) CheckConflict(ctx context.Context, req *ConflictCheckRequest, userID string) (*ConflictCheckResponse, error) {
	if errors := s.validator.GetBusinessValidator().ValidateConflictCheck(req); len(errors) > 0 {
		return nil, errors
	}
	if req.ExcludeSlotID != nil {
		if _, err := s.getOwned(ctx, *req.ExcludeSlotID, userID, "read"); err != nil {
			return nil, err
		}
	}

	timing, err := normalizeTiming(req.IsRecurring, req.DayOfWeek, req.SpecificDate, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	checker := scheduling.NewConflictChecker(slotSource{slots: s.repo.Slot()}, s.mode)
	conflict, err := checker.FindConflict(ctx, timing.candidate(userID, req.ExcludeSlotID))
	if err != nil {
		return nil, err
	}

	response := &ConflictCheckResponse{Mode: string(checker.Mode())}
	if conflict != nil {
		summary := models.NewSlotSummary(conflict)
		response.Conflict = true
		response.ConflictingSlot = &summary
	}
	return response, nil
}

func (s *scheduleService) TimeOptions() []string {
	return scheduling.QuarterHourOptions(s.now().In(s.location))
}

// ===== HELPERS =====

// ensureNoConflict checks the candidate against the user's slots as seen by
// tx. Concurrent writers of the same user wait on the lock.
func (s *scheduleService) ensureNoConflict(ctx context.Context, tx repositories.Repository, candidate scheduling.Candidate) error {
	if err := tx.Slot().LockUser(ctx, nil, candidate.UserID); err != nil {
		return err
	}

	checker := scheduling.NewConflictChecker(slotSource{slots: tx.Slot()}, s.mode)
	conflict, err := checker.FindConflict(ctx, candidate)
	if err != nil {
		return err
	}
	if conflict != nil {
		s.logger.Info("Schedule conflict detected",
			"user_id", candidate.UserID,
			"conflicting_slot_id", conflict.ID,
			"day_of_week", candidate.DayOfWeek)
		return &ScheduleConflictError{Conflict: conflict}
	}
	return nil
}

// attachOwner verifies the caller owns the referenced class or activity and
// links it to slot.
func (s *scheduleService) attachOwner(ctx context.Context, slot *models.ScheduleSlot, classID, activityID *uint, userID string) error {
	if classID != nil {
		class, err := s.repo.Class().GetByID(ctx, nil, *classID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrClassNotFound
			}
			return fmt.Errorf("failed to get class: %w", err)
		}
		if class.UserID != userID {
			return NewPermissionError(userID, *classID, "class", "schedule", "not owner")
		}
		slot.ClassID = &class.ID
		slot.Class = class
		return nil
	}

	activity, err := s.repo.Activity().GetByID(ctx, nil, *activityID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrActivityNotFound
		}
		return fmt.Errorf("failed to get activity: %w", err)
	}
	if activity.UserID != userID {
		return NewPermissionError(userID, *activityID, "activity", "schedule", "not owner")
	}
	slot.ActivityID = &activity.ID
	slot.Activity = activity
	return nil
}

func (s *scheduleService) getOwned(ctx context.Context, id uint, userID, action string) (*models.ScheduleSlot, error) {
	slot, err := s.repo.Slot().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to get schedule slot: %w", err)
	}
	if slot.OwnerUserID() != userID {
		return nil, NewPermissionError(userID, id, "schedule_slot", action, "not owner")
	}
	return slot, nil
}

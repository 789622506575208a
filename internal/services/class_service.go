package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/organizainador/organizer-service/internal/events"
	"github.com/organizainador/organizer-service/internal/models"
	"github.com/organizainador/organizer-service/internal/repositories"
	"github.com/organizainador/organizer-service/internal/validator"
)

type classService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewClassService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) ClassService {
	return &classService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

func (s *classService) Create(ctx context.Context, req *CreateClassRequest, userID string) (*models.Class, error) {
	s.logger.Info("Creating class", "user_id", userID, "name", req.Name)

	if errors := s.validator.GetBusinessValidator().Validate(req); len(errors) > 0 {
		return nil, errors
	}

	class := &models.Class{
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		Description: trimmed(req.Description),
		HoursPerDay: req.HoursPerDay,
	}
	if err := s.repo.Class().Create(ctx, nil, class); err != nil {
		return nil, fmt.Errorf("failed to create class: %w", err)
	}

	s.logger.Info("Class created successfully", "class_id", class.ID)
	return class, nil
}

func (s *classService) GetByID(ctx context.Context, id uint, userID string) (*models.Class, error) {
	return s.getOwned(ctx, id, userID, "read")
}

func (s *classService) Update(ctx context.Context, id uint, req *UpdateClassRequest, userID string) (*models.Class, error) {
	if errors := s.validator.GetBusinessValidator().Validate(req); len(errors) > 0 {
		return nil, errors
	}

	class, err := s.getOwned(ctx, id, userID, "update")
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		class.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		class.Description = trimmed(req.Description)
	}
	if req.HoursPerDay != nil {
		class.HoursPerDay = *req.HoursPerDay
	}

	if err := s.repo.Class().Update(ctx, nil, class); err != nil {
		return nil, fmt.Errorf("failed to update class: %w", err)
	}

	s.logger.Info("Class updated successfully", "class_id", id)
	return class, nil
}

// Delete removes the class together with its schedule slots.
func (s *classService) Delete(ctx context.Context, id uint, userID string) error {
	if _, err := s.getOwned(ctx, id, userID, "delete"); err != nil {
		return err
	}

	removed, err := s.repo.Class().Delete(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrClassNotFound
		}
		return fmt.Errorf("failed to delete class: %w", err)
	}

	s.logger.Info("Class deleted successfully", "class_id", id, "removed_slots", removed)
	publishEvent(ctx, s.publisher, s.logger, events.ClassDeleted, userID, events.OwnerDeletedPayload{
		OwnerID:      id,
		RemovedSlots: int(removed),
	})
	return nil
}

func (s *classService) List(ctx context.Context, userID string, filters repositories.ListFilters) (*ClassListResponse, error) {
	filters.Limit, filters.Offset = normalizePage(filters.Limit, filters.Offset)

	classes, total, err := s.repo.Class().ListByUser(ctx, nil, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}

	return &ClassListResponse{
		Classes: classes,
		Total:   total,
		Limit:   filters.Limit,
		Offset:  filters.Offset,
	}, nil
}

func (s *classService) GetSchedules(ctx context.Context, id uint, userID string) ([]models.SlotSummary, error) {
	class, err := s.getOwned(ctx, id, userID, "read")
	if err != nil {
		return nil, err
	}

	slots, err := s.repo.Slot().ListByClass(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list class schedules: %w", err)
	}
	for _, slot := range slots {
		slot.Class = class
	}
	return summarize(slots), nil
}

func (s *classService) getOwned(ctx context.Context, id uint, userID, action string) (*models.Class, error) {
	class, err := s.repo.Class().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("failed to get class: %w", err)
	}
	if class.UserID != userID {
		return nil, NewPermissionError(userID, id, "class", action, "not owner")
	}
	return class, nil
}

// trimmed returns nil for blank optional text.
func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}

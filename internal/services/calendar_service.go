package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/organizainador/organizer-service/internal/models"
	"github.com/organizainador/organizer-service/internal/repositories"
	"github.com/organizainador/organizer-service/internal/scheduling"
	"github.com/organizainador/organizer-service/internal/validator"
)

const calendarName = "Organizer schedule"

type calendarService struct {
	repo      repositories.Repository
	projector *scheduling.Projector
	logger    *slog.Logger
	now       func() time.Time
}

func NewCalendarService(repo repositories.Repository, projector *scheduling.Projector, logger *slog.Logger) CalendarService {
	return &calendarService{
		repo:      repo,
		projector: projector,
		logger:    logger,
		now:       time.Now,
	}
}

// Events projects the user's slots over the requested window.
func (s *calendarService) Events(ctx context.Context, userID string, query CalendarQuery) (*CalendarResponse, error) {
	window, occurrences, err := s.project(ctx, userID, query)
	if err != nil {
		return nil, err
	}

	response := &CalendarResponse{
		Start:  window.Start.Format(time.DateOnly),
		End:    window.End.Format(time.DateOnly),
		Events: make([]CalendarEvent, 0, len(occurrences)),
	}
	for _, occ := range occurrences {
		response.Events = append(response.Events, CalendarEvent{
			ID:              occ.InstanceKey,
			SlotID:          occ.SourceSlotID,
			Title:           occ.Title,
			Start:           occ.Start.Format(time.RFC3339),
			End:             occ.End.Format(time.RFC3339),
			BackgroundColor: occ.ColorTag,
			BorderColor:     occ.ColorTag,
			Description:     occ.Description,
			EventType:       string(occ.OwnerType),
		})
	}
	return response, nil
}

// ExportICS renders the same window as an iCalendar feed.
func (s *calendarService) ExportICS(ctx context.Context, userID string, query CalendarQuery) (*ExportFile, error) {
	window, occurrences, err := s.project(ctx, userID, query)
	if err != nil {
		return nil, err
	}

	feed := scheduling.RenderICS(calendarName, occurrences, s.now())
	s.logger.Info("Calendar exported",
		"user_id", userID,
		"start", window.Start.Format(time.DateOnly),
		"end", window.End.Format(time.DateOnly),
		"occurrences", len(occurrences))

	return &ExportFile{
		Name:        fmt.Sprintf("schedule_%s_%s.ics", window.Start.Format("20060102"), window.End.Format("20060102")),
		ContentType: "text/calendar; charset=utf-8",
		Data:        []byte(feed),
	}, nil
}

func (s *calendarService) project(ctx context.Context, userID string, query CalendarQuery) (scheduling.Window, []models.Occurrence, error) {
	window, err := s.window(query)
	if err != nil {
		return scheduling.Window{}, nil, err
	}

	slots, err := s.repo.Slot().ListByUser(ctx, nil, userID)
	if err != nil {
		return scheduling.Window{}, nil, fmt.Errorf("failed to load schedule slots: %w", err)
	}

	occurrences, err := s.projector.Project(ctx, slots, window)
	if err != nil {
		return scheduling.Window{}, nil, err
	}
	return window, occurrences, nil
}

// window resolves the query against the default window. Either bound may be
// given on its own.
func (s *calendarService) window(query CalendarQuery) (scheduling.Window, error) {
	loc := s.projector.Location()
	def := s.projector.DefaultWindow(s.now())
	start, end := def.Start, def.End

	var errs validator.ValidationErrors
	if v := strings.TrimSpace(query.Start); v != "" {
		d, err := calendarDay(v, loc)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: "start", Message: "must be a date in YYYY-MM-DD format", Value: v, Rule: "slot_date"})
		}
		start = d
	}
	if v := strings.TrimSpace(query.End); v != "" {
		d, err := calendarDay(v, loc)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: "end", Message: "must be a date in YYYY-MM-DD format", Value: v, Rule: "slot_date"})
		}
		end = d
	}
	if len(errs) > 0 {
		return scheduling.Window{}, errs
	}

	window, err := scheduling.NewWindow(start, end, loc)
	if errors.Is(err, scheduling.ErrInvalidWindow) {
		return scheduling.Window{}, validator.ValidationErrors{{
			Field:   "end",
			Message: "must not be before start",
			Value:   end.Format(time.DateOnly),
			Rule:    "after_start",
		}}
	}
	if err != nil {
		return scheduling.Window{}, err
	}

	if limit := s.projector.MaxWindowDays(); window.Days() > limit {
		return scheduling.Window{}, validator.ValidationErrors{{
			Field:   "end",
			Message: fmt.Sprintf("window must span at most %d days", limit),
			Value:   end.Format(time.DateOnly),
			Rule:    "max_span",
		}}
	}
	return window, nil
}

package services

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/organizainador/organizer-service/internal/events"
	"github.com/organizainador/organizer-service/internal/models"
	"github.com/organizainador/organizer-service/internal/repositories"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// normalizePage clamps pagination to sane bounds.
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// publishEvent delivers an event after a committed write. Failures are only
// logged.
func publishEvent(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, eventType events.EventType, userID string, payload interface{}) {
	if publisher == nil {
		return
	}

	event, err := events.NewEvent(eventType, userID, payload)
	if err != nil {
		logger.Warn("Failed to build event", "event_type", eventType, "error", err)
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event",
			"event_type", eventType,
			"event_id", event.ID,
			"user_id", userID,
			"error", err)
	}
}

func newSlotPayload(slot *models.ScheduleSlot) events.SlotPayload {
	summary := models.NewSlotSummary(slot)
	return events.SlotPayload{
		SlotID:       summary.ID,
		OwnerType:    string(summary.OwnerType),
		OwnerID:      summary.OwnerID,
		IsRecurring:  summary.IsRecurring,
		DayOfWeek:    string(summary.DayOfWeek),
		SpecificDate: summary.SpecificDate,
		StartTime:    summary.StartTime,
		EndTime:      summary.EndTime,
	}
}

func summarize(slots []*models.ScheduleSlot) []models.SlotSummary {
	out := make([]models.SlotSummary, 0, len(slots))
	for _, slot := range slots {
		if slot == nil {
			continue
		}
		out = append(out, models.NewSlotSummary(slot))
	}
	return out
}

// sortSlots orders slots recurring first, then by weekday, start time and
// date.
func sortSlots(slots []*models.ScheduleSlot) {
	slices.SortStableFunc(slots, func(a, b *models.ScheduleSlot) int {
		if a.IsRecurring != b.IsRecurring {
			if a.IsRecurring {
				return -1
			}
			return 1
		}
		return cmp.Or(
			cmp.Compare(weekdayRank(a.DayOfWeek), weekdayRank(b.DayOfWeek)),
			cmp.Compare(a.StartTime, b.StartTime),
			a.Date().Compare(b.Date()),
			cmp.Compare(a.ID, b.ID),
		)
	})
}

// weekdayRank sorts unknown labels last.
func weekdayRank(day models.Weekday) int {
	if i := day.Index(); i >= 0 {
		return i
	}
	return len(models.Weekdays)
}

// slotSource exposes a slot repository to the conflict checker.
type slotSource struct {
	slots repositories.SlotRepository
}

func (s slotSource) ListByUser(ctx context.Context, userID string) ([]*models.ScheduleSlot, error) {
	return s.slots.ListByUser(ctx, nil, userID)
}

// calendarDay parses a "YYYY-MM-DD" date at midnight in loc.
func calendarDay(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, value, loc)
}

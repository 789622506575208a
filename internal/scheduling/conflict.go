package scheduling

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/organizainador/organizer-service/internal/config"
	"github.com/organizainador/organizer-service/internal/models"
)

// SlotSource returns every slot a user owns through their classes and
// activities, with the owner relation loaded.
type SlotSource interface {
	ListByUser(ctx context.Context, userID string) ([]*models.ScheduleSlot, error)
}

// Candidate is a slot being created or edited.
type Candidate struct {
	UserID    string
	DayOfWeek models.Weekday
	// Date is set for one-off slots.
	Date          *time.Time
	Start         datatypes.Time
	End           datatypes.Time
	ExcludeSlotID *uint
}

// ConflictChecker finds slots of the same user that overlap a candidate.
type ConflictChecker struct {
	source SlotSource
	mode   config.ConflictMode
}

func NewConflictChecker(source SlotSource, mode config.ConflictMode) *ConflictChecker {
	if mode == "" {
		mode = config.ConflictModeWeekday
	}
	return &ConflictChecker{source: source, mode: mode}
}

// Mode returns how one-off slots are matched.
func (c *ConflictChecker) Mode() config.ConflictMode {
	return c.mode
}

// HasConflict reports whether a slot on day between start and end would
// overlap another slot of userID. excludeSlotID leaves the slot being edited
// out of the comparison.
func (c *ConflictChecker) HasConflict(ctx context.Context, userID string, day models.Weekday, start, end datatypes.Time, excludeSlotID *uint) (bool, error) {
	conflict, err := c.FindConflict(ctx, Candidate{
		UserID:        userID,
		DayOfWeek:     day,
		Start:         start,
		End:           end,
		ExcludeSlotID: excludeSlotID,
	})
	if err != nil {
		return false, err
	}
	return conflict != nil, nil
}

// FindConflict returns the first existing slot overlapping the candidate, or
// nil when there is none.
func (c *ConflictChecker) FindConflict(ctx context.Context, candidate Candidate) (*models.ScheduleSlot, error) {
	slots, err := c.source.ListByUser(ctx, candidate.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load slots for conflict check: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	want := Interval{Start: candidate.Start, End: candidate.End}
	for _, slot := range slots {
		if slot == nil {
			continue
		}
		if candidate.ExcludeSlotID != nil && slot.ID == *candidate.ExcludeSlotID {
			continue
		}
		if !c.sameDay(candidate, slot) {
			continue
		}
		if Overlaps(want, Interval{Start: slot.StartTime, End: slot.EndTime}) {
			return slot, nil
		}
	}
	return nil, nil
}

func (c *ConflictChecker) sameDay(candidate Candidate, slot *models.ScheduleSlot) bool {
	if c.mode == config.ConflictModeWeekday {
		return candidate.DayOfWeek.Same(slot.DayOfWeek)
	}

	// A one-off slot without its date falls back to its weekday label.
	existingDated := !slot.IsRecurring && slot.SpecificDate != nil

	switch {
	case candidate.Date == nil && !existingDated:
		return candidate.DayOfWeek.Same(slot.DayOfWeek)
	case candidate.Date == nil:
		return candidate.DayOfWeek.Same(models.WeekdayOf(slot.Date()))
	case !existingDated:
		return models.WeekdayOf(*candidate.Date).Same(slot.DayOfWeek)
	default:
		return sameDate(*candidate.Date, slot.Date())
	}
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

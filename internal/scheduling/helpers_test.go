package scheduling

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/organizainador/organizer-service/internal/models"
)

type fakeSource struct {
	slots []*models.ScheduleSlot
	err   error
	calls int
}

func (f *fakeSource) ListByUser(_ context.Context, _ string) ([]*models.ScheduleSlot, error) {
	f.calls++
	return f.slots, f.err
}

func clock(t *testing.T, value string) datatypes.Time {
	t.Helper()
	c, err := models.ParseClock(value)
	require.NoError(t, err)
	return c
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse(time.DateOnly, value)
	require.NoError(t, err)
	return d
}

func uintPtr(v uint) *uint { return &v }

func strPtr(v string) *string { return &v }

func classSlot(t *testing.T, id uint, name string, wd models.Weekday, start, end string) *models.ScheduleSlot {
	t.Helper()
	return &models.ScheduleSlot{
		ID:          id,
		ClassID:     uintPtr(id * 10),
		IsRecurring: true,
		DayOfWeek:   wd,
		StartTime:   clock(t, start),
		EndTime:     clock(t, end),
		Class:       &models.Class{ID: id * 10, UserID: "user-1", Name: name},
	}
}

func activitySlot(t *testing.T, id uint, name string, wd models.Weekday, start, end string) *models.ScheduleSlot {
	t.Helper()
	return &models.ScheduleSlot{
		ID:          id,
		ActivityID:  uintPtr(id * 10),
		IsRecurring: true,
		DayOfWeek:   wd,
		StartTime:   clock(t, start),
		EndTime:     clock(t, end),
		Activity:    &models.Activity{ID: id * 10, UserID: "user-1", Name: name},
	}
}

func oneOff(t *testing.T, slot *models.ScheduleSlot, date string) *models.ScheduleSlot {
	t.Helper()
	d := datatypes.Date(day(t, date))
	slot.IsRecurring = false
	slot.SpecificDate = &d
	slot.DayOfWeek = models.WeekdayOf(day(t, date))
	return slot
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

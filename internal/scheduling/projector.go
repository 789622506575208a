package scheduling

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/organizainador/organizer-service/internal/models"
)

const (
	defaultMaxOccurrencesPerSlot = 1000
	defaultClassColor            = "#0d6efd"
	defaultActivityColor         = "#dc3545"
)

// ErrInvalidWindow is returned when a window ends before it starts.
var ErrInvalidWindow = errors.New("window end is before window start")

// ProjectorConfig controls recurrence projection.
type ProjectorConfig struct {
	// Location is the zone calendar dates are interpreted in. Nil means UTC.
	Location *time.Location

	// PastDays / FutureDays bound the default window around today.
	PastDays   int
	FutureDays int

	// MaxOccurrencesPerSlot caps a single slot's expansion.
	MaxOccurrencesPerSlot int

	ClassColor    string
	ActivityColor string
}

// Window is an inclusive range of calendar dates, each bound at midnight.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds a window from the calendar dates of start and end,
// anchored at midnight in loc.
func NewWindow(start, end time.Time, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.UTC
	}
	w := Window{Start: calendarDate(start, loc), End: calendarDate(end, loc)}
	if w.End.Before(w.Start) {
		return Window{}, fmt.Errorf("%w: %s > %s", ErrInvalidWindow, w.Start.Format(time.DateOnly), w.End.Format(time.DateOnly))
	}
	return w, nil
}

// Contains reports whether day's date lies inside the window.
func (w Window) Contains(day time.Time) bool {
	d := calendarDate(day, w.Start.Location())
	return !d.Before(w.Start) && !d.After(w.End)
}

// Days returns the number of calendar days covered.
func (w Window) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24+0.5) + 1
}

// Projector expands schedule slots into dated occurrences.
type Projector struct {
	cfg    ProjectorConfig
	logger *slog.Logger
}

func NewProjector(cfg ProjectorConfig, logger *slog.Logger) *Projector {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.MaxOccurrencesPerSlot <= 0 {
		cfg.MaxOccurrencesPerSlot = defaultMaxOccurrencesPerSlot
	}
	if cfg.ClassColor == "" {
		cfg.ClassColor = defaultClassColor
	}
	if cfg.ActivityColor == "" {
		cfg.ActivityColor = defaultActivityColor
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Projector{cfg: cfg, logger: logger}
}

// Location returns the zone the projector works in.
func (p *Projector) Location() *time.Location {
	return p.cfg.Location
}

// MaxWindowDays is the longest window in which no weekly slot expands past
// MaxOccurrencesPerSlot.
func (p *Projector) MaxWindowDays() int {
	return p.cfg.MaxOccurrencesPerSlot * 7
}

// DefaultWindow returns [today-PastDays, today+FutureDays] around now.
func (p *Projector) DefaultWindow(now time.Time) Window {
	today := dateIn(now, p.cfg.Location)
	return Window{
		Start: today.AddDate(0, 0, -p.cfg.PastDays),
		End:   today.AddDate(0, 0, p.cfg.FutureDays),
	}
}

// Occurrences lazily yields the occurrences of slots inside w. The sequence
// is recomputed on every iteration. Slots without an owner or with an
// unknown weekday label produce nothing.
func (p *Projector) Occurrences(slots []*models.ScheduleSlot, w Window) iter.Seq[models.Occurrence] {
	return func(yield func(models.Occurrence) bool) {
		for _, slot := range slots {
			if slot == nil {
				continue
			}
			if !slot.HasOwner() {
				p.skip(slot, "slot has no class or activity")
				continue
			}

			if slot.IsRecurring {
				if !p.expandRecurring(slot, w, yield) {
					return
				}
				continue
			}

			if slot.SpecificDate == nil {
				p.skip(slot, "one-off slot has no date")
				continue
			}
			day := calendarDate(slot.Date(), w.Start.Location())
			if !w.Contains(day) {
				continue
			}
			if !yield(p.occurrence(slot, day)) {
				return
			}
		}
	}
}

// Project collects the occurrences of slots in w ordered by start time.
func (p *Projector) Project(ctx context.Context, slots []*models.ScheduleSlot, w Window) ([]models.Occurrence, error) {
	out := make([]models.Occurrence, 0)
	for occ := range p.Occurrences(slots, w) {
		if len(out)%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		out = append(out, occ)
	}

	slices.SortStableFunc(out, func(a, b models.Occurrence) int {
		return a.Start.Compare(b.Start)
	})
	return out, nil
}

func (p *Projector) expandRecurring(slot *models.ScheduleSlot, w Window, yield func(models.Occurrence) bool) bool {
	wd, ok := slot.DayOfWeek.TimeWeekday()
	if !ok {
		p.skip(slot, "unknown weekday label")
		return true
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{rruleWeekdays[wd]},
		Dtstart:   w.Start,
		Until:     w.End,
	})
	if err != nil {
		p.logger.Warn("Failed to build weekly rule", "slot_id", slot.ID, "error", err)
		return true
	}

	next := rule.Iterator()
	count := 0
	for day, ok := next(); ok; day, ok = next() {
		if count >= p.cfg.MaxOccurrencesPerSlot {
			p.logger.Warn("Truncated slot expansion",
				"slot_id", slot.ID,
				"cap", p.cfg.MaxOccurrencesPerSlot)
			break
		}
		count++
		if !yield(p.occurrence(slot, day)) {
			return false
		}
	}
	return true
}

func (p *Projector) occurrence(slot *models.ScheduleSlot, day time.Time) models.Occurrence {
	start := models.AtClock(day, slot.StartTime)
	end := models.AtClock(day, slot.EndTime)
	if !end.After(start) {
		end = models.AtClock(day.AddDate(0, 0, 1), slot.EndTime)
	}

	color := p.cfg.ClassColor
	if slot.OwnerType() == models.OwnerTypeActivity {
		color = p.cfg.ActivityColor
	}

	return models.Occurrence{
		SourceSlotID: slot.ID,
		Title:        slot.OwnerName(),
		Description:  slot.OwnerDescription(),
		Start:        start,
		End:          end,
		ColorTag:     color,
		OwnerType:    slot.OwnerType(),
		InstanceKey:  fmt.Sprintf("%d-%s", slot.ID, start.Format(time.RFC3339)),
	}
}

func (p *Projector) skip(slot *models.ScheduleSlot, reason string) {
	p.logger.Warn("Skipping slot in calendar projection",
		"slot_id", slot.ID,
		"day_of_week", slot.DayOfWeek,
		"reason", reason)
}

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// dateIn returns midnight of the day the instant t falls on in loc.
func dateIn(t time.Time, loc *time.Location) time.Time {
	return calendarDate(t.In(loc), loc)
}

// calendarDate keeps t's wall-clock date and re-anchors it at midnight in loc.
func calendarDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

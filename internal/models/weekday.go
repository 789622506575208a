package models

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is the symbolic day label stored on a schedule slot.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays lists the canonical labels starting on Monday.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// weekdayAliases maps accepted labels (English and the Spanish labels used by
// older clients) to the canonical weekday.
var weekdayAliases = map[string]Weekday{
	"monday":    Monday,
	"mon":       Monday,
	"lunes":     Monday,
	"tuesday":   Tuesday,
	"tue":       Tuesday,
	"martes":    Tuesday,
	"wednesday": Wednesday,
	"wed":       Wednesday,
	"miércoles": Wednesday,
	"miercoles": Wednesday,
	"thursday":  Thursday,
	"thu":       Thursday,
	"jueves":    Thursday,
	"friday":    Friday,
	"fri":       Friday,
	"viernes":   Friday,
	"saturday":  Saturday,
	"sat":       Saturday,
	"sábado":    Saturday,
	"sabado":    Saturday,
	"sunday":    Sunday,
	"sun":       Sunday,
	"domingo":   Sunday,
}

var timeWeekdays = map[Weekday]time.Weekday{
	Monday:    time.Monday,
	Tuesday:   time.Tuesday,
	Wednesday: time.Wednesday,
	Thursday:  time.Thursday,
	Friday:    time.Friday,
	Saturday:  time.Saturday,
	Sunday:    time.Sunday,
}

// ErrUnknownWeekday is returned when a label cannot be mapped to a weekday.
type ErrUnknownWeekday struct {
	Label string
}

func (e *ErrUnknownWeekday) Error() string {
	return fmt.Sprintf("unknown weekday label %q", e.Label)
}

// ParseWeekday normalizes a weekday label.
func ParseWeekday(label string) (Weekday, error) {
	key := strings.ToLower(strings.TrimSpace(label))
	if wd, ok := weekdayAliases[key]; ok {
		return wd, nil
	}
	return "", &ErrUnknownWeekday{Label: label}
}

// WeekdayOf returns the canonical label for a calendar date.
func WeekdayOf(t time.Time) Weekday {
	for wd, tw := range timeWeekdays {
		if tw == t.Weekday() {
			return wd
		}
	}
	return ""
}

// Valid reports whether the label maps to a weekday.
func (w Weekday) Valid() bool {
	_, err := ParseWeekday(string(w))
	return err == nil
}

// TimeWeekday converts the label to a time.Weekday.
func (w Weekday) TimeWeekday() (time.Weekday, bool) {
	wd, err := ParseWeekday(string(w))
	if err != nil {
		return 0, false
	}
	return timeWeekdays[wd], true
}

// Same reports whether two labels denote the same day. Labels that cannot be
// mapped are compared verbatim.
func (w Weekday) Same(other Weekday) bool {
	a, errA := ParseWeekday(string(w))
	b, errB := ParseWeekday(string(other))
	if errA != nil || errB != nil {
		return strings.EqualFold(strings.TrimSpace(string(w)), strings.TrimSpace(string(other)))
	}
	return a == b
}

// Index returns the Monday-based position of the weekday, or -1.
func (w Weekday) Index() int {
	wd, err := ParseWeekday(string(w))
	if err != nil {
		return -1
	}
	for i, d := range Weekdays {
		if d == wd {
			return i
		}
	}
	return -1
}

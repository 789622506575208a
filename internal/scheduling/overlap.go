// Package scheduling holds the timetable rules shared by the organizer
// services: overlap detection between schedule slots and projection of slot
// definitions onto calendar dates.
package scheduling

import (
	"time"

	"gorm.io/datatypes"
)

// Interval is a time-of-day range on a single day.
type Interval struct {
	Start datatypes.Time
	End   datatypes.Time
}

// Overlaps reports whether candidate collides with existing. Touching
// boundaries (one ends exactly when the other starts) do not collide.
func Overlaps(candidate, existing Interval) bool {
	cs, ce := time.Duration(candidate.Start), time.Duration(candidate.End)
	s, e := time.Duration(existing.Start), time.Duration(existing.End)

	startsInside := cs >= s && cs < e
	endsInside := ce > s && ce <= e
	contains := cs <= s && ce >= e

	return startsInside || endsInside || contains
}

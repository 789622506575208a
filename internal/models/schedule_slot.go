package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type OwnerType string

const (
	OwnerTypeClass    OwnerType = "class"
	OwnerTypeActivity OwnerType = "activity"
)

// ScheduleSlot is a bookable time unit owned by exactly one Class or Activity.
// Recurring slots repeat weekly on DayOfWeek; one-off slots happen on
// SpecificDate. For one-off slots DayOfWeek holds the weekday of the date.
type ScheduleSlot struct {
	ID         uint  `json:"id" gorm:"primaryKey"`
	ClassID    *uint `json:"class_id" gorm:"index"`
	ActivityID *uint `json:"activity_id" gorm:"index"`

	IsRecurring  bool            `json:"is_recurring" gorm:"not null;default:true;index"`
	DayOfWeek    Weekday         `json:"day_of_week" gorm:"size:20;index"`
	SpecificDate *datatypes.Date `json:"specific_date" gorm:"index"`
	StartTime    datatypes.Time  `json:"start_time" gorm:"not null"`
	EndTime      datatypes.Time  `json:"end_time" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Class    *Class    `json:"class,omitempty" gorm:"foreignKey:ClassID"`
	Activity *Activity `json:"activity,omitempty" gorm:"foreignKey:ActivityID"`
}

func (ScheduleSlot) TableName() string {
	return "schedule_slots"
}

// HasOwner reports whether exactly one owner reference is set.
func (s *ScheduleSlot) HasOwner() bool {
	return (s.ClassID != nil) != (s.ActivityID != nil)
}

// OwnerType returns which kind of owner the slot hangs from.
func (s *ScheduleSlot) OwnerType() OwnerType {
	switch {
	case s.ClassID != nil && s.ActivityID == nil:
		return OwnerTypeClass
	case s.ActivityID != nil && s.ClassID == nil:
		return OwnerTypeActivity
	}
	return ""
}

// OwnerUserID resolves the user that transitively owns the slot. It needs the
// owner relation to be loaded.
func (s *ScheduleSlot) OwnerUserID() string {
	switch s.OwnerType() {
	case OwnerTypeClass:
		if s.Class != nil {
			return s.Class.UserID
		}
	case OwnerTypeActivity:
		if s.Activity != nil {
			return s.Activity.UserID
		}
	}
	return ""
}

// OwnerName returns the display name of the owning class or activity.
func (s *ScheduleSlot) OwnerName() string {
	switch s.OwnerType() {
	case OwnerTypeClass:
		if s.Class != nil {
			return s.Class.Name
		}
		return "Class"
	case OwnerTypeActivity:
		if s.Activity != nil {
			return s.Activity.Name
		}
		return "Activity"
	}
	return ""
}

// OwnerDescription returns the owner's description, if any.
func (s *ScheduleSlot) OwnerDescription() string {
	var desc *string
	switch s.OwnerType() {
	case OwnerTypeClass:
		if s.Class != nil {
			desc = s.Class.Description
		}
	case OwnerTypeActivity:
		if s.Activity != nil {
			desc = s.Activity.Description
		}
	}
	if desc == nil {
		return ""
	}
	return *desc
}

// Date returns the one-off date, or the zero time.
func (s *ScheduleSlot) Date() time.Time {
	if s.SpecificDate == nil {
		return time.Time{}
	}
	return time.Time(*s.SpecificDate)
}

// ===== TIME OF DAY HELPERS =====

// ParseClock parses "15:04" or "15:04:05" into a time of day.
func ParseClock(value string) (datatypes.Time, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), 0), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", value)
}

// FormatClock renders a time of day as "15:04".
func FormatClock(t datatypes.Time) string {
	d := time.Duration(t)
	return fmt.Sprintf("%02d:%02d", int(d/time.Hour), int(d%time.Hour/time.Minute))
}

// AtClock places a time of day on the calendar date of day, in day's location.
func AtClock(day time.Time, t datatypes.Time) time.Time {
	d := time.Duration(t)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	sec := int(d % time.Minute / time.Second)
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, sec, 0, day.Location())
}

// ParseDate parses a "2006-01-02" calendar date in UTC.
func ParseDate(value string) (datatypes.Date, error) {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return datatypes.Date{}, fmt.Errorf("invalid date %q", value)
	}
	return datatypes.Date(t), nil
}

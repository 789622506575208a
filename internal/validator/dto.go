package validator

import "github.com/organizainador/organizer-service/internal/models"

type ClassCreateRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=255"`
	HoursPerDay float64 `json:"hours_per_day" validate:"required,gte=0.01,lte=99.99"`
}

type ClassUpdateRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=255"`
	HoursPerDay *float64 `json:"hours_per_day" validate:"omitempty,gte=0.01,lte=99.99"`
}

type ActivityCreateRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Tag         *string `json:"tag" validate:"omitempty,activity_tag"`
}

type ActivityUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Tag         *string `json:"tag" validate:"omitempty,activity_tag"`
}

// SlotCreateRequest carries clock times as "HH:MM" and dates as "YYYY-MM-DD".
type SlotCreateRequest struct {
	ClassID      *uint          `json:"class_id"`
	ActivityID   *uint          `json:"activity_id"`
	IsRecurring  bool           `json:"is_recurring"`
	DayOfWeek    models.Weekday `json:"day_of_week" validate:"omitempty,weekday"`
	SpecificDate *string        `json:"specific_date" validate:"omitempty,slot_date"`
	StartTime    string         `json:"start_time" validate:"required,time_of_day"`
	EndTime      string         `json:"end_time" validate:"required,time_of_day"`
}

// SlotUpdateRequest replaces the timing of a slot. Owner references, when
// present, must match the existing owner.
type SlotUpdateRequest struct {
	ClassID      *uint          `json:"class_id"`
	ActivityID   *uint          `json:"activity_id"`
	IsRecurring  bool           `json:"is_recurring"`
	DayOfWeek    models.Weekday `json:"day_of_week" validate:"omitempty,weekday"`
	SpecificDate *string        `json:"specific_date" validate:"omitempty,slot_date"`
	StartTime    string         `json:"start_time" validate:"required,time_of_day"`
	EndTime      string         `json:"end_time" validate:"required,time_of_day"`
}

// ConflictCheckRequest is a dry-run of slot creation or editing.
type ConflictCheckRequest struct {
	IsRecurring   bool           `json:"is_recurring"`
	DayOfWeek     models.Weekday `json:"day_of_week" validate:"omitempty,weekday"`
	SpecificDate  *string        `json:"specific_date" validate:"omitempty,slot_date"`
	StartTime     string         `json:"start_time" validate:"required,time_of_day"`
	EndTime       string         `json:"end_time" validate:"required,time_of_day"`
	ExcludeSlotID *uint          `json:"exclude_slot_id"`
}

type UserStatusUpdateRequest struct {
	Status models.UserStatus `json:"status" validate:"required,oneof=active inactive suspended"`
}

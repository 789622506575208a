package models

import "time"

// ===== SUMMARY DTOs =====

type SlotSummary struct {
	ID           uint      `json:"id"`
	OwnerType    OwnerType `json:"owner_type"`
	OwnerID      uint      `json:"owner_id"`
	OwnerName    string    `json:"owner_name"`
	IsRecurring  bool      `json:"is_recurring"`
	DayOfWeek    Weekday   `json:"day_of_week"`
	SpecificDate *string   `json:"specific_date,omitempty"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
}

// NewSlotSummary flattens a slot with its owner for list responses.
func NewSlotSummary(s *ScheduleSlot) SlotSummary {
	summary := SlotSummary{
		ID:          s.ID,
		OwnerType:   s.OwnerType(),
		OwnerName:   s.OwnerName(),
		IsRecurring: s.IsRecurring,
		DayOfWeek:   s.DayOfWeek,
		StartTime:   FormatClock(s.StartTime),
		EndTime:     FormatClock(s.EndTime),
	}
	switch {
	case s.ClassID != nil:
		summary.OwnerID = *s.ClassID
	case s.ActivityID != nil:
		summary.OwnerID = *s.ActivityID
	}
	if s.SpecificDate != nil {
		date := s.Date().Format(time.DateOnly)
		summary.SpecificDate = &date
	}
	return summary
}

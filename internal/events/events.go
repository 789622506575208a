package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	SlotCreated     EventType = "schedule.slot.created"
	SlotUpdated     EventType = "schedule.slot.updated"
	SlotDeleted     EventType = "schedule.slot.deleted"
	ClassDeleted    EventType = "class.deleted"
	ActivityDeleted EventType = "activity.deleted"
)

// Event is the envelope published after a successful write.
type Event struct {
	ID         string          `json:"id"`
	Type       EventType       `json:"type"`
	UserID     string          `json:"user_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// NewEvent builds an event with a fresh id. payload is encoded as JSON.
func NewEvent(eventType EventType, userID string, payload interface{}) (Event, error) {
	event := Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Event{}, err
		}
		event.Payload = data
	}
	return event, nil
}

// EventPublisher delivers events to the configured broker.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// SlotPayload describes a changed slot.
type SlotPayload struct {
	SlotID       uint    `json:"slot_id"`
	OwnerType    string  `json:"owner_type"`
	OwnerID      uint    `json:"owner_id"`
	IsRecurring  bool    `json:"is_recurring"`
	DayOfWeek    string  `json:"day_of_week,omitempty"`
	SpecificDate *string `json:"specific_date,omitempty"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
}

// OwnerDeletedPayload describes a removed class or activity and the slots
// removed with it.
type OwnerDeletedPayload struct {
	OwnerID      uint `json:"owner_id"`
	RemovedSlots int  `json:"removed_slots"`
}

package models

import "time"

// Occurrence is a concrete, dated materialization of a schedule slot.
type Occurrence struct {
	SourceSlotID uint      `json:"source_slot_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	ColorTag     string    `json:"color"`
	OwnerType    OwnerType `json:"owner_type"`

	// InstanceKey identifies one occurrence of a recurring slot.
	InstanceKey string `json:"instance_key"`
}

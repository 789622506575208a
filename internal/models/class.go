package models

import "time"

// Class is a recurring academic commitment.
type Class struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	UserID      string  `json:"user_id" gorm:"not null;index;size:255"`
	Name        string  `json:"name" gorm:"not null;size:100;index"`
	Description *string `json:"description" gorm:"size:255"`
	HoursPerDay float64 `json:"hours_per_day" gorm:"type:numeric(4,2);not null;default:1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Owner *User          `json:"owner,omitempty" gorm:"foreignKey:UserID"`
	Slots []ScheduleSlot `json:"slots,omitempty" gorm:"foreignKey:ClassID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (Class) TableName() string {
	return "classes"
}

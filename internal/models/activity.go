package models

import "time"

// Activity is a non-class commitment such as sport, work or a club.
type Activity struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	UserID      string  `json:"user_id" gorm:"not null;index;size:255"`
	Name        string  `json:"name" gorm:"not null;size:100;index"`
	Description *string `json:"description" gorm:"type:text"`
	Tag         *string `json:"tag" gorm:"size:50;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Owner *User          `json:"owner,omitempty" gorm:"foreignKey:UserID"`
	Slots []ScheduleSlot `json:"slots,omitempty" gorm:"foreignKey:ActivityID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (Activity) TableName() string {
	return "activities"
}

package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string
type Role = UserRole // Alias for compatibility

const (
	RoleStudent UserRole = "student"
	RoleAdmin   UserRole = "admin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

type User struct {
	ID     string     `json:"id" gorm:"primaryKey;size:255"`
	Name   string     `json:"name" gorm:"not null;size:100"`
	Email  string     `json:"email" gorm:"uniqueIndex;not null;size:100"`
	Role   UserRole   `json:"role" gorm:"not null;size:20;default:student"`
	Status UserStatus `json:"status" gorm:"not null;size:20;default:active;index"`

	// Profile info
	AvatarURL *string `json:"avatar_url" gorm:"size:500"`

	LastSeenAt *time.Time `json:"last_seen_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Classes    []Class    `json:"classes,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Activities []Activity `json:"activities,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}

// IsActive reports whether the user may use the organizer.
func (u *User) IsActive() bool {
	return u.Status == "" || u.Status == UserStatusActive
}

// UserStats summarises what a user owns.
type UserStats struct {
	ClassCount    int64 `json:"class_count"`
	ActivityCount int64 `json:"activity_count"`
	SlotCount     int64 `json:"slot_count"`
}

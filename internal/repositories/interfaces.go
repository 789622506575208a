package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/organizainador/organizer-service/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("record already exists")
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// ===== SHARED FILTER STRUCTS =====

type ListFilters struct {
	Search    string `json:"search"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	SortBy    string `json:"sort_by"`    // "created_at", "name"
	SortOrder string `json:"sort_order"` // "asc", "desc"
}

// ===== REPOSITORIES =====

// All methods accept an optional transaction; nil uses the default
// connection.

type ClassRepository interface {
	Create(ctx context.Context, tx *gorm.DB, class *models.Class) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Class, error)
	Update(ctx context.Context, tx *gorm.DB, class *models.Class) error
	// Delete removes the class and its slots, returning how many slots went
	// with it.
	Delete(ctx context.Context, tx *gorm.DB, id uint) (int64, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string, filters ListFilters) ([]*models.Class, int64, error)
	CountByUser(ctx context.Context, tx *gorm.DB, userID string) (int64, error)
}

type ActivityRepository interface {
	Create(ctx context.Context, tx *gorm.DB, activity *models.Activity) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Activity, error)
	Update(ctx context.Context, tx *gorm.DB, activity *models.Activity) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) (int64, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string, filters ListFilters) ([]*models.Activity, int64, error)
	CountByUser(ctx context.Context, tx *gorm.DB, userID string) (int64, error)
}

type SlotRepository interface {
	Create(ctx context.Context, tx *gorm.DB, slot *models.ScheduleSlot) error
	// GetByID loads the slot with its owning class or activity.
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ScheduleSlot, error)
	Update(ctx context.Context, tx *gorm.DB, slot *models.ScheduleSlot) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// LockUser blocks concurrent slot writes of the same user for the
	// lifetime of the transaction.
	LockUser(ctx context.Context, tx *gorm.DB, userID string) error

	// ListByUser returns every slot reachable from the user's classes and
	// activities, owners loaded.
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.ScheduleSlot, error)
	ListByClass(ctx context.Context, tx *gorm.DB, classID uint) ([]*models.ScheduleSlot, error)
	ListByActivity(ctx context.Context, tx *gorm.DB, activityID uint) ([]*models.ScheduleSlot, error)
	CountByUser(ctx context.Context, tx *gorm.DB, userID string) (int64, error)
}

package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/organizainador/organizer-service/internal/models"
)

// UserFilters defines filters for user queries
type UserFilters struct {
	Query     string             // Search query for name or email
	Role      *models.UserRole   // Optional role filter
	Status    *models.UserStatus // Optional status filter
	Limit     int                // Page size
	Offset    int                // Offset for pagination
	SortBy    string
	SortOrder string
}

// UserRepository stores the local copy of identity-provider users.
type UserRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)

	// Upsert inserts the user or refreshes its profile fields. Status is
	// never overwritten.
	Upsert(ctx context.Context, tx *gorm.DB, user *models.User) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status models.UserStatus) error

	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)
	GetStats(ctx context.Context, tx *gorm.DB, id string) (*models.UserStats, error)
}

package postgres

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/organizainador/organizer-service/internal/cache"
	"github.com/organizainador/organizer-service/internal/models"
	"github.com/organizainador/organizer-service/internal/repositories"
)

type UserPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewUserPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.UserRepository {
	return newUserPostgreSQL(NewSharedHelpers(db), cacheManager)
}

func newUserPostgreSQL(helpers *SharedHelpers, cacheManager *cache.CacheManager) *UserPostgreSQL {
	return &UserPostgreSQL{
		db:           helpers.db,
		helpers:      helpers,
		cacheManager: cacheManager,
	}
}

// GetByID retrieves a user by ID with caching
func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	var user models.User
	err := u.cacheManager.User.CacheOrExecute(ctx, id, &user, cache.UserCacheConfig.TTL, func() (interface{}, error) {
		var dbUser models.User
		if err := u.helpers.conn(ctx, tx).First(&dbUser, "id = ?", id).Error; err != nil {
			return nil, handleDBError(err, "failed to get user")
		}
		return &dbUser, nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := u.helpers.conn(ctx, tx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, handleDBError(err, "failed to get user by email")
	}
	return &user, nil
}

func (u *UserPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}
	if user.Role == "" {
		user.Role = models.RoleStudent
	}
	now := time.Now().UTC()
	user.LastSeenAt = &now

	err := u.helpers.conn(ctx, tx).
		Omit("Classes", "Activities").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "email", "role", "avatar_url", "last_seen_at", "updated_at", "deleted_at"}),
		}).
		Create(user).Error
	if err != nil {
		return handleDBError(err, "failed to upsert user")
	}

	u.helpers.onCommit(ctx, func(ctx context.Context) {
		cache.SafeDelete(ctx, u.cacheManager.User, user.ID)
	})
	return nil
}

func (u *UserPostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status models.UserStatus) error {
	result := u.helpers.conn(ctx, tx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return handleDBError(result.Error, "failed to update user status")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "failed to update user status")
	}

	u.helpers.onCommit(ctx, func(ctx context.Context) {
		cache.InvalidateUser(ctx, u.cacheManager, id)
	})
	return nil
}

// List retrieves a paginated list of users with optional filters
func (u *UserPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	if filters.Limit <= 0 {
		filters.Limit = 10
	}
	if filters.Limit > 100 {
		filters.Limit = 100
	}

	query := u.helpers.conn(ctx, tx).Model(&models.User{})
	if q := strings.TrimSpace(filters.Query); q != "" {
		pattern := "%" + q + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}
	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "failed to count users")
	}

	users := make([]*models.User, 0)
	query = u.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, handleDBError(err, "failed to list users")
	}
	return users, total, nil
}

// GetStats counts what the user owns, cached briefly.
func (u *UserPostgreSQL) GetStats(ctx context.Context, tx *gorm.DB, id string) (*models.UserStats, error) {
	var stats models.UserStats
	err := u.cacheManager.Stats.CacheOrExecute(ctx, id, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		db := u.helpers.conn(ctx, tx)
		var s models.UserStats
		if err := db.Model(&models.Class{}).Where("user_id = ?", id).Count(&s.ClassCount).Error; err != nil {
			return nil, handleDBError(err, "failed to count classes")
		}
		if err := db.Model(&models.Activity{}).Where("user_id = ?", id).Count(&s.ActivityCount).Error; err != nil {
			return nil, handleDBError(err, "failed to count activities")
		}
		if err := ownedBy(db.Model(&models.ScheduleSlot{}), id).Count(&s.SlotCount).Error; err != nil {
			return nil, handleDBError(err, "failed to count schedule slots")
		}
		return &s, nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

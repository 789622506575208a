package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/organizainador/organizer-service/internal/cache"
	"github.com/organizainador/organizer-service/internal/models"
	"github.com/organizainador/organizer-service/internal/repositories"
)

type ActivityPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewActivityPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.ActivityRepository {
	return newActivityPostgreSQL(NewSharedHelpers(db), cacheManager)
}

func newActivityPostgreSQL(helpers *SharedHelpers, cacheManager *cache.CacheManager) *ActivityPostgreSQL {
	return &ActivityPostgreSQL{
		db:           helpers.db,
		helpers:      helpers,
		cacheManager: cacheManager,
	}
}

func (r *ActivityPostgreSQL) Create(ctx context.Context, tx *gorm.DB, activity *models.Activity) error {
	if err := r.helpers.conn(ctx, tx).Create(activity).Error; err != nil {
		return handleDBError(err, "failed to create activity")
	}
	r.helpers.onCommit(ctx, func(ctx context.Context) {
		cache.SafeDelete(ctx, r.cacheManager.Stats, activity.UserID)
	})
	return nil
}

func (r *ActivityPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Activity, error) {
	var activity models.Activity
	if err := r.helpers.conn(ctx, tx).First(&activity, id).Error; err != nil {
		return nil, handleDBError(err, "failed to get activity")
	}
	return &activity, nil
}

// Update saves name, description and tag.
func (r *ActivityPostgreSQL) Update(ctx context.Context, tx *gorm.DB, activity *models.Activity) error {
	result := r.helpers.conn(ctx, tx).
		Model(&models.Activity{}).
		Where("id = ?", activity.ID).
		Updates(map[string]interface{}{
			"name":        activity.Name,
			"description": activity.Description,
			"tag":         activity.Tag,
		})
	if result.Error != nil {
		return handleDBError(result.Error, "failed to update activity")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "failed to update activity")
	}

	r.invalidate(ctx, activity.UserID)
	return nil
}

// Delete removes the activity and its slots in one transaction and returns how
// many slots went with it.
func (r *ActivityPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) (int64, error) {
	var removed int64
	var ownerID string
	err := r.helpers.conn(ctx, tx).Transaction(func(db *gorm.DB) error {
		activity, err := r.GetByID(ctx, db, id)
		if err != nil {
			return err
		}

	// Removed explicitly so the count is known even without the FK cascade.
		slots := db.Where("activity_id = ?", id).Delete(&models.ScheduleSlot{})
		if slots.Error != nil {
			return handleDBError(slots.Error, "failed to delete activity slots")
		}
		if err := db.Delete(&models.Activity{}, id).Error; err != nil {
			return handleDBError(err, "failed to delete activity")
		}

		removed = slots.RowsAffected
		ownerID = activity.UserID
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.invalidate(ctx, ownerID)
	return removed, nil
}

func (r *ActivityPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID string, filters repositories.ListFilters) ([]*models.Activity, int64, error) {
	query := r.helpers.conn(ctx, tx).Model(&models.Activity{}).Where("user_id = ?", userID)
	query = r.helpers.ApplySearch(query, filters.Search)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "failed to count activities")
	}

	var activities []*models.Activity
	query = r.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&activities).Error; err != nil {
		return nil, 0, handleDBError(err, "failed to list activities")
	}
	return activities, total, nil
}

func (r *ActivityPostgreSQL) CountByUser(ctx context.Context, tx *gorm.DB, userID string) (int64, error) {
	var count int64
	err := r.helpers.conn(ctx, tx).
		Model(&models.Activity{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, handleDBError(err, "failed to count activities")
}

// invalidate drops the owner's slot list and counters once the write is
// committed.
func (r *ActivityPostgreSQL) invalidate(ctx context.Context, userID string) {
	r.helpers.onCommit(ctx, func(ctx context.Context) {
		cache.InvalidateUserSlots(ctx, r.cacheManager, userID)
	})
}

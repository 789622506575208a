package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/organizainador/organizer-service/internal/cache"
	"github.com/organizainador/organizer-service/internal/models"
	"github.com/organizainador/organizer-service/internal/repositories"
)

type ClassPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewClassPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.ClassRepository {
	return newClassPostgreSQL(NewSharedHelpers(db), cacheManager)
}

func newClassPostgreSQL(helpers *SharedHelpers, cacheManager *cache.CacheManager) *ClassPostgreSQL {
	return &ClassPostgreSQL{
		db:           helpers.db,
		helpers:      helpers,
		cacheManager: cacheManager,
	}
}

func (r *ClassPostgreSQL) Create(ctx context.Context, tx *gorm.DB, class *models.Class) error {
	if err := r.helpers.conn(ctx, tx).Create(class).Error; err != nil {
		return handleDBError(err, "failed to create class")
	}
	r.helpers.onCommit(ctx, func(ctx context.Context) {
		cache.SafeDelete(ctx, r.cacheManager.Stats, class.UserID)
	})
	return nil
}

func (r *ClassPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Class, error) {
	var class models.Class
	if err := r.helpers.conn(ctx, tx).First(&class, id).Error; err != nil {
		return nil, handleDBError(err, "failed to get class")
	}
	return &class, nil
}

// Update saves the editable fields. Slot lists embed the class name, so the
// owner's slot cache is dropped.
func (r *ClassPostgreSQL) Update(ctx context.Context, tx *gorm.DB, class *models.Class) error {
	result := r.helpers.conn(ctx, tx).
		Model(&models.Class{}).
		Where("id = ?", class.ID).
		Updates(map[string]interface{}{
			"name":          class.Name,
			"description":   class.Description,
			"hours_per_day": class.HoursPerDay,
		})
	if result.Error != nil {
		return handleDBError(result.Error, "failed to update class")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "failed to update class")
	}

	r.invalidate(ctx, class.UserID)
	return nil
}

// Delete removes the class and its slots in one transaction and returns how
// many slots went with it.
func (r *ClassPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) (int64, error) {
	var removed int64
	var ownerID string
	err := r.helpers.conn(ctx, tx).Transaction(func(db *gorm.DB) error {
		class, err := r.GetByID(ctx, db, id)
		if err != nil {
			return err
		}

		slots := db.Where("class_id = ?", id).Delete(&models.ScheduleSlot{})
		if slots.Error != nil {
			return handleDBError(slots.Error, "failed to delete class slots")
		}
		if err := db.Delete(&models.Class{}, id).Error; err != nil {
			return handleDBError(err, "failed to delete class")
		}

		removed = slots.RowsAffected
		ownerID = class.UserID
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.invalidate(ctx, ownerID)
	return removed, nil
}

func (r *ClassPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID string, filters repositories.ListFilters) ([]*models.Class, int64, error) {
	query := r.helpers.conn(ctx, tx).Model(&models.Class{}).Where("user_id = ?", userID)
	query = r.helpers.ApplySearch(query, filters.Search)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "failed to count classes")
	}

	var classes []*models.Class
	query = r.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&classes).Error; err != nil {
		return nil, 0, handleDBError(err, "failed to list classes")
	}
	return classes, total, nil
}

func (r *ClassPostgreSQL) CountByUser(ctx context.Context, tx *gorm.DB, userID string) (int64, error) {
	var count int64
	err := r.helpers.conn(ctx, tx).
		Model(&models.Class{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, handleDBError(err, "failed to count classes")
}

// invalidate drops the owner's slot list and counters once the write is
// committed.
func (r *ClassPostgreSQL) invalidate(ctx context.Context, userID string) {
	r.helpers.onCommit(ctx, func(ctx context.Context) {
		cache.InvalidateUserSlots(ctx, r.cacheManager, userID)
	})
}

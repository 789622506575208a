package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/organizainador/organizer-service/internal/cache"
	"github.com/organizainador/organizer-service/internal/models"
	"github.com/organizainador/organizer-service/internal/repositories"
)

type SlotPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewSlotPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.SlotRepository {
	return newSlotPostgreSQL(NewSharedHelpers(db), cacheManager)
}

func newSlotPostgreSQL(helpers *SharedHelpers, cacheManager *cache.CacheManager) *SlotPostgreSQL {
	return &SlotPostgreSQL{
		db:           helpers.db,
		helpers:      helpers,
		cacheManager: cacheManager,
	}
}

// ownedBy restricts a slot query to slots reachable from userID.
func ownedBy(query *gorm.DB, userID string) *gorm.DB {
	return query.
		Joins("LEFT JOIN classes ON classes.id = schedule_slots.class_id").
		Joins("LEFT JOIN activities ON activities.id = schedule_slots.activity_id").
		Where("classes.user_id = ? OR activities.user_id = ?", userID, userID)
}

func (r *SlotPostgreSQL) Create(ctx context.Context, tx *gorm.DB, slot *models.ScheduleSlot) error {
	if err := r.helpers.conn(ctx, tx).Omit("Class", "Activity").Create(slot).Error; err != nil {
		return handleDBError(err, "failed to create schedule slot")
	}
	r.invalidate(ctx, tx, slot)
	return nil
}

func (r *SlotPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ScheduleSlot, error) {
	var slot models.ScheduleSlot
	err := r.helpers.conn(ctx, tx).
		Preload("Class").
		Preload("Activity").
		First(&slot, id).Error
	if err != nil {
		return nil, handleDBError(err, "failed to get schedule slot")
	}
	return &slot, nil
}

// Update saves the timing fields. Owner columns are not written.
func (r *SlotPostgreSQL) Update(ctx context.Context, tx *gorm.DB, slot *models.ScheduleSlot) error {
	result := r.helpers.conn(ctx, tx).
		Model(&models.ScheduleSlot{}).
		Where("id = ?", slot.ID).
		Updates(map[string]interface{}{
			"is_recurring":  slot.IsRecurring,
			"day_of_week":   slot.DayOfWeek,
			"specific_date": slot.SpecificDate,
			"start_time":    slot.StartTime,
			"end_time":      slot.EndTime,
		})
	if result.Error != nil {
		return handleDBError(result.Error, "failed to update schedule slot")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "failed to update schedule slot")
	}

	r.invalidate(ctx, tx, slot)
	return nil
}

func (r *SlotPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	slot, err := r.GetByID(ctx, tx, id)
	if err != nil {
		return err
	}

	if err := r.helpers.conn(ctx, tx).Delete(&models.ScheduleSlot{}, id).Error; err != nil {
		return handleDBError(err, "failed to delete schedule slot")
	}

	r.invalidate(ctx, tx, slot)
	return nil
}

// LockUser serializes slot writes of one user until the surrounding
// transaction ends.
func (r *SlotPostgreSQL) LockUser(ctx context.Context, tx *gorm.DB, userID string) error {
	err := r.helpers.conn(ctx, tx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", userID).Error
	return handleDBError(err, "failed to lock user schedule")
}

// ListByUser reads through the slot cache unless called inside a
// transaction.
func (r *SlotPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.ScheduleSlot, error) {
	if tx != nil || r.helpers.inTx() {
		return r.listByUser(ctx, tx, userID)
	}

	var slots []*models.ScheduleSlot
	err := r.cacheManager.Slots.CacheOrExecute(ctx, cache.SlotListKey(userID), &slots, r.cacheManager.SlotTTL, func() (interface{}, error) {
		return r.listByUser(ctx, nil, userID)
	})
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *SlotPostgreSQL) listByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.ScheduleSlot, error) {
	slots := make([]*models.ScheduleSlot, 0)
	err := ownedBy(r.helpers.conn(ctx, tx).Select("schedule_slots.*"), userID).
		Preload("Class").
		Preload("Activity").
		Order("schedule_slots.id ASC").
		Find(&slots).Error
	if err != nil {
		return nil, handleDBError(err, "failed to list schedule slots")
	}
	return slots, nil
}

func (r *SlotPostgreSQL) ListByClass(ctx context.Context, tx *gorm.DB, classID uint) ([]*models.ScheduleSlot, error) {
	return r.listByOwner(ctx, tx, "class_id", classID)
}

func (r *SlotPostgreSQL) ListByActivity(ctx context.Context, tx *gorm.DB, activityID uint) ([]*models.ScheduleSlot, error) {
	return r.listByOwner(ctx, tx, "activity_id", activityID)
}

func (r *SlotPostgreSQL) listByOwner(ctx context.Context, tx *gorm.DB, column string, ownerID uint) ([]*models.ScheduleSlot, error) {
	slots := make([]*models.ScheduleSlot, 0)
	err := r.helpers.conn(ctx, tx).
		Preload("Class").
		Preload("Activity").
		Where(fmt.Sprintf("%s = ?", column), ownerID).
		Order("is_recurring DESC, start_time ASC").
		Find(&slots).Error
	if err != nil {
		return nil, handleDBError(err, "failed to list schedule slots")
	}
	return slots, nil
}

func (r *SlotPostgreSQL) CountByUser(ctx context.Context, tx *gorm.DB, userID string) (int64, error) {
	var count int64
	err := ownedBy(r.helpers.conn(ctx, tx).Model(&models.ScheduleSlot{}), userID).Count(&count).Error
	return count, handleDBError(err, "failed to count schedule slots")
}

// invalidate resolves the slot's owner now and drops the owner's cached
// list once the write is committed.
func (r *SlotPostgreSQL) invalidate(ctx context.Context, tx *gorm.DB, slot *models.ScheduleSlot) {
	userID, err := r.helpers.SlotOwner(ctx, tx, slot)
	r.helpers.onCommit(ctx, func(ctx context.Context) {
		if err != nil || userID == "" {
			// Without an owner the whole slot cache goes.
			cache.SafeInvalidatePattern(ctx, r.cacheManager.Slots, "*")
			return
		}
		cache.InvalidateUserSlots(ctx, r.cacheManager, userID)
	})
}

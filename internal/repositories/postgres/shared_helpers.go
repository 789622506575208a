package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/organizainador/organizer-service/internal/models"
	"github.com/organizainador/organizer-service/internal/repositories"
)

const uniqueViolation = "23505"

// SharedHelpers contains common database operations
type SharedHelpers struct {
	db *gorm.DB

	// pending is set for repositories bound to a transaction.
	pending *afterCommit
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

func newHelpers(db *gorm.DB, pending *afterCommit) *SharedHelpers {
	return &SharedHelpers{db: db, pending: pending}
}

// onCommit runs hook once the surrounding transaction commits, or
// immediately outside one.
func (h *SharedHelpers) onCommit(ctx context.Context, hook func(context.Context)) {
	h.pending.do(ctx, hook)
}

func (h *SharedHelpers) inTx() bool {
	return h.pending != nil
}

// conn returns the transaction if one is given, otherwise the default DB.
func (h *SharedHelpers) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return h.db.WithContext(ctx)
}

// handleDBError maps driver errors onto repository errors.
func handleDBError(err error, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", action, repositories.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.Is(err, gorm.ErrDuplicatedKey) || (errors.As(err, &pgErr) && pgErr.Code == uniqueViolation) {
		return fmt.Errorf("%s: %w", action, repositories.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", action, err)
}

// ClassOwner returns the user that owns a class.
func (h *SharedHelpers) ClassOwner(ctx context.Context, tx *gorm.DB, classID uint) (string, error) {
	var userIDs []string
	err := h.conn(ctx, tx).
		Model(&models.Class{}).
		Where("id = ?", classID).
		Limit(1).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return "", handleDBError(err, "failed to resolve class owner")
	}
	if len(userIDs) == 0 {
		return "", handleDBError(gorm.ErrRecordNotFound, "failed to resolve class owner")
	}
	return userIDs[0], nil
}

// ActivityOwner returns the user that owns an activity.
func (h *SharedHelpers) ActivityOwner(ctx context.Context, tx *gorm.DB, activityID uint) (string, error) {
	var userIDs []string
	err := h.conn(ctx, tx).
		Model(&models.Activity{}).
		Where("id = ?", activityID).
		Limit(1).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return "", handleDBError(err, "failed to resolve activity owner")
	}
	if len(userIDs) == 0 {
		return "", handleDBError(gorm.ErrRecordNotFound, "failed to resolve activity owner")
	}
	return userIDs[0], nil
}

// SlotOwner resolves the user a slot belongs to through its class or
// activity.
func (h *SharedHelpers) SlotOwner(ctx context.Context, tx *gorm.DB, slot *models.ScheduleSlot) (string, error) {
	if userID := slot.OwnerUserID(); userID != "" {
		return userID, nil
	}
	switch {
	case slot.ClassID != nil:
		return h.ClassOwner(ctx, tx, *slot.ClassID)
	case slot.ActivityID != nil:
		return h.ActivityOwner(ctx, tx, *slot.ActivityID)
	}
	return "", nil
}

// ApplySearch filters on name and description, case-insensitively.
func (h *SharedHelpers) ApplySearch(query *gorm.DB, search string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" {
		return query
	}
	pattern := "%" + search + "%"
	return query.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
}

// ApplyPaginationAndSort applies pagination and sorting with SQL injection protection
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	// Whitelist allowed sort columns
	allowedSortColumns := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"id":         true,
		"name":       true,
		"email":      true,
		"role":       true,
		"status":     true,
	}

	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "ASC" {
		sortOrder = "DESC"
	} else {
		sortOrder = "ASC"
	}

	query = query.Order(sortBy + " " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}

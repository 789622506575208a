package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// BatchInvalidate invalidates pattern on each helper, returning the last error.
func BatchInvalidate(ctx context.Context, helpers []*CacheHelper, pattern string) error {
	var lastErr error
	for _, helper := range helpers {
		if err := helper.InvalidatePattern(ctx, pattern); err != nil {
			lastErr = err
			slog.ErrorContext(ctx, "Failed to invalidate pattern in batch",
				"error", err,
				"prefix", helper.prefix,
				"pattern", pattern)
		}
	}
	return lastErr
}

// SlotListKey is the key of a user's slot list.
func SlotListKey(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}

// InvalidateUserSlots drops everything derived from a user's slots.
func InvalidateUserSlots(ctx context.Context, cm *CacheManager, userID string) {
	SafeDelete(ctx, cm.Slots, SlotListKey(userID))
	SafeDelete(ctx, cm.Stats, userID)
}

// InvalidateUser drops a cached user profile.
func InvalidateUser(ctx context.Context, cm *CacheManager, userID string) {
	SafeDelete(ctx, cm.User, userID)
	SafeDelete(ctx, cm.Stats, userID)
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheHelper stores JSON values under a key prefix
type CacheHelper struct {
	client *redis.Client
	prefix string
}

// NewCacheHelper creates a new cache helper instance
func NewCacheHelper(client *redis.Client, prefix string) *CacheHelper {
	return &CacheHelper{
		client: client,
		prefix: prefix,
	}
}

// CacheConfig defines cache configuration for different data types
type CacheConfig struct {
	TTL    time.Duration
	Prefix string
}

var (
	// SlotCacheConfig holds a user's slot list with owners loaded.
	SlotCacheConfig = CacheConfig{
		TTL:    5 * time.Minute,
		Prefix: "slots:",
	}

	// UserCacheConfig holds local user profiles keyed by id.
	UserCacheConfig = CacheConfig{
		TTL:    10 * time.Minute,
		Prefix: "user:",
	}

	// StatsCacheConfig holds per-user counters.
	StatsCacheConfig = CacheConfig{
		TTL:    2 * time.Minute,
		Prefix: "stats:",
	}
)

func (c *CacheHelper) key(key string) string {
	return c.prefix + key
}

// Get decodes the JSON stored under key into dest. A miss returns
// ErrCacheNotFound.
func (c *CacheHelper) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrCacheNotAvailable
	}

	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheNotFound
	}
	if err != nil {
		return fmt.Errorf("cache get %s: %w", c.prefix, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache decode %s: %w", c.prefix, err)
	}
	return nil
}

// Set stores value as JSON. Without a client it does nothing.
func (c *CacheHelper) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", c.prefix, err)
	}
	return c.client.Set(ctx, c.key(key), data, ttl).Err()
}

func (c *CacheHelper) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}

	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = c.key(key)
	}
	return c.client.Del(ctx, full...).Err()
}

// InvalidatePattern deletes every key under the prefix matching pattern.
// Keys are collected over the whole SCAN before any are deleted.
func (c *CacheHelper) InvalidatePattern(ctx context.Context, pattern string) error {
	if c.client == nil {
		return nil
	}

	match := c.key(pattern)
	var keys []string
	iter := c.client.Scan(ctx, 0, match, scanBatchSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan %s: %w", match, err)
	}

	for start := 0; start < len(keys); start += scanBatchSize {
		end := min(start+scanBatchSize, len(keys))
		if err := c.client.Unlink(ctx, keys[start:end]...).Err(); err != nil {
			return fmt.Errorf("cache delete %s: %w", match, err)
		}
	}

	slog.DebugContext(ctx, "Cache pattern invalidated", "pattern", match, "keys", len(keys))
	return nil
}

// CacheOrExecute implements cache-aside: dest is filled from cache when
// present, otherwise from fetchFunc, whose result is then cached.
func (c *CacheHelper) CacheOrExecute(ctx context.Context, key string, dest interface{}, ttl time.Duration, fetchFunc func() (interface{}, error)) error {
	err := c.Get(ctx, key, dest)
	if err == nil {
		return nil
	}

	if !errors.Is(err, ErrCacheNotFound) && !errors.Is(err, ErrCacheNotAvailable) {
		slog.WarnContext(ctx, "Cache get error, proceeding to fetch", "error", err)
	}

	value, err := fetchFunc()
	if err != nil {
		return err
	}

	if err := c.Set(ctx, key, value, ttl); err != nil {
		slog.WarnContext(ctx, "Cache set error", "error", err)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal result error: %w", err)
	}

	return json.Unmarshal(data, dest)
}

const scanBatchSize = 100

var (
	ErrCacheNotAvailable = errors.New("cache not available")
	ErrCacheNotFound     = errors.New("cache not found")
)

// CacheManager groups the cache helpers used by the repositories.
type CacheManager struct {
	client *redis.Client

	Slots *CacheHelper
	User  *CacheHelper
	Stats *CacheHelper

	SlotTTL time.Duration
}

// NewCacheManager creates the helpers. A nil client yields helpers that miss
// on every read and ignore writes. A non-positive slotTTL uses the default.
func NewCacheManager(client *redis.Client, slotTTL time.Duration) *CacheManager {
	if slotTTL <= 0 {
		slotTTL = SlotCacheConfig.TTL
	}

	return &CacheManager{
		client:  client,
		Slots:   NewCacheHelper(client, SlotCacheConfig.Prefix),
		User:    NewCacheHelper(client, UserCacheConfig.Prefix),
		Stats:   NewCacheHelper(client, StatsCacheConfig.Prefix),
		SlotTTL: slotTTL,
	}
}

// Enabled reports whether a Redis client is configured.
func (cm *CacheManager) Enabled() bool {
	return cm.client != nil
}

// HealthCheck verifies cache connectivity
func (cm *CacheManager) HealthCheck(ctx context.Context) error {
	if cm.client == nil {
		return ErrCacheNotAvailable
	}

	_, err := cm.client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}

	return nil
}

// ClearAll removes every key owned by the service's helpers.
func (cm *CacheManager) ClearAll(ctx context.Context) error {
	if cm.client == nil {
		return nil
	}

	return BatchInvalidate(ctx, []*CacheHelper{cm.Slots, cm.User, cm.Stats}, "*")
}

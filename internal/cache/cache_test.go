package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedSlot struct {
	ID    uint   `json:"id"`
	Owner string `json:"owner"`
}

func newTestManager(t *testing.T) (*CacheManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheManager(client, time.Minute), mr
}

func TestCacheHelper_SetGetDelete(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, cm.Slots.Set(ctx, SlotListKey("u1"), []cachedSlot{{ID: 1, Owner: "Calculus"}}, time.Minute))
	assert.True(t, mr.Exists("slots:user:u1"))

	var got []cachedSlot
	require.NoError(t, cm.Slots.Get(ctx, SlotListKey("u1"), &got))
	assert.Equal(t, []cachedSlot{{ID: 1, Owner: "Calculus"}}, got)

	require.NoError(t, cm.Slots.Delete(ctx, SlotListKey("u1")))
	assert.ErrorIs(t, cm.Slots.Get(ctx, SlotListKey("u1"), &got), ErrCacheNotFound)
}

func TestCacheHelper_Expires(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, cm.Slots.Set(ctx, "k", "v", time.Minute))
	mr.FastForward(2 * time.Minute)

	var got string
	assert.ErrorIs(t, cm.Slots.Get(ctx, "k", &got), ErrCacheNotFound)
}

func TestCacheHelper_NilClient(t *testing.T) {
	cm := NewCacheManager(nil, 0)
	ctx := context.Background()

	assert.False(t, cm.Enabled())
	assert.Equal(t, SlotCacheConfig.TTL, cm.SlotTTL)
	assert.NoError(t, cm.Slots.Set(ctx, "k", "v", time.Minute))
	var got string
	assert.ErrorIs(t, cm.Slots.Get(ctx, "k", &got), ErrCacheNotAvailable)
	assert.ErrorIs(t, cm.HealthCheck(ctx), ErrCacheNotAvailable)
	assert.NoError(t, cm.ClearAll(ctx))
}

func TestCacheOrExecute(t *testing.T) {
	cm, _ := newTestManager(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return []cachedSlot{{ID: 7, Owner: "Gym"}}, nil
	}

	for i := 0; i < 2; i++ {
		var got []cachedSlot
		require.NoError(t, cm.Slots.CacheOrExecute(ctx, "list", &got, time.Minute, fetch))
		assert.Equal(t, []cachedSlot{{ID: 7, Owner: "Gym"}}, got)
	}
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	var got []cachedSlot
	err := cm.Slots.CacheOrExecute(ctx, "other", &got, time.Minute, func() (interface{}, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}

func TestInvalidateUserSlots(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, cm.Slots.Set(ctx, SlotListKey("u1"), []cachedSlot{}, time.Minute))
	require.NoError(t, cm.Slots.Set(ctx, SlotListKey("u2"), []cachedSlot{}, time.Minute))
	require.NoError(t, cm.Stats.Set(ctx, "u1", map[string]int{"slots": 1}, time.Minute))

	InvalidateUserSlots(ctx, cm, "u1")

	assert.False(t, mr.Exists("slots:user:u1"))
	assert.False(t, mr.Exists("stats:u1"))
	assert.True(t, mr.Exists("slots:user:u2"))
}

func TestClearAll_KeepsForeignKeys(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, cm.Slots.Set(ctx, SlotListKey("u1"), []cachedSlot{}, time.Minute))
	require.NoError(t, cm.User.Set(ctx, "u1", "profile", time.Minute))
	require.NoError(t, mr.Set("other-service:key", "x"))

	require.NoError(t, cm.ClearAll(ctx))

	assert.False(t, mr.Exists("slots:user:u1"))
	assert.False(t, mr.Exists("user:u1"))
	assert.True(t, mr.Exists("other-service:key"))
	assert.NoError(t, cm.HealthCheck(ctx))
}

func TestInvalidatePattern_SpansScanPages(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	for i := 0; i < 2*scanBatchSize+7; i++ {
		require.NoError(t, cm.Slots.Set(ctx, SlotListKey(fmt.Sprintf("u%d", i)), []cachedSlot{{ID: uint(i)}}, time.Minute))
	}
	require.NoError(t, cm.Stats.Set(ctx, "u1", 3, time.Minute))

	require.NoError(t, cm.Slots.InvalidatePattern(ctx, "user:*"))

	for _, key := range mr.Keys() {
		assert.NotContains(t, key, "slots:")
	}
	assert.True(t, mr.Exists("stats:u1"))
}

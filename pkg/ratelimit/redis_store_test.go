package ratelimit_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantguard/pkg/ratelimit"
)

func newRedisStore(t *testing.T) (*ratelimit.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := ratelimit.NewRedisStore(client)
	require.NoError(t, err)
	return store, mr
}

func TestNewRedisStore_RequiresClient(t *testing.T) {
	t.Parallel()

	_, err := ratelimit.NewRedisStore(nil)
	assert.ErrorIs(t, err, ratelimit.ErrStoreRequired)
}

func TestRedisStore_RecordIfAllowed(t *testing.T) {
	t.Parallel()

	store, _ := newRedisStore(t)

	now := time.Now()
	for i := range 3 {
		allowed, count, err := store.RecordIfAllowed(t.Context(), "tenant-a", now, time.Minute, 3)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, int64(i+1), count)
	}

	allowed, count, err := store.RecordIfAllowed(t.Context(), "tenant-a", now, time.Minute, 3)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, int64(3), count)
}

func TestRedisStore_WindowExpiry(t *testing.T) {
	t.Parallel()

	store, _ := newRedisStore(t)

	old := time.Now().Add(-2 * time.Minute)
	allowed, _, err := store.RecordIfAllowed(t.Context(), "tenant-a", old, time.Minute, 1)
	require.NoError(t, err)
	require.True(t, allowed)

	// The old timestamp falls out of the window, so the new request fits.
	allowed, count, err := store.RecordIfAllowed(t.Context(), "tenant-a", time.Now(), time.Minute, 1)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, int64(1), count)
}

func TestRedisStore_CountAndReset(t *testing.T) {
	t.Parallel()

	store, _ := newRedisStore(t)

	now := time.Now()
	for range 2 {
		_, _, err := store.RecordIfAllowed(t.Context(), "tenant-a", now, time.Minute, 10)
		require.NoError(t, err)
	}

	count, err := store.Count(t.Context(), "tenant-a", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, store.Reset(t.Context(), "tenant-a"))

	count, err = store.Count(t.Context(), "tenant-a", time.Minute)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRedisStore_WithSlidingWindow(t *testing.T) {
	t.Parallel()

	store, _ := newRedisStore(t)

	sw, err := ratelimit.NewSlidingWindow(store, 2, time.Minute)
	require.NoError(t, err)

	res, err := sw.Allow(t.Context(), "tenant-a")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = sw.Allow(t.Context(), "tenant-a")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = sw.Allow(t.Context(), "tenant-a")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
}

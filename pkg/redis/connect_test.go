package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantguard/pkg/redis"
)

func TestConnect(t *testing.T) {
	t.Parallel()

	t.Run("connects to a live server", func(t *testing.T) {
		t.Parallel()

		srv := miniredis.RunT(t)
		client, err := redis.Connect(context.Background(), redis.Config{
			ConnectionURL:  "redis://" + srv.Addr(),
			RetryAttempts:  1,
			ConnectTimeout: time.Second,
		})
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })

		assert.NoError(t, redis.Healthcheck(client)(context.Background()))
	})

	t.Run("empty url", func(t *testing.T) {
		t.Parallel()

		_, err := redis.Connect(context.Background(), redis.Config{})
		assert.ErrorIs(t, err, redis.ErrEmptyConnectionURL)
	})

	t.Run("invalid url", func(t *testing.T) {
		t.Parallel()

		_, err := redis.Connect(context.Background(), redis.Config{ConnectionURL: "::not-a-url"})
		assert.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)
	})

	t.Run("unreachable server", func(t *testing.T) {
		t.Parallel()

		_, err := redis.Connect(context.Background(), redis.Config{
			ConnectionURL:  "redis://127.0.0.1:1",
			RetryAttempts:  2,
			RetryInterval:  10 * time.Millisecond,
			ConnectTimeout: time.Second,
		})
		assert.ErrorIs(t, err, redis.ErrRedisNotReady)
	})
}

package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// recordScript trims expired members, checks the limit, and records the new
// timestamp in one atomic round trip. KEYS[1] is the window key; ARGV are
// now (unix micros), window (micros), limit, and a unique member suffix.
var recordScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
	return {0, count}
end
redis.call('ZADD', key, now, member)
redis.call('PEXPIRE', key, math.ceil(window / 1000))
return {1, count + 1}
`)

// RedisStore keeps timestamp windows in Redis sorted sets with native expiry.
// Use it when multiple processes must share rate limit state; the sorted set
// TTL replaces in-process eviction.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix namespaces the store's keys, default "ratelimit:".
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.keyPrefix = prefix
		}
	}
}

// NewRedisStore creates a Redis-backed sliding window store.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) (*RedisStore, error) {
	if client == nil {
		return nil, ErrStoreRequired
	}

	s := &RedisStore{
		client:    client,
		keyPrefix: "ratelimit:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RecordIfAllowed atomically admits and records the request via a Lua script.
func (s *RedisStore) RecordIfAllowed(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (bool, int64, error) {
	member := strconv.FormatInt(now.UnixNano(), 10) + ":" + uuid.NewString()

	res, err := recordScript.Run(ctx, s.client, []string{s.keyPrefix + key},
		now.UnixMicro(), window.Microseconds(), limit, member,
	).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("ratelimit: redis record: %w", err)
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("ratelimit: unexpected script reply length %d", len(res))
	}

	return res[0] == 1, res[1], nil
}

// Count returns the number of timestamps within the window.
func (s *RedisStore) Count(ctx context.Context, key string, window time.Duration) (int64, error) {
	now := time.Now()
	minScore := strconv.FormatInt(now.Add(-window).UnixMicro(), 10)

	count, err := s.client.ZCount(ctx, s.keyPrefix+key, minScore, "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("ratelimit: redis count: %w", err)
	}
	return count, nil
}

// Reset removes all recorded timestamps for the key.
func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("ratelimit: redis reset: %w", err)
	}
	return nil
}

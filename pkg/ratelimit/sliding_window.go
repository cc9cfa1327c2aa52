package ratelimit

import (
	"context"
	"time"
)

// SlidingWindow implements a sliding window rate limiter that tracks
// individual request timestamps within a moving time window. More accurate
// than fixed buckets at the window edge, at the cost of storing timestamps.
type SlidingWindow struct {
	store  Store
	limit  int
	window time.Duration
}

// NewSlidingWindow creates a new sliding window rate limiter.
func NewSlidingWindow(store Store, limit int, window time.Duration) (*SlidingWindow, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if window <= 0 {
		return nil, ErrInvalidWindow
	}

	return &SlidingWindow{
		store:  store,
		limit:  limit,
		window: window,
	}, nil
}

// Allow checks if a request is allowed for the given key, recording it if so.
func (sw *SlidingWindow) Allow(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	now := time.Now()

	allowed, count, err := sw.store.RecordIfAllowed(ctx, key, now, sw.window, sw.limit)
	if err != nil {
		return nil, err
	}

	return &Result{
		Allowed:   allowed,
		Limit:     sw.limit,
		Remaining: max(0, sw.limit-int(count)),
		ResetAt:   now.Add(sw.window),
	}, nil
}

// Status returns the current rate limit status without consuming a slot.
func (sw *SlidingWindow) Status(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	count, err := sw.store.Count(ctx, key, sw.window)
	if err != nil {
		return nil, err
	}

	remaining := sw.limit - int(count)

	return &Result{
		Allowed:   remaining > 0,
		Limit:     sw.limit,
		Remaining: max(0, remaining),
		ResetAt:   time.Now().Add(sw.window),
	}, nil
}

// Reset resets the rate limit for the given key.
func (sw *SlidingWindow) Reset(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}

	return sw.store.Reset(ctx, key)
}

package ratelimit

import (
	"context"
	"time"
)

// Result contains the result of a rate limit check.
type Result struct {
	// Allowed indicates whether the request is allowed.
	Allowed bool

	// Limit is the maximum number of requests allowed in the window.
	Limit int

	// Remaining is the number of requests remaining in the current window.
	Remaining int

	// ResetAt is the time when the rate limit window resets.
	ResetAt time.Time
}

// RetryAfter returns how long to wait before the next request is allowed.
// Returns 0 if the current request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Store is the timestamp-window storage backend for sliding window limiters.
// Implementations must be safe for concurrent use; cross-process accuracy may
// be eventually consistent since rate limiting is defense-in-depth, not a ledger.
type Store interface {
	// RecordIfAllowed atomically checks whether another request fits in the
	// window ending at now and records its timestamp if so. Returns whether
	// the request was admitted and the count of requests in the window after
	// the operation.
	RecordIfAllowed(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (allowed bool, count int64, err error)

	// Count returns the number of recorded timestamps within the window.
	Count(ctx context.Context, key string, window time.Duration) (int64, error)

	// Reset removes all recorded timestamps for the key.
	Reset(ctx context.Context, key string) error
}

package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps per-key timestamp lists in memory. Expired timestamps are
// trimmed oldest-first on every operation and a background loop drops idle
// keys, so memory stays bounded by the number of active keys times the limit.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window

	cleanupInterval time.Duration
	maxIdle         time.Duration
	stopCleanup     chan struct{}
	cleanupOnce     sync.Once
}

type window struct {
	timestamps []time.Time
	lastSeen   time.Time
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithCleanupInterval sets how often idle keys are dropped.
func WithCleanupInterval(interval time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.cleanupInterval = interval
		}
	}
}

// WithMaxIdle sets how long a key may stay untouched before eviction.
func WithMaxIdle(d time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) {
		if d > 0 {
			s.maxIdle = d
		}
	}
}

// NewMemoryStore creates an in-memory store with automatic cleanup.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		windows:         make(map[string]*window),
		cleanupInterval: time.Minute,
		maxIdle:         2 * time.Hour,
		stopCleanup:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	go s.cleanupLoop()

	return s
}

// RecordIfAllowed trims expired timestamps, then admits and records the
// request only when the windowed count is below the limit.
func (s *MemoryStore) RecordIfAllowed(ctx context.Context, key string, now time.Time, windowDur time.Duration, limit int) (bool, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok {
		w = &window{}
		s.windows[key] = w
	}
	w.lastSeen = now
	w.trim(now.Add(-windowDur))

	if len(w.timestamps) >= limit {
		return false, int64(len(w.timestamps)), nil
	}

	w.timestamps = append(w.timestamps, now)
	return true, int64(len(w.timestamps)), nil
}

// Count returns the number of timestamps within the window.
func (s *MemoryStore) Count(ctx context.Context, key string, windowDur time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok {
		return 0, nil
	}
	w.trim(time.Now().Add(-windowDur))
	return int64(len(w.timestamps)), nil
}

// Reset removes all recorded timestamps for the key.
func (s *MemoryStore) Reset(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.windows, key)
	return nil
}

// Close stops the background cleanup loop. Safe for repeated calls.
func (s *MemoryStore) Close() error {
	s.cleanupOnce.Do(func() {
		close(s.stopCleanup)
	})
	return nil
}

// trim drops timestamps at or before the cutoff, oldest first.
func (w *window) trim(cutoff time.Time) {
	i := 0
	for i < len(w.timestamps) && !w.timestamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.timestamps = append(w.timestamps[:0], w.timestamps[i:]...)
	}
}

func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.dropIdle()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *MemoryStore) dropIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.maxIdle)
	for key, w := range s.windows {
		if w.lastSeen.Before(cutoff) {
			delete(s.windows, key)
		}
	}
}

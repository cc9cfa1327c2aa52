package audit

import (
	"context"
	"log/slog"
	"sync"
)

// Storage persists audit events.
type Storage interface {
	// Store appends an event. Implementations must be safe for concurrent use.
	Store(ctx context.Context, event Event) error

	// Recent returns up to n most recent events, newest last.
	Recent(ctx context.Context, n int) ([]Event, error)
}

// DefaultCapacity bounds the in-memory event window.
const DefaultCapacity = 1000

// MemoryStorage keeps a bounded window of events in memory, trimming the
// oldest entries once capacity is reached.
type MemoryStorage struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
}

// NewMemoryStorage creates an in-memory storage holding at most capacity events.
func NewMemoryStorage(capacity int) *MemoryStorage {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStorage{
		events:   make([]Event, 0, capacity),
		capacity: capacity,
	}
}

// Store appends the event, evicting the oldest entries past capacity.
func (s *MemoryStorage) Store(ctx context.Context, event Event) error {
	if err := event.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, event)
	if overflow := len(s.events) - s.capacity; overflow > 0 {
		s.events = append(s.events[:0], s.events[overflow:]...)
	}
	return nil
}

// Recent returns up to n most recent events, newest last.
func (s *MemoryStorage) Recent(ctx context.Context, n int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || n > len(s.events) {
		n = len(s.events)
	}
	out := make([]Event, n)
	copy(out, s.events[len(s.events)-n:])
	return out, nil
}

// Len returns the number of retained events.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// SlogStorage emits events to a structured logger in addition to delegating
// to an optional next storage. Useful for shipping audit trails through the
// regular log pipeline.
type SlogStorage struct {
	log  *slog.Logger
	next Storage
}

// NewSlogStorage creates a storage that logs every event. If next is non-nil,
// events are also forwarded to it.
func NewSlogStorage(log *slog.Logger, next Storage) *SlogStorage {
	if log == nil {
		log = slog.Default()
	}
	return &SlogStorage{log: log, next: next}
}

func (s *SlogStorage) Store(ctx context.Context, event Event) error {
	if err := event.Validate(); err != nil {
		return err
	}

	s.log.LogAttrs(ctx, severityLevel(event.Severity), "security audit event",
		slog.String("event_id", event.ID),
		slog.String("tenant_id", event.TenantID),
		slog.String("violation", event.Violation),
		slog.String("severity", string(event.Severity)),
		slog.String("ip", event.IP),
		slog.String("path", event.Path),
		slog.String("method", event.Method),
		slog.String("description", event.Description),
		slog.Bool("blocked", event.Blocked),
	)

	if s.next != nil {
		return s.next.Store(ctx, event)
	}
	return nil
}

func (s *SlogStorage) Recent(ctx context.Context, n int) ([]Event, error) {
	if s.next != nil {
		return s.next.Recent(ctx, n)
	}
	return nil, nil
}

func severityLevel(sev Severity) slog.Level {
	switch sev {
	case SeverityLow:
		return slog.LevelInfo
	case SeverityMedium:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

package audit

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Severity classifies how serious a recorded violation is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Event is an immutable record of a detected or potential security violation.
type Event struct {
	ID          string         `json:"id"`
	TenantID    string         `json:"tenant_id"`
	UserID      string         `json:"user_id,omitempty"`
	RequestID   string         `json:"request_id,omitempty"`
	Violation   string         `json:"violation_type"`
	Severity    Severity       `json:"severity"`
	IP          string         `json:"ip,omitempty"`
	UserAgent   string         `json:"user_agent,omitempty"`
	Path        string         `json:"path,omitempty"`
	Method      string         `json:"method,omitempty"`
	Description string         `json:"description"`
	Details     map[string]any `json:"details,omitempty"`
	Blocked     bool           `json:"blocked"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Validate checks if the event has all required fields.
func (e *Event) Validate() error {
	if e.Violation == "" {
		return fmt.Errorf("%w: violation type is required", ErrEventValidation)
	}
	if e.Severity == "" {
		return fmt.Errorf("%w: severity is required", ErrEventValidation)
	}
	return nil
}

// NewEvent creates an event with a fresh id and timestamp, applying options.
func NewEvent(violation string, severity Severity, opts ...EventOption) Event {
	e := Event{
		ID:        uuid.New().String(),
		Violation: violation,
		Severity:  severity,
		CreatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// EventOption applies configuration to an Event during creation.
type EventOption func(*Event)

// WithTenant sets the tenant the event belongs to.
func WithTenant(tenantID string) EventOption {
	return func(e *Event) { e.TenantID = tenantID }
}

// WithUser sets the acting user.
func WithUser(userID string) EventOption {
	return func(e *Event) { e.UserID = userID }
}

// WithRequest records request correlation data.
func WithRequest(requestID, method, path string) EventOption {
	return func(e *Event) {
		e.RequestID = requestID
		e.Method = method
		e.Path = path
	}
}

// WithClient records client identifiers.
func WithClient(ip, userAgent string) EventOption {
	return func(e *Event) {
		e.IP = ip
		e.UserAgent = userAgent
	}
}

// WithDescription sets the human-readable description.
func WithDescription(desc string) EventOption {
	return func(e *Event) { e.Description = desc }
}

// WithDetails attaches structured details to the event.
func WithDetails(details map[string]any) EventOption {
	return func(e *Event) { e.Details = details }
}

// WithBlocked marks whether the request was blocked as a result.
func WithBlocked(blocked bool) EventOption {
	return func(e *Event) { e.Blocked = blocked }
}

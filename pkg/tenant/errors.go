package tenant

import (
	"errors"
	"fmt"
)

var (
	// ErrTenantNotFound is returned by providers when a tenant cannot be found.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrInvalidIdentifier is returned when the identifier format is invalid.
	ErrInvalidIdentifier = errors.New("invalid tenant identifier")

	// ErrNoTenantInContext is returned when downstream code requires the
	// current tenant but none was installed. Treated as a defect, never
	// silently defaulted.
	ErrNoTenantInContext = errors.New("no tenant in context")

	// ErrInactiveTenant is returned when trying to use an inactive tenant.
	ErrInactiveTenant = errors.New("tenant is inactive")

	// errNoMatch is the internal "no match, try the next strategy" outcome.
	// It is deliberately cheap and side-effect-free: only genuine failures
	// become typed errors.
	errNoMatch = errors.New("no strategy match")
)

// NotFoundError reports an identifying value that was present in the request
// but is not mapped to any tenant.
type NotFoundError struct {
	Identifier string
	Method     Method
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tenant not found for %q (method %s)", e.Identifier, e.Method)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrTenantNotFound
}

// ResolutionError reports that a strategy could not even attempt resolution:
// malformed input, an out-of-range position, or a missing required header.
// It is always surfaced to the client, never silently defaulted — not even
// when a fallback tenant is configured.
type ResolutionError struct {
	Message  string
	Strategy string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("tenant resolution failed (%s strategy): %s", e.Strategy, e.Message)
}

// SecurityError is implemented by boundary-enforcement errors so the
// middleware can translate them to 403 responses without importing the
// enforcer package.
type SecurityError interface {
	error
	// SecurityViolation returns the machine-readable violation kind.
	SecurityViolation() string
}

package tenant

import (
	"context"
	"log/slog"
)

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// WithContext installs the resolved tenant for the lifetime of the request.
// The returned context — not any process-wide state — is the propagation
// slot: every concurrently-executing request owns its own context chain, so
// installed tenants are isolated across goroutines by construction and die
// with the request without explicit clearing.
func WithContext(ctx context.Context, tc *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// FromContext retrieves the tenant of the currently-executing request.
// Returns nil, false if no tenant is installed.
func FromContext(ctx context.Context) (*Context, bool) {
	tc, ok := ctx.Value(contextKey{}).(*Context)
	return tc, ok && tc != nil
}

// IDFromContext retrieves just the tenant ID from the context.
// Returns empty string and false if no tenant is installed.
func IDFromContext(ctx context.Context) (string, bool) {
	tc, ok := FromContext(ctx)
	if !ok {
		return "", false
	}
	return tc.TenantID, true
}

// RequireFromContext retrieves the tenant or fails with ErrNoTenantInContext.
// Call it at the top of any tenant-aware operation: a missing tenant there is
// a defect in the middleware wiring and must fail loudly rather than default
// to an arbitrary tenant.
func RequireFromContext(ctx context.Context) (*Context, error) {
	tc, ok := FromContext(ctx)
	if !ok {
		return nil, ErrNoTenantInContext
	}
	return tc, nil
}

// MustFromContext retrieves the tenant from the context.
// Panics if no tenant is installed. Use only in handlers that are always
// mounted behind the tenant middleware.
func MustFromContext(ctx context.Context) *Context {
	tc, ok := FromContext(ctx)
	if !ok {
		panic("tenant: no tenant in context")
	}
	return tc
}

// LoggerExtractor returns a ContextExtractor for the logger that injects the
// current tenant id into every log record.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.String("tenant_id", id), true
		}
		return slog.Attr{}, false
	}
}

package tenant

import (
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// Resolver orchestrates resolution strategies and produces a request-scoped
// tenant Context or a typed failure. Resolution never silently defaults:
// every path yields a concrete identity or an error, and the configured
// fallback tenant is always logged when substituted.
type Resolver struct {
	strategy Strategy
	provider Provider
	fallback string
	cache    *resolutionCache
	log      *slog.Logger

	requireActive bool
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithProvider sets the data source used to enrich resolved identifiers with
// tenant records. Without a provider, contexts carry the identifier alone.
func WithProvider(p Provider) ResolverOption {
	return func(r *Resolver) { r.provider = p }
}

// WithFallbackTenant substitutes the given tenant id when no strategy
// matches. The substitution is marked with MethodFallback and logged, never
// silent, and it never overrides a hard resolution failure.
func WithFallbackTenant(id string) ResolverOption {
	return func(r *Resolver) { r.fallback = id }
}

// WithCache enables the bounded resolution cache.
func WithCache(size int, ttl time.Duration) ResolverOption {
	return func(r *Resolver) {
		if ttl > 0 {
			r.cache = newResolutionCache(size, ttl)
		}
	}
}

// WithResolverLogger sets the logger for resolution events.
func WithResolverLogger(log *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// WithRequireActive rejects tenants whose provider record is inactive.
func WithRequireActive(require bool) ResolverOption {
	return func(r *Resolver) { r.requireActive = require }
}

// NewResolver creates a resolver around the given strategy.
func NewResolver(strategy Strategy, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		strategy:      strategy,
		log:           slog.Default(),
		requireActive: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve maps the request to a tenant Context.
// Fails with *NotFoundError when an identifier is present but unmapped and no
// fallback exists, or *ResolutionError when a strategy could not attempt
// resolution. Identical input always yields an identical
// (tenant id, method) pair.
func (r *Resolver) Resolve(req *http.Request) (*Context, error) {
	m, err := r.strategy.resolve(req)
	if err != nil {
		var re *ResolutionError
		if errors.As(err, &re) {
			// Hard failures are always surfaced; the fallback never bypasses
			// an explicit policy like a required header.
			return nil, err
		}

		if r.fallback != "" {
			r.log.WarnContext(req.Context(), "tenant resolution fell back to configured tenant",
				slog.String("fallback_tenant_id", r.fallback),
				slog.String("host", req.Host),
				slog.String("path", req.URL.Path),
			)
			return r.buildContext(req, match{
				tenantID:     r.fallback,
				method:       MethodFallback,
				resolvedFrom: "config",
			})
		}

		if errors.Is(err, errNoMatch) {
			return nil, &NotFoundError{Identifier: stripPort(req.Host), Method: Method(r.strategy.Kind())}
		}
		return nil, err
	}

	return r.buildContext(req, m)
}

// buildContext enriches the matched identifier through the cache and
// provider, then assembles the immutable request context.
func (r *Resolver) buildContext(req *http.Request, m match) (*Context, error) {
	tc := &Context{
		TenantID:     m.tenantID,
		Method:       m.method,
		ResolvedFrom: m.resolvedFrom,
	}

	record, cached := r.cache.get(m.method, m.resolvedFrom)
	if !cached && r.provider != nil {
		loaded, err := r.provider.GetByIdentifier(req.Context(), m.tenantID)
		if err != nil {
			if errors.Is(err, ErrTenantNotFound) {
				return nil, &NotFoundError{Identifier: m.tenantID, Method: m.method}
			}
			return nil, err
		}
		record = loaded
		r.cache.set(m.method, m.resolvedFrom, record)
	}

	if record != nil {
		if r.requireActive && !record.Active {
			return nil, ErrInactiveTenant
		}
		tc.TenantID = record.ID
		tc.Name = record.Name
		tc.Metadata = record.Metadata
		tc.SecurityLevel = record.SecurityLevel
		tc.Permissions = record.Permissions
	}

	r.log.DebugContext(req.Context(), "tenant resolved",
		slog.String("tenant_id", tc.TenantID),
		slog.String("resolution_method", string(tc.Method)),
		slog.String("resolved_from", tc.ResolvedFrom),
	)

	return tc, nil
}

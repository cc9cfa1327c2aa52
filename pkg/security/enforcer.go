package security

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/tenantguard/pkg/audit"
	"github.com/dmitrymomot/tenantguard/pkg/clientip"
	"github.com/dmitrymomot/tenantguard/pkg/ratelimit"
	"github.com/dmitrymomot/tenantguard/pkg/tenant"
)

// Enforcer validates the tenant security boundary after resolution and
// before business logic. Checks run in a fixed short-circuiting order;
// every blocking violation writes one audit event before the error returns.
// It implements tenant.Validator for direct use with tenant.Middleware.
type Enforcer struct {
	mu       sync.RWMutex
	policies map[string]AccessPolicy
	blocked  map[string]struct{}

	defaultPolicy AccessPolicy
	deniedIPs     []string

	allowCrossTenant bool

	limiter ratelimit.Store
	events  audit.Storage
	log     *slog.Logger
}

// EnforcerOption configures an Enforcer.
type EnforcerOption func(*Enforcer)

// WithRateLimitStore sets the sliding-window store backing the two
// rate-limit horizons. Use the Redis store for multi-process deployments.
func WithRateLimitStore(store ratelimit.Store) EnforcerOption {
	return func(e *Enforcer) { e.limiter = store }
}

// WithAuditStorage sets the destination for security audit events.
func WithAuditStorage(storage audit.Storage) EnforcerOption {
	return func(e *Enforcer) { e.events = storage }
}

// WithEnforcerLogger sets the logger for access and violation records.
func WithEnforcerLogger(log *slog.Logger) EnforcerOption {
	return func(e *Enforcer) {
		if log != nil {
			e.log = log
		}
	}
}

// WithDefaultPolicy replaces the policy applied to tenants without one.
func WithDefaultPolicy(policy AccessPolicy) EnforcerOption {
	return func(e *Enforcer) { e.defaultPolicy = policy }
}

// WithAllowCrossTenant globally enables cross-tenant operations.
func WithAllowCrossTenant(allow bool) EnforcerOption {
	return func(e *Enforcer) { e.allowCrossTenant = allow }
}

// WithBlockedTenants seeds the tenant block-list.
func WithBlockedTenants(ids ...string) EnforcerOption {
	return func(e *Enforcer) {
		for _, id := range ids {
			e.blocked[id] = struct{}{}
		}
	}
}

// WithGlobalDeniedIPs seeds the global IP deny-list. A tenant policy's
// allow-list overrides a global deny for that tenant.
func WithGlobalDeniedIPs(ips ...string) EnforcerOption {
	return func(e *Enforcer) { e.deniedIPs = append(e.deniedIPs, ips...) }
}

// NewEnforcer creates an enforcer with an in-memory rate-limit store and a
// bounded in-memory audit store unless overridden.
func NewEnforcer(opts ...EnforcerOption) *Enforcer {
	e := &Enforcer{
		policies:      make(map[string]AccessPolicy),
		blocked:       make(map[string]struct{}),
		defaultPolicy: DefaultPolicy(),
		log:           slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.limiter == nil {
		e.limiter = ratelimit.NewMemoryStore()
	}
	if e.events == nil {
		e.events = audit.NewMemoryStorage(audit.DefaultCapacity)
	}
	return e
}

// NewEnforcerFromConfig creates an enforcer seeded from the config.
// Options are applied after the config and take precedence.
func NewEnforcerFromConfig(cfg Config, opts ...EnforcerOption) *Enforcer {
	base := []EnforcerOption{
		WithDefaultPolicy(cfg.DefaultPolicyFromConfig()),
		WithAllowCrossTenant(cfg.AllowCrossTenant),
		WithBlockedTenants(cfg.BlockedTenants...),
		WithGlobalDeniedIPs(cfg.DeniedIPs...),
		WithAuditStorage(audit.NewMemoryStorage(cfg.AuditCapacity)),
	}
	return NewEnforcer(append(base, opts...)...)
}

// SetPolicy installs or replaces the tenant's policy.
func (e *Enforcer) SetPolicy(tenantID string, policy AccessPolicy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.policies[tenantID] = policy
}

// RemovePolicy reverts the tenant to the default policy.
func (e *Enforcer) RemovePolicy(tenantID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.policies, tenantID)
}

// PolicyFor returns the tenant's policy, or the default when none is set.
func (e *Enforcer) PolicyFor(tenantID string) AccessPolicy {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if policy, ok := e.policies[tenantID]; ok {
		return policy
	}
	return e.defaultPolicy
}

// BlockTenant adds the tenant to the block-list.
func (e *Enforcer) BlockTenant(tenantID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.blocked[tenantID] = struct{}{}
}

// UnblockTenant removes the tenant from the block-list.
func (e *Enforcer) UnblockTenant(tenantID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.blocked, tenantID)
}

func (e *Enforcer) isBlocked(tenantID string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.blocked[tenantID]
	return ok
}

// RecentEvents returns the most recent audit events, newest last.
func (e *Enforcer) RecentEvents(ctx context.Context, n int) ([]audit.Event, error) {
	return e.events.Recent(ctx, n)
}

// ValidateTenantAccess runs the boundary checks for the request's tenant
// context. The check order is fixed and short-circuiting: context presence,
// tenant block-list, IP rules, rate limits over the minute and hour
// horizons, transport requirement. Suspicious-activity heuristics run last
// and are advisory only.
func (e *Enforcer) ValidateTenantAccess(ctx context.Context, r *http.Request) error {
	tc, ok := tenant.FromContext(ctx)
	if !ok {
		return e.violation(ctx, r, nil, KindMissingContext, audit.SeverityHigh,
			"request has no tenant context")
	}

	if e.isBlocked(tc.TenantID) {
		return e.violation(ctx, r, tc, KindTenantBlocked, audit.SeverityHigh,
			"tenant is blocked")
	}

	policy := e.PolicyFor(tc.TenantID)
	ip := clientip.GetIP(r)

	if err := e.checkIP(ctx, r, tc, policy, ip); err != nil {
		return err
	}
	if err := e.checkRateLimits(ctx, r, tc, policy); err != nil {
		return err
	}
	if err := e.checkTransport(ctx, r, tc, policy, ip); err != nil {
		return err
	}

	// Advisory only: detections are audited at low severity, never block.
	e.detectSuspicious(ctx, r, tc, ip)

	e.log.DebugContext(ctx, "tenant access validated",
		slog.String("tenant_id", tc.TenantID),
		slog.String("ip", ip),
		slog.String("path", r.URL.Path),
	)
	return nil
}

// ValidateCrossTenantAccess checks whether the requesting tenant may perform
// the operation against the target tenant. Same-tenant access is always
// allowed; cross-tenant access requires the global allow flag and a
// requester policy that does not deny the operation.
func (e *Enforcer) ValidateCrossTenantAccess(ctx context.Context, requesting, target, operation string) error {
	if requesting == target {
		return nil
	}

	deny := func(msg string) error {
		event := audit.NewEvent(KindCrossTenantDenied, audit.SeverityCritical,
			audit.WithTenant(requesting),
			audit.WithDescription(msg),
			audit.WithDetails(map[string]any{"target_tenant": target, "operation": operation}),
			audit.WithBlocked(true),
		)
		e.record(ctx, event)
		e.log.WarnContext(ctx, "cross-tenant access denied",
			slog.String("tenant_id", requesting),
			slog.String("target_tenant", target),
			slog.String("operation", operation),
		)
		return &Error{Kind: KindCrossTenantDenied, TenantID: requesting, Message: msg}
	}

	if !e.allowCrossTenant {
		return deny(fmt.Sprintf("cross-tenant access to %s is disabled", target))
	}
	if e.PolicyFor(requesting).DeniesOperation(operation) {
		return deny(fmt.Sprintf("operation %q denied by tenant policy", operation))
	}
	return nil
}

func (e *Enforcer) checkIP(ctx context.Context, r *http.Request, tc *tenant.Context, policy AccessPolicy, ip string) error {
	if len(policy.AllowedIPs) > 0 && !policy.allowsIP(ip) {
		return e.violation(ctx, r, tc, KindIPBlocked, audit.SeverityHigh,
			fmt.Sprintf("ip %s is not on the tenant allow-list", ip))
	}
	if policy.deniesIP(ip) {
		return e.violation(ctx, r, tc, KindIPBlocked, audit.SeverityHigh,
			fmt.Sprintf("ip %s is denied by tenant policy", ip))
	}
	// The tenant allow-list overrides a global deny.
	if slices.Contains(e.deniedIPs, ip) && !policy.allowsIP(ip) {
		return e.violation(ctx, r, tc, KindIPBlocked, audit.SeverityHigh,
			fmt.Sprintf("ip %s is globally denied", ip))
	}
	return nil
}

func (e *Enforcer) checkRateLimits(ctx context.Context, r *http.Request, tc *tenant.Context, policy AccessPolicy) error {
	horizons := []struct {
		suffix string
		window time.Duration
		limit  int
	}{
		{"1m", time.Minute, policy.MaxRequestsPerMinute},
		{"1h", time.Hour, policy.MaxRequestsPerHour},
	}

	for _, h := range horizons {
		if h.limit <= 0 {
			continue
		}
		key := "tenant:" + tc.TenantID + ":" + h.suffix
		allowed, count, err := e.limiter.RecordIfAllowed(ctx, key, time.Now(), h.window, h.limit)
		if err != nil {
			// Rate limiting is defense-in-depth, not a ledger: a store
			// outage must not take requests down with it.
			e.log.ErrorContext(ctx, "rate limit store failed",
				slog.String("tenant_id", tc.TenantID),
				slog.String("key", key),
				slog.Any("error", err),
			)
			continue
		}
		if !allowed {
			return e.violation(ctx, r, tc, KindRateLimit, audit.SeverityMedium,
				fmt.Sprintf("rate limit exceeded: %d requests in %s (limit %d)", count, h.suffix, h.limit))
		}
	}
	return nil
}

func (e *Enforcer) checkTransport(ctx context.Context, r *http.Request, tc *tenant.Context, policy AccessPolicy, ip string) error {
	if !policy.RequireSecureTransport {
		return nil
	}
	if isSecure(r) || clientip.IsLocal(ip) {
		return nil
	}
	return e.violation(ctx, r, tc, KindInsecureConnection, audit.SeverityMedium,
		"secure transport required")
}

func isSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// violation records one audit event and returns the typed error.
func (e *Enforcer) violation(ctx context.Context, r *http.Request, tc *tenant.Context, kind string, severity audit.Severity, msg string) error {
	opts := []audit.EventOption{
		audit.WithDescription(msg),
		audit.WithClient(clientip.GetIP(r), r.UserAgent()),
		audit.WithRequest(requestIDFrom(tc), r.Method, r.URL.Path),
		audit.WithBlocked(true),
	}

	tenantID := ""
	if tc != nil {
		tenantID = tc.TenantID
		opts = append(opts, audit.WithTenant(tc.TenantID), audit.WithUser(tc.UserID))
	}

	e.record(ctx, audit.NewEvent(kind, severity, opts...))

	e.log.WarnContext(ctx, "security violation",
		slog.String("violation", kind),
		slog.String("tenant_id", tenantID),
		slog.String("path", r.URL.Path),
		slog.String("description", msg),
	)

	return &Error{Kind: kind, TenantID: tenantID, Message: msg}
}

func (e *Enforcer) record(ctx context.Context, event audit.Event) {
	if err := e.events.Store(ctx, event); err != nil {
		// Audit storage failures never affect the response.
		e.log.ErrorContext(ctx, "audit event store failed", slog.Any("error", err))
	}
}

func requestIDFrom(tc *tenant.Context) string {
	if tc == nil {
		return ""
	}
	return tc.RequestID
}

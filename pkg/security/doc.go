// Package security enforces the tenant boundary between resolution and
// business logic: per-tenant access policies, block-lists, IP rules,
// two-horizon sliding-window rate limits, transport requirements, and
// cross-tenant access validation, with every blocking violation recorded
// as an audit event.
//
// The Enforcer implements tenant.Validator, so it plugs directly into the
// resolution middleware:
//
//	enforcer := security.NewEnforcer(
//		security.WithRateLimitStore(store),
//		security.WithAuditStorage(auditStore),
//	)
//	r.Use(tenant.Middleware(resolver, tenant.WithValidator(enforcer)))
package security

// Package tenant identifies which tenant an inbound request belongs to and
// attaches a verified, read-only tenant context for the lifetime of that
// request.
//
// # Architecture
//
// The package is built around three core pieces:
//
//  1. Strategies — a closed set (host, subdomain, header, path, composite)
//     mapping request metadata to a candidate tenant id
//  2. Resolver — orchestrates strategies, the cache, and the optional
//     Provider, producing a Context or a typed failure
//  3. Middleware — resolves, installs the context, enforces the boundary,
//     and translates failures into structured error responses
//
// # Context propagation
//
// The "current tenant" travels in the request's context.Context. Because each
// in-flight request owns its own context chain, installed tenants are
// isolated across concurrently-executing requests by construction — there is
// no process-wide mutable slot to clear or to leak through. Downstream code
// reads the tenant with FromContext or RequireFromContext without explicit
// parameter threading.
//
// # Usage
//
//	strategy, err := cfg.BuildStrategy()
//	if err != nil {
//		return err
//	}
//	resolver := tenant.NewResolver(strategy,
//		tenant.WithProvider(provider),
//		tenant.WithCache(cfg.CacheSize, cfg.CacheTTL),
//	)
//	router.Use(tenant.Middleware(resolver,
//		tenant.WithValidator(enforcer),
//		tenant.WithAccessLogging(cfg.AccessLogging),
//	))
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		tc, err := tenant.RequireFromContext(r.Context())
//		if err != nil {
//			// defect: route mounted outside the middleware chain
//		}
//		_ = tc.TenantID
//	}
//
// # Error handling
//
// "No match, try the next strategy" is an internal outcome, not an error;
// only genuine failures surface, each with a stable machine-readable code:
//
//   - *NotFoundError: identifier present but unmapped (400)
//   - *ResolutionError: strategy could not attempt resolution (400)
//   - SecurityError: boundary check failed post-identification (403)
//   - ErrNoTenantInContext: required tenant missing — a wiring defect (400)
//
// A configured fallback tenant substitutes only for "no match" outcomes,
// is always logged, and never bypasses a hard failure such as a missing
// required header.
package tenant

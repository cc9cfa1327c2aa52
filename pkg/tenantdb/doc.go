// Package tenantdb yields PostgreSQL sessions pre-scoped to the active
// tenant under a configurable isolation strategy, so business queries can
// never reach another tenant's rows.
//
// # Isolation strategies
//
//   - shared: no scoping, for admin and internal tooling only.
//   - row_level: sets the app.current_tenant connection variable consumed by
//     row-level-security policies, and resets it to empty before the pooled
//     connection is reused, so a connection never carries a stale tenant.
//   - schema: switches search_path to the tenant's schema and restores the
//     default on release.
//   - database: routes to a dedicated per-tenant pool from a lazily
//     populated registry; a tenant without a registered database is a fatal
//     configuration error, never a fallback to shared storage.
//
// # Usage
//
//	manager, err := tenantdb.NewManager(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer manager.Close()
//
//	err = manager.WithTenantSession(r.Context(), func(ctx context.Context, s tenantdb.Session) error {
//		_, err := s.Exec(ctx, "INSERT INTO orders (tenant_id, total) VALUES (current_setting('app.current_tenant'), $1)", total)
//		return err
//	})
//
// Provisioning-time admin operations (EnableRowLevelSecurity,
// CreateTenantSchema, per-tenant migrations) are idempotent and run
// out-of-band, never on the request hot path. ValidateIsolation compares
// visible rows against tenant-owned rows as an operational health check for
// misconfigured isolation.
package tenantdb

package tenantdb

import (
	"context"
	"fmt"
	"log/slog"
)

// Admin operations run out-of-band at provisioning time, never on the
// request hot path. All of them are idempotent so provisioning retries are
// safe.

// rlsStatements builds the idempotent DDL enabling RLS with the tenant
// isolation policy on a table carrying a tenant_id column.
func rlsStatements(table string) []string {
	return []string{
		fmt.Sprintf("ALTER TABLE %s ENABLE ROW LEVEL SECURITY", quoteIdent(table)),
		fmt.Sprintf("DROP POLICY IF EXISTS tenant_isolation ON %s", quoteIdent(table)),
		fmt.Sprintf(
			"CREATE POLICY tenant_isolation ON %s USING (tenant_id = current_setting('%s', true))",
			quoteIdent(table), TenantSetting,
		),
	}
}

// EnableRowLevelSecurity turns on RLS for the table and installs the tenant
// isolation policy bound to the per-connection tenant setting.
func (m *Manager) EnableRowLevelSecurity(ctx context.Context, table string) error {
	if !validIdentifier(table) {
		return fmt.Errorf("%w: table %q", ErrInvalidIdentifier, table)
	}

	for _, stmt := range rlsStatements(table) {
		if _, err := m.admin().Exec(ctx, stmt); err != nil {
			return fmt.Errorf("enable row level security on %s: %w", table, err)
		}
	}

	m.log.InfoContext(ctx, "row level security enabled", slog.String("table", table))
	return nil
}

// CreateTenantSchema creates the tenant's schema for schema isolation.
func (m *Manager) CreateTenantSchema(ctx context.Context, tenantID string) error {
	if !validIdentifier(tenantID) {
		return fmt.Errorf("%w: tenant id %q", ErrInvalidIdentifier, tenantID)
	}

	schema := m.schemaName(tenantID)
	if _, err := m.admin().Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+quoteIdent(schema)); err != nil {
		return fmt.Errorf("create schema %s: %w", schema, err)
	}

	m.log.InfoContext(ctx, "tenant schema created",
		slog.String("tenant_id", tenantID),
		slog.String("schema", schema),
	)
	return nil
}

// DropTenantSchema removes the tenant's schema and everything in it. Used
// by deprovisioning; idempotent like the other admin operations.
func (m *Manager) DropTenantSchema(ctx context.Context, tenantID string) error {
	if !validIdentifier(tenantID) {
		return fmt.Errorf("%w: tenant id %q", ErrInvalidIdentifier, tenantID)
	}

	schema := m.schemaName(tenantID)
	if _, err := m.admin().Exec(ctx, "DROP SCHEMA IF EXISTS "+quoteIdent(schema)+" CASCADE"); err != nil {
		return fmt.Errorf("drop schema %s: %w", schema, err)
	}

	m.log.InfoContext(ctx, "tenant schema dropped",
		slog.String("tenant_id", tenantID),
		slog.String("schema", schema),
	)
	return nil
}

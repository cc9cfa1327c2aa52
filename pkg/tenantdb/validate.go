package tenantdb

import (
	"context"
	"fmt"
)

// IsolationReport is the outcome of an isolation health check on one table.
type IsolationReport struct {
	Table       string
	TenantID    string
	VisibleRows int64
	TenantRows  int64
}

// Isolated reports whether every visible row belongs to the tenant.
func (r IsolationReport) Isolated() bool {
	return r.VisibleRows == r.TenantRows
}

// ValidateIsolation compares the rows visible through a tenant-scoped
// session against the rows actually belonging to that tenant. Any surplus
// means the isolation strategy is misconfigured (an RLS policy missing, a
// wrong search path) and surfaces as ErrIsolationBreach. Operational health
// check, not a per-request guard.
func (m *Manager) ValidateIsolation(ctx context.Context, tenantID, table string) (IsolationReport, error) {
	report := IsolationReport{Table: table, TenantID: tenantID}

	if !validIdentifier(table) {
		return report, fmt.Errorf("%w: table %q", ErrInvalidIdentifier, table)
	}

	err := m.SessionForTenant(ctx, tenantID, func(ctx context.Context, s Session) error {
		if err := s.QueryRow(ctx, "SELECT count(*) FROM "+quoteIdent(table)).Scan(&report.VisibleRows); err != nil {
			return fmt.Errorf("count visible rows in %s: %w", table, err)
		}
		query := "SELECT count(*) FROM " + quoteIdent(table) + " WHERE tenant_id = $1"
		if err := s.QueryRow(ctx, query, tenantID).Scan(&report.TenantRows); err != nil {
			return fmt.Errorf("count tenant rows in %s: %w", table, err)
		}
		return nil
	})
	if err != nil {
		return report, err
	}

	if !report.Isolated() {
		return report, fmt.Errorf("%w: %s shows %d rows, %d belong to tenant %s",
			ErrIsolationBreach, table, report.VisibleRows, report.TenantRows, tenantID)
	}
	return report, nil
}

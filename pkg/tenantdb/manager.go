package tenantdb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/tenantguard/pkg/tenant"
)

// Manager yields storage sessions pre-scoped to the request's tenant under
// the configured isolation strategy. One manager serves the whole process;
// its pool, per-tenant registry, and admin surface are safe for concurrent
// use.
type Manager struct {
	cfg      Config
	pool     *pgxpool.Pool
	registry *registry
	log      *slog.Logger

	// acquire obtains a dedicated connection for scoped sessions. Swappable
	// in tests; the default acquires from the pool.
	acquire func(ctx context.Context) (Session, func(), error)
	// adminSession overrides the admin query surface in tests.
	adminSession Session
}

func (m *Manager) admin() Session {
	if m.adminSession != nil {
		return m.adminSession
	}
	return m.pool
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerLogger sets the logger for scoping and admin operations.
func WithManagerLogger(log *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// NewManager connects the shared pool and prepares the per-tenant registry.
func NewManager(ctx context.Context, cfg Config, opts ...ManagerOption) (*Manager, error) {
	if !cfg.IsolationStrategy.valid() {
		return nil, &ConfigError{Message: fmt.Sprintf("unknown isolation strategy %q", cfg.IsolationStrategy)}
	}

	pool, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		cfg:      cfg,
		pool:     pool,
		registry: newRegistry(cfg),
		log:      slog.Default(),
	}
	m.acquire = m.acquireConn
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Pool exposes the shared, unscoped pool for admin and internal use.
func (m *Manager) Pool() *pgxpool.Pool { return m.pool }

// Isolation returns the active isolation strategy.
func (m *Manager) Isolation() Isolation { return m.cfg.IsolationStrategy }

// RegisterTenantDatabase registers the tenant's dedicated database for
// database-per-tenant isolation. The pool is created lazily on first use.
func (m *Manager) RegisterTenantDatabase(tenantID, connString string) {
	m.registry.register(tenantID, connString)
}

// Close releases the shared pool and every per-tenant pool.
func (m *Manager) Close() {
	m.registry.close()
	m.pool.Close()
}

// WithTenantSession runs fn with a session scoped to the tenant in ctx.
// The scoping side effect is undone on every exit path, fn errors and
// panics included, before the underlying connection returns to its pool.
// A request whose scoping cannot be established never runs fn.
func (m *Manager) WithTenantSession(ctx context.Context, fn SessionFunc) error {
	tc, err := tenant.RequireFromContext(ctx)
	if err != nil {
		return err
	}
	return m.SessionForTenant(ctx, tc.TenantID, fn)
}

// SessionForTenant is WithTenantSession for an explicit tenant id, for use
// outside a request (provisioning jobs, backfills).
func (m *Manager) SessionForTenant(ctx context.Context, tenantID string, fn SessionFunc) error {
	if !validIdentifier(tenantID) {
		return &ConfigError{TenantID: tenantID, Message: "tenant id is not a valid identifier"}
	}

	switch m.cfg.IsolationStrategy {
	case IsolationShared:
		return fn(ctx, m.pool)

	case IsolationRowLevel:
		session, release, err := m.acquire(ctx)
		if err != nil {
			return err
		}
		defer release()
		return runScoped(ctx, session,
			"SELECT set_config($1, $2, false)", []any{TenantSetting, tenantID},
			fmt.Sprintf("SELECT set_config('%s', '', false)", TenantSetting),
			fn,
		)

	case IsolationSchema:
		session, release, err := m.acquire(ctx)
		if err != nil {
			return err
		}
		defer release()
		return runScoped(ctx, session,
			"SET search_path TO "+quoteIdent(m.schemaName(tenantID)), nil,
			"SET search_path TO "+quoteIdent(m.cfg.DefaultSearchPath),
			fn,
		)

	case IsolationDatabase:
		pool, err := m.registry.poolFor(ctx, tenantID)
		if err != nil {
			return err
		}
		return fn(ctx, pool)

	default:
		return &ConfigError{Message: fmt.Sprintf("unknown isolation strategy %q", m.cfg.IsolationStrategy)}
	}
}

func (m *Manager) acquireConn(ctx context.Context) (Session, func(), error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return nil, nil, err
	}
	return conn, conn.Release, nil
}

func (m *Manager) schemaName(tenantID string) string {
	return m.cfg.SchemaPrefix + tenantID
}

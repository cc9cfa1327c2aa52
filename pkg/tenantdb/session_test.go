package tenantdb

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantguard/pkg/tenant"
)

// fakeSession records executed statements and can fail selected ones.
type fakeSession struct {
	mu    sync.Mutex
	log   []string
	args  [][]any
	fail  map[string]error // substring of sql -> error
	rows  []int64          // successive QueryRow scan results
	rowIx int
}

func (f *fakeSession) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for substr, err := range f.fail {
		if strings.Contains(sql, substr) {
			return pgconn.CommandTag{}, err
		}
	}
	f.log = append(f.log, sql)
	f.args = append(f.args, args)
	return pgconn.CommandTag{}, nil
}

func (f *fakeSession) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeSession) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = append(f.log, sql)
	var val int64
	if f.rowIx < len(f.rows) {
		val = f.rows[f.rowIx]
		f.rowIx++
	}
	return fakeRow{val: val}
}

func (f *fakeSession) statements() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.log...)
}

type fakeRow struct{ val int64 }

func (r fakeRow) Scan(dest ...any) error {
	if len(dest) == 1 {
		if p, ok := dest[0].(*int64); ok {
			*p = r.val
		}
	}
	return nil
}

// testManager builds a manager around a fake session without a live pool.
func testManager(cfg Config, session *fakeSession) *Manager {
	m := &Manager{
		cfg:          cfg,
		registry:     newRegistry(cfg),
		log:          slog.New(slog.DiscardHandler),
		adminSession: session,
	}
	m.acquire = func(context.Context) (Session, func(), error) {
		return session, func() {
			session.mu.Lock()
			session.log = append(session.log, "RELEASE")
			session.mu.Unlock()
		}, nil
	}
	return m
}

func rowLevelConfig() Config {
	return Config{
		IsolationStrategy: IsolationRowLevel,
		SchemaPrefix:      "tenant_",
		DefaultSearchPath: "public",
	}
}

func TestSessionForTenant_RowLevel(t *testing.T) {
	t.Parallel()

	t.Run("sets and resets tenant variable", func(t *testing.T) {
		t.Parallel()

		session := &fakeSession{}
		m := testManager(rowLevelConfig(), session)

		var sawScoped bool
		err := m.SessionForTenant(context.Background(), "tenant-42", func(ctx context.Context, s Session) error {
			sawScoped = true
			_, err := s.Exec(ctx, "SELECT 1")
			return err
		})
		require.NoError(t, err)
		require.True(t, sawScoped)

		stmts := session.statements()
		require.Equal(t, []string{
			"SELECT set_config($1, $2, false)",
			"SELECT 1",
			"SELECT set_config('app.current_tenant', '', false)",
			"RELEASE",
		}, stmts)
		assert.Equal(t, []any{TenantSetting, "tenant-42"}, session.args[0])
	})

	t.Run("resets on fn error", func(t *testing.T) {
		t.Parallel()

		session := &fakeSession{}
		m := testManager(rowLevelConfig(), session)

		wantErr := errors.New("query failed")
		err := m.SessionForTenant(context.Background(), "tenant-42", func(context.Context, Session) error {
			return wantErr
		})
		require.ErrorIs(t, err, wantErr)

		stmts := session.statements()
		assert.Contains(t, stmts, "SELECT set_config('app.current_tenant', '', false)")
		assert.Equal(t, "RELEASE", stmts[len(stmts)-1], "reset happens before the connection is released")
	})

	t.Run("resets on fn panic", func(t *testing.T) {
		t.Parallel()

		session := &fakeSession{}
		m := testManager(rowLevelConfig(), session)

		assert.Panics(t, func() {
			_ = m.SessionForTenant(context.Background(), "tenant-42", func(context.Context, Session) error {
				panic("handler exploded")
			})
		})

		assert.Contains(t, session.statements(), "SELECT set_config('app.current_tenant', '', false)")
	})

	t.Run("resets on cancelled context", func(t *testing.T) {
		t.Parallel()

		session := &fakeSession{}
		m := testManager(rowLevelConfig(), session)

		ctx, cancel := context.WithCancel(context.Background())
		err := m.SessionForTenant(ctx, "tenant-42", func(ctx context.Context, _ Session) error {
			cancel()
			return ctx.Err()
		})
		require.ErrorIs(t, err, context.Canceled)

		assert.Contains(t, session.statements(), "SELECT set_config('app.current_tenant', '', false)")
	})

	t.Run("scoping failure prevents fn", func(t *testing.T) {
		t.Parallel()

		session := &fakeSession{fail: map[string]error{"set_config($1": errors.New("boom")}}
		m := testManager(rowLevelConfig(), session)

		var invoked bool
		err := m.SessionForTenant(context.Background(), "tenant-42", func(context.Context, Session) error {
			invoked = true
			return nil
		})
		require.ErrorIs(t, err, ErrScopingFailed)
		assert.False(t, invoked, "a session that cannot be scoped must never run queries")
	})

	t.Run("reset failure surfaces", func(t *testing.T) {
		t.Parallel()

		session := &fakeSession{fail: map[string]error{"set_config('app.current_tenant', ''": errors.New("conn gone")}}
		m := testManager(rowLevelConfig(), session)

		err := m.SessionForTenant(context.Background(), "tenant-42", func(context.Context, Session) error {
			return nil
		})
		assert.ErrorIs(t, err, ErrScopeResetFailed)
	})
}

func TestSessionForTenant_Schema(t *testing.T) {
	t.Parallel()

	cfg := rowLevelConfig()
	cfg.IsolationStrategy = IsolationSchema
	session := &fakeSession{}
	m := testManager(cfg, session)

	err := m.SessionForTenant(context.Background(), "acme", func(ctx context.Context, s Session) error {
		_, err := s.Exec(ctx, "SELECT 1")
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		`SET search_path TO "tenant_acme"`,
		"SELECT 1",
		`SET search_path TO "public"`,
		"RELEASE",
	}, session.statements())
}

func TestSessionForTenant_Database(t *testing.T) {
	t.Parallel()

	cfg := rowLevelConfig()
	cfg.IsolationStrategy = IsolationDatabase
	m := testManager(cfg, &fakeSession{})

	err := m.SessionForTenant(context.Background(), "tenant-42", func(context.Context, Session) error {
		t.Fatal("must not run without a registered database")
		return nil
	})

	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "tenant-42", ce.TenantID)
}

func TestSessionForTenant_InvalidTenantID(t *testing.T) {
	t.Parallel()

	m := testManager(rowLevelConfig(), &fakeSession{})

	var ce *ConfigError
	err := m.SessionForTenant(context.Background(), "tenant'; DROP TABLE orders;--", func(context.Context, Session) error {
		return nil
	})
	assert.ErrorAs(t, err, &ce)
}

func TestWithTenantSession(t *testing.T) {
	t.Parallel()

	t.Run("requires tenant context", func(t *testing.T) {
		t.Parallel()

		m := testManager(rowLevelConfig(), &fakeSession{})
		err := m.WithTenantSession(context.Background(), func(context.Context, Session) error {
			return nil
		})
		assert.ErrorIs(t, err, tenant.ErrNoTenantInContext)
	})

	t.Run("scopes to the context tenant", func(t *testing.T) {
		t.Parallel()

		session := &fakeSession{}
		m := testManager(rowLevelConfig(), session)

		ctx := tenant.WithContext(context.Background(), &tenant.Context{TenantID: "tenant-42"})
		err := m.WithTenantSession(ctx, func(context.Context, Session) error { return nil })
		require.NoError(t, err)
		assert.Equal(t, []any{TenantSetting, "tenant-42"}, session.args[0])
	})
}

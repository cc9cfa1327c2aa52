package tenantdb

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newIdlePool builds a real pool that never dials: MinConns is zero and no
// query runs, so construction succeeds without a server.
func newIdlePool(t *testing.T, connString string) *pgxpool.Pool {
	t.Helper()
	cfg, err := pgxpool.ParseConfig(connString)
	require.NoError(t, err)
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestRegistry_MissingRegistrationIsFatal(t *testing.T) {
	t.Parallel()

	r := newRegistry(Config{})

	_, err := r.poolFor(context.Background(), "ghost")

	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "ghost", ce.TenantID)
}

func TestRegistry_LazySingleCreation(t *testing.T) {
	t.Parallel()

	r := newRegistry(Config{})
	r.register("tenant-a", "postgres://app@db-a.internal:5432/tenant_a")

	var creations atomic.Int64
	r.newPool = func(_ context.Context, connString string) (*pgxpool.Pool, error) {
		creations.Add(1)
		return newIdlePool(t, connString), nil
	}

	const callers = 16
	pools := make([]*pgxpool.Pool, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool, err := r.poolFor(context.Background(), "tenant-a")
			assert.NoError(t, err)
			pools[i] = pool
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), creations.Load(), "concurrent first accesses must not race to create duplicates")
	for _, pool := range pools {
		assert.Same(t, pools[0], pool)
	}
}

func TestRegistry_PerTenantPools(t *testing.T) {
	t.Parallel()

	r := newRegistry(Config{})
	r.register("tenant-a", "postgres://app@db-a.internal:5432/tenant_a")
	r.register("tenant-b", "postgres://app@db-b.internal:5432/tenant_b")

	r.newPool = func(_ context.Context, connString string) (*pgxpool.Pool, error) {
		return newIdlePool(t, connString), nil
	}

	poolA, err := r.poolFor(context.Background(), "tenant-a")
	require.NoError(t, err)
	poolB, err := r.poolFor(context.Background(), "tenant-b")
	require.NoError(t, err)

	assert.NotSame(t, poolA, poolB)

	// Second lookup hits the cache.
	again, err := r.poolFor(context.Background(), "tenant-a")
	require.NoError(t, err)
	assert.Same(t, poolA, again)
}

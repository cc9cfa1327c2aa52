package tenantdb

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"
)

// registry lazily creates and caches one pool per registered tenant for
// database-per-tenant isolation. Concurrent first accesses for the same
// tenant collapse into a single pool creation.
type registry struct {
	cfg Config

	mu    sync.RWMutex
	dsns  map[string]string
	pools map[string]*pgxpool.Pool

	group singleflight.Group

	// newPool is swappable in tests to count creations.
	newPool func(ctx context.Context, connString string) (*pgxpool.Pool, error)
}

func newRegistry(cfg Config) *registry {
	r := &registry{
		cfg:   cfg,
		dsns:  make(map[string]string),
		pools: make(map[string]*pgxpool.Pool),
	}
	r.newPool = func(ctx context.Context, connString string) (*pgxpool.Pool, error) {
		poolConfig, err := poolConfigFor(cfg, connString)
		if err != nil {
			return nil, err
		}
		return connectWithRetry(ctx, poolConfig, cfg)
	}
	return r
}

func (r *registry) register(tenantID, connString string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dsns[tenantID] = connString
}

// poolFor returns the tenant's pool, creating it on first use. A tenant
// without a registered database is a fatal configuration error, never a
// silent fallback to shared storage.
func (r *registry) poolFor(ctx context.Context, tenantID string) (*pgxpool.Pool, error) {
	r.mu.RLock()
	pool, ok := r.pools[tenantID]
	dsn, registered := r.dsns[tenantID]
	r.mu.RUnlock()

	if ok {
		return pool, nil
	}
	if !registered {
		return nil, &ConfigError{TenantID: tenantID, Message: "no database registered for tenant"}
	}

	created, err, _ := r.group.Do(tenantID, func() (any, error) {
		// Double-check under the group: a racing caller may have stored the
		// pool between our read and this call.
		r.mu.RLock()
		existing, ok := r.pools[tenantID]
		r.mu.RUnlock()
		if ok {
			return existing, nil
		}

		pool, err := r.newPool(ctx, dsn)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.pools[tenantID] = pool
		r.mu.Unlock()
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return created.(*pgxpool.Pool), nil
}

func (r *registry) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, pool := range r.pools {
		pool.Close()
		delete(r.pools, id)
	}
}

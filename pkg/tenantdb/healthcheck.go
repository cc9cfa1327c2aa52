package tenantdb

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Healthcheck returns a closure validating connectivity on the given pool,
// shaped for health endpoints expecting func(context.Context) error.
func Healthcheck(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Healthcheck pings the shared pool and every per-tenant pool created so far.
func (m *Manager) Healthcheck() func(context.Context) error {
	return func(ctx context.Context) error {
		if err := m.pool.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}

		m.registry.mu.RLock()
		pools := make([]*pgxpool.Pool, 0, len(m.registry.pools))
		for _, pool := range m.registry.pools {
			pools = append(pools, pool)
		}
		m.registry.mu.RUnlock()

		for _, pool := range pools {
			if err := pool.Ping(ctx); err != nil {
				return errors.Join(ErrHealthcheckFailed, err)
			}
		}
		return nil
	}
}

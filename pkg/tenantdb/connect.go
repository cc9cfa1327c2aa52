package tenantdb

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect establishes the PostgreSQL pool with retry logic so startup
// survives transient network failures. Backoff grows linearly per attempt to
// avoid a thundering herd when many workers restart together.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolConfig, err := poolConfigFor(cfg, cfg.ConnectionString)
	if err != nil {
		return nil, err
	}
	return connectWithRetry(ctx, poolConfig, cfg)
}

func poolConfigFor(cfg Config, connString string) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseDBConfig, err)
	}
	poolConfig.MaxConns = cfg.MaxOpenConns
	poolConfig.MinConns = cfg.MaxIdleConns
	poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	return poolConfig, nil
}

func connectWithRetry(ctx context.Context, poolConfig *pgxpool.Config, cfg Config) (*pgxpool.Pool, error) {
	attempts := max(cfg.RetryAttempts, 1)

	for i := range attempts {
		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			// Ping catches authentication and permission problems that pool
			// construction alone does not surface.
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrFailedToOpenDBConnection, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}

	return nil, ErrFailedToOpenDBConnection
}

package tenantdb

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// logger is the interface migrations need for routing goose output through
// structured application logging. Satisfied by *slog.Logger.
type logger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// Migrate applies schema migrations on the pool using goose. The pgx pool is
// bridged to database/sql since goose does not speak pgx natively.
func Migrate(ctx context.Context, pool *pgxpool.Pool, cfg Config, log logger) error {
	if cfg.MigrationsPath == "" {
		return errors.Join(ErrFailedToApplyMigrations, ErrMigrationPathNotProvided)
	}
	if _, err := os.Stat(cfg.MigrationsPath); err != nil {
		if os.IsNotExist(err) {
			return errors.Join(ErrMigrationsDirNotFound, err)
		}
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer func() {
		if err := db.Close(); err != nil {
			log.ErrorContext(ctx, "failed to close migration db handle", "error", err)
		}
	}()

	goose.SetLogger(gooseAdapter{log: log})
	goose.SetTableName(cfg.MigrationsTable)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	if err := goose.UpContext(ctx, db, cfg.MigrationsPath); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	return nil
}

// MigrateTenantSchema applies the migrations inside the tenant's schema for
// schema-per-tenant isolation, using a short-lived pool whose search_path is
// pinned to the schema. The schema must already exist.
func (m *Manager) MigrateTenantSchema(ctx context.Context, tenantID string) error {
	if !validIdentifier(tenantID) {
		return fmt.Errorf("%w: tenant id %q", ErrInvalidIdentifier, tenantID)
	}

	poolConfig, err := poolConfigFor(m.cfg, m.cfg.ConnectionString)
	if err != nil {
		return err
	}
	poolConfig.ConnConfig.RuntimeParams["search_path"] = m.schemaName(tenantID)

	pool, err := connectWithRetry(ctx, poolConfig, m.cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	return Migrate(ctx, pool, m.cfg, m.log)
}

// MigrateTenantDatabase applies the migrations on the tenant's dedicated
// database for database-per-tenant isolation.
func (m *Manager) MigrateTenantDatabase(ctx context.Context, tenantID string) error {
	pool, err := m.registry.poolFor(ctx, tenantID)
	if err != nil {
		return err
	}
	return Migrate(ctx, pool, m.cfg, m.log)
}

// gooseAdapter bridges goose's Printf-style logging to structured logging.
type gooseAdapter struct {
	log logger
}

func (a gooseAdapter) Fatalf(format string, v ...any) {
	a.log.ErrorContext(context.Background(), fmt.Sprintf(format, v...))
}

func (a gooseAdapter) Printf(format string, v ...any) {
	a.log.InfoContext(context.Background(), fmt.Sprintf(format, v...))
}

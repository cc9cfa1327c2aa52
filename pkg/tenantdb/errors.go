package tenantdb

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrFailedToOpenDBConnection = errors.New("failed to open db connection")
	ErrFailedToParseDBConfig    = errors.New("failed to parse db config")
	ErrHealthcheckFailed        = errors.New("healthcheck failed, connection is not available")
	ErrFailedToApplyMigrations  = errors.New("failed to apply migrations")
	ErrMigrationsDirNotFound    = errors.New("migrations directory not found")
	ErrMigrationPathNotProvided = errors.New("migration path not provided")

	// ErrScopingFailed means the tenant scoping could not be applied; the
	// session never ran a query, scoped or otherwise.
	ErrScopingFailed = errors.New("failed to apply tenant scoping to session")
	// ErrScopeResetFailed means the scoping could not be undone on release.
	ErrScopeResetFailed = errors.New("failed to reset tenant scoping on session release")

	ErrInvalidIdentifier = errors.New("invalid sql identifier")
	ErrIsolationBreach   = errors.New("table visible beyond the current tenant")
)

// ConfigError is a fatal configuration problem, such as a tenant routed to
// database-per-tenant isolation without a registered database. It is never
// recovered from by falling back to shared storage.
type ConfigError struct {
	TenantID string
	Message  string
}

func (e *ConfigError) Error() string {
	if e.TenantID == "" {
		return "tenantdb configuration error: " + e.Message
	}
	return fmt.Sprintf("tenantdb configuration error for tenant %s: %s", e.TenantID, e.Message)
}

// IsNotFoundError detects pgx.ErrNoRows for consistent "not found" handling.
func IsNotFoundError(err error) bool {
	return err != nil && errors.Is(err, pgx.ErrNoRows)
}

// IsDuplicateKeyError detects unique constraint violations (SQLSTATE 23505).
func IsDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsForeignKeyViolationError detects referential integrity violations (SQLSTATE 23503).
func IsForeignKeyViolationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

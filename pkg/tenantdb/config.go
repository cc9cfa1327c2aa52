package tenantdb

import "time"

// Isolation selects how tenant data is separated in storage.
type Isolation string

const (
	// IsolationShared applies no scoping. Admin and internal tooling only.
	IsolationShared Isolation = "shared"
	// IsolationRowLevel scopes queries through a per-connection setting
	// consumed by row-level-security policies.
	IsolationRowLevel Isolation = "row_level"
	// IsolationSchema switches the search path to the tenant's schema.
	IsolationSchema Isolation = "schema"
	// IsolationDatabase routes to a dedicated per-tenant connection pool.
	IsolationDatabase Isolation = "database"
)

func (i Isolation) valid() bool {
	switch i {
	case IsolationShared, IsolationRowLevel, IsolationSchema, IsolationDatabase:
		return true
	}
	return false
}

// TenantSetting is the per-connection variable consumed by RLS policies.
const TenantSetting = "app.current_tenant"

type Config struct {
	ConnectionString  string        `env:"TENANTDB_CONN_URL,required"`
	MaxOpenConns      int32         `env:"TENANTDB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns      int32         `env:"TENANTDB_MAX_IDLE_CONNS" envDefault:"5"`
	HealthCheckPeriod time.Duration `env:"TENANTDB_HEALTHCHECK_PERIOD" envDefault:"1m"`
	MaxConnIdleTime   time.Duration `env:"TENANTDB_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	MaxConnLifetime   time.Duration `env:"TENANTDB_MAX_CONN_LIFETIME" envDefault:"30m"`

	RetryAttempts int           `env:"TENANTDB_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"TENANTDB_RETRY_INTERVAL" envDefault:"5s"`

	// IsolationStrategy selects shared, row_level, schema, or database.
	IsolationStrategy Isolation `env:"TENANTDB_ISOLATION" envDefault:"row_level"`

	// SchemaPrefix prefixes per-tenant schema names under schema isolation.
	SchemaPrefix string `env:"TENANTDB_SCHEMA_PREFIX" envDefault:"tenant_"`
	// DefaultSearchPath is restored when a schema-scoped session is released.
	DefaultSearchPath string `env:"TENANTDB_DEFAULT_SEARCH_PATH" envDefault:"public"`

	MigrationsPath  string `env:"TENANTDB_MIGRATIONS_PATH" envDefault:"migrations"`
	MigrationsTable string `env:"TENANTDB_MIGRATIONS_TABLE" envDefault:"schema_migrations"`
}

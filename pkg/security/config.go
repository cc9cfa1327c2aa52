package security

import "time"

// Config is the startup-time security configuration, immutable thereafter.
type Config struct {
	// AllowCrossTenant globally enables cross-tenant operations; individual
	// tenant policies may still deny specific operations.
	AllowCrossTenant bool `env:"SECURITY_ALLOW_CROSS_TENANT" envDefault:"false"`

	// Default policy thresholds, applied to tenants without an explicit policy.
	MaxRequestsPerMinute   int           `env:"SECURITY_MAX_REQUESTS_PER_MINUTE" envDefault:"1000"`
	MaxRequestsPerHour     int           `env:"SECURITY_MAX_REQUESTS_PER_HOUR" envDefault:"10000"`
	RequireSecureTransport bool          `env:"SECURITY_REQUIRE_SECURE_TRANSPORT" envDefault:"true"`
	MaxSessionDuration     time.Duration `env:"SECURITY_MAX_SESSION_DURATION" envDefault:"24h"`

	// BlockedTenants and DeniedIPs seed the global block-lists.
	BlockedTenants []string `env:"SECURITY_BLOCKED_TENANTS" envSeparator:","`
	DeniedIPs      []string `env:"SECURITY_DENIED_IPS" envSeparator:","`

	// AuditCapacity bounds the in-memory audit window.
	AuditCapacity int `env:"SECURITY_AUDIT_CAPACITY" envDefault:"10000"`
}

// DefaultPolicyFromConfig derives the default AccessPolicy from the config.
func (c Config) DefaultPolicyFromConfig() AccessPolicy {
	return AccessPolicy{
		MaxRequestsPerMinute:   c.MaxRequestsPerMinute,
		MaxRequestsPerHour:     c.MaxRequestsPerHour,
		RequireSecureTransport: c.RequireSecureTransport,
		MaxSessionDuration:     c.MaxSessionDuration,
	}
}

package tenant

import (
	"fmt"
	"time"

	"github.com/dmitrymomot/tenantguard/pkg/config"
)

// Config is the startup-time resolution configuration, immutable thereafter.
type Config struct {
	Strategy string `env:"TENANT_RESOLUTION_STRATEGY" envDefault:"composite"` // host, subdomain, header, path, composite

	IDHeader      string `env:"TENANT_ID_HEADER" envDefault:"X-Tenant-ID"`
	DomainHeader  string `env:"TENANT_DOMAIN_HEADER" envDefault:"X-Tenant-Domain"`
	RequireHeader bool   `env:"TENANT_REQUIRE_HEADER" envDefault:"false"`

	// HostMapping maps full hostnames to tenant ids. Populated from the env
	// ("host1:tenant1,host2:tenant2") or merged from HostMappingFile.
	HostMapping     map[string]string `env:"TENANT_HOST_MAPPING" envSeparator:"," envKeyValSeparator:":"`
	HostMappingFile string            `env:"TENANT_HOST_MAPPING_FILE"`
	HostPattern     string            `env:"TENANT_HOST_PATTERN"` // e.g. "{tenant}.platform.example"

	SubdomainPosition int    `env:"TENANT_SUBDOMAIN_POSITION" envDefault:"0"`
	BaseDomain        string `env:"TENANT_BASE_DOMAIN"`

	PathPosition int    `env:"TENANT_PATH_POSITION" envDefault:"0"`
	PathPrefix   string `env:"TENANT_PATH_PREFIX"`

	FallbackTenantID string `env:"TENANT_FALLBACK_ID"`

	CacheSize int           `env:"TENANT_CACHE_SIZE" envDefault:"1000"`
	CacheTTL  time.Duration `env:"TENANT_CACHE_TTL" envDefault:"5m"`

	AccessLogging bool `env:"TENANT_ACCESS_LOGGING" envDefault:"false"`
}

// LoadHostMapping merges the mapping file, if configured, into HostMapping.
// Entries from the environment take precedence over file entries.
func (c *Config) LoadHostMapping() error {
	if c.HostMappingFile == "" {
		return nil
	}

	var fromFile map[string]string
	if err := config.LoadYAMLFile(c.HostMappingFile, &fromFile); err != nil {
		return err
	}

	merged := make(map[string]string, len(fromFile)+len(c.HostMapping))
	for host, id := range fromFile {
		merged[host] = id
	}
	for host, id := range c.HostMapping {
		merged[host] = id
	}
	c.HostMapping = merged
	return nil
}

// BuildStrategy constructs the configured resolution strategy.
// The composite strategy tries header, host, subdomain, then path, in that
// fixed order.
func (c Config) BuildStrategy() (Strategy, error) {
	switch c.Strategy {
	case "host":
		return NewHostStrategy(c.HostMapping, c.HostPattern)
	case "subdomain":
		return NewSubdomainStrategy(c.SubdomainPosition, c.BaseDomain), nil
	case "header":
		return NewHeaderStrategy(c.IDHeader, c.DomainHeader, c.HostMapping, c.RequireHeader), nil
	case "path":
		return NewPathStrategy(c.PathPosition, c.PathPrefix), nil
	case "composite":
		children := []Strategy{
			NewHeaderStrategy(c.IDHeader, c.DomainHeader, c.HostMapping, c.RequireHeader),
		}
		if len(c.HostMapping) > 0 || c.HostPattern != "" {
			host, err := NewHostStrategy(c.HostMapping, c.HostPattern)
			if err != nil {
				return Strategy{}, err
			}
			children = append(children, host)
		}
		children = append(children,
			NewSubdomainStrategy(c.SubdomainPosition, c.BaseDomain),
			NewPathStrategy(c.PathPosition, c.PathPrefix),
		)
		return NewCompositeStrategy(children...), nil
	default:
		return Strategy{}, fmt.Errorf("unknown resolution strategy %q", c.Strategy)
	}
}

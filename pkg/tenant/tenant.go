package tenant

import (
	"context"
)

// Method identifies how a tenant was resolved from request metadata.
type Method string

const (
	MethodHostMapping  Method = "host_mapping"
	MethodHostPattern  Method = "host_pattern"
	MethodSubdomain    Method = "subdomain"
	MethodHeader       Method = "header"
	MethodDomainHeader Method = "domain_header"
	MethodPath         Method = "path"
	MethodFallback     Method = "fallback"
)

// Tenant carries the minimal tenant record loaded from a data source,
// used for request-scoped operations and display.
type Tenant struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Active        bool              `json:"active"`
	SecurityLevel string            `json:"security_level,omitempty"`
	Permissions   []string          `json:"permissions,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Provider loads tenant information from a data source.
// Implementations should handle various identifier formats based on
// application needs and return ErrTenantNotFound when no tenant matches.
type Provider interface {
	GetByIdentifier(ctx context.Context, identifier string) (*Tenant, error)
}

// Context is the verified identity attached to one in-flight request.
// It is read-only after construction: the resolver builds it, the middleware
// installs it, and downstream code only reads it. Never mutate an installed
// Context — two requests may hold references to the same cached data.
type Context struct {
	TenantID      string            `json:"tenant_id"`
	Name          string            `json:"name,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Method        Method            `json:"resolution_method"`
	ResolvedFrom  string            `json:"resolved_from"`
	RequestID     string            `json:"request_id,omitempty"`
	UserID        string            `json:"user_id,omitempty"`
	SecurityLevel string            `json:"security_level,omitempty"`
	Permissions   []string          `json:"permissions,omitempty"`
}

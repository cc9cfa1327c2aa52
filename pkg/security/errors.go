package security

import "fmt"

// Violation kinds carried by Error, stable for logging and response details.
const (
	KindMissingContext     = "missing_context"
	KindTenantBlocked      = "tenant_blocked"
	KindIPBlocked          = "ip_blocked"
	KindRateLimit          = "rate_limit"
	KindInsecureConnection = "insecure_connection"
	KindCrossTenantDenied  = "cross_tenant_denied"
)

// Error is a security boundary violation. It satisfies tenant.SecurityError
// so the middleware maps it to a 403 with the violation kind in the details.
type Error struct {
	Message  string
	TenantID string
	Kind     string
}

func (e *Error) Error() string {
	if e.TenantID == "" {
		return fmt.Sprintf("security violation (%s): %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("security violation (%s) for tenant %s: %s", e.Kind, e.TenantID, e.Message)
}

// SecurityViolation returns the violation kind.
func (e *Error) SecurityViolation() string { return e.Kind }

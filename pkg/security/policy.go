package security

import (
	"slices"
	"time"
)

// AccessPolicy is the per-tenant security policy. The zero value denies
// nothing; use DefaultPolicy for sensible production defaults. Policies are
// replaced whole, never mutated in place, so readers can hold a copy safely.
type AccessPolicy struct {
	// AllowedOperations, when non-empty, is an allow-list; DeniedOperations
	// always wins over it. "*" in either list matches every operation.
	AllowedOperations []string
	DeniedOperations  []string

	// Rate-limit thresholds over the two enforcement horizons. Zero disables
	// the corresponding horizon.
	MaxRequestsPerMinute int
	MaxRequestsPerHour   int

	// AllowedIPs, when non-empty, restricts the tenant to those client IPs.
	// DeniedIPs blocks specific IPs; an entry in AllowedIPs overrides a
	// global deny but not a tenant-level deny.
	AllowedIPs []string
	DeniedIPs  []string

	RequireSecureTransport bool
	MaxSessionDuration     time.Duration
}

// DefaultPolicy applies to tenants without an explicit policy.
func DefaultPolicy() AccessPolicy {
	return AccessPolicy{
		MaxRequestsPerMinute:   1000,
		MaxRequestsPerHour:     10000,
		RequireSecureTransport: true,
		MaxSessionDuration:     24 * time.Hour,
	}
}

// DeniesOperation reports whether the policy explicitly denies the operation.
func (p AccessPolicy) DeniesOperation(op string) bool {
	return slices.Contains(p.DeniedOperations, "*") || slices.Contains(p.DeniedOperations, op)
}

// AllowsOperation reports whether the policy permits the operation:
// denied entries win, then the allow-list restricts when present.
func (p AccessPolicy) AllowsOperation(op string) bool {
	if p.DeniesOperation(op) {
		return false
	}
	if len(p.AllowedOperations) == 0 {
		return true
	}
	return slices.Contains(p.AllowedOperations, "*") || slices.Contains(p.AllowedOperations, op)
}

func (p AccessPolicy) allowsIP(ip string) bool {
	return slices.Contains(p.AllowedIPs, ip)
}

func (p AccessPolicy) deniesIP(ip string) bool {
	return slices.Contains(p.DeniedIPs, ip)
}

package security

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/tenantguard/pkg/audit"
	"github.com/dmitrymomot/tenantguard/pkg/tenant"
)

// Per-IP frequency threshold for the advisory heuristic; deliberately far
// above normal interactive traffic so only scripted bursts trip it.
const (
	suspiciousIPWindow = 10 * time.Second
	suspiciousIPLimit  = 100
)

// Substrings that have no business appearing in legitimate request paths.
var suspiciousPathMarkers = []string{
	"../",
	"..\\",
	"%2e%2e",
	"/etc/passwd",
	"<script",
}

// detectSuspicious applies lightweight heuristics: minimal client
// identifiers, traversal markers in the path, and abnormal per-IP request
// frequency. Detections are audited at low severity and never block.
func (e *Enforcer) detectSuspicious(ctx context.Context, r *http.Request, tc *tenant.Context, ip string) {
	var reasons []string

	if strings.TrimSpace(r.UserAgent()) == "" {
		reasons = append(reasons, "missing user agent")
	}

	lowerPath := strings.ToLower(r.URL.Path)
	for _, marker := range suspiciousPathMarkers {
		if strings.Contains(lowerPath, marker) {
			reasons = append(reasons, "path contains "+marker)
			break
		}
	}

	if ip != "" {
		allowed, _, err := e.limiter.RecordIfAllowed(ctx, "ip:"+ip+":freq", time.Now(), suspiciousIPWindow, suspiciousIPLimit)
		if err == nil && !allowed {
			reasons = append(reasons, "abnormal per-ip request frequency")
		}
	}

	if len(reasons) == 0 {
		return
	}

	event := audit.NewEvent("suspicious_activity", audit.SeverityLow,
		audit.WithTenant(tc.TenantID),
		audit.WithClient(ip, r.UserAgent()),
		audit.WithRequest(tc.RequestID, r.Method, r.URL.Path),
		audit.WithDescription(strings.Join(reasons, "; ")),
		audit.WithBlocked(false),
	)
	e.record(ctx, event)

	e.log.InfoContext(ctx, "suspicious activity detected",
		slog.String("tenant_id", tc.TenantID),
		slog.String("ip", ip),
		slog.String("reasons", strings.Join(reasons, "; ")),
	)
}

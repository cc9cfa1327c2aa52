package tenant

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/tenantguard/pkg/requestid"
)

// Response headers set when access logging is enabled.
const (
	HeaderTenantID   = "X-Tenant-ID"
	HeaderResolution = "X-Tenant-Resolution"
)

var defaultSkipPaths = []string{
	"/health",
	"/healthz",
	"/livez",
	"/readyz",
	"/metrics",
	"/static/",
	"/favicon.ico",
}

// Middleware creates HTTP middleware that resolves the tenant, installs the
// request-scoped tenant context, optionally enforces the security boundary,
// and invokes the handler. Resolution or boundary failures yield a structured
// error response without invoking the handler or installing a partial
// context; the context dies with the request on every path.
func Middleware(resolver *Resolver, opts ...Option) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		skipPaths:    defaultSkipPaths,
		errorHandler: writeError,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if shouldSkip(r, cfg.skipPaths) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()

			tc, err := resolver.Resolve(r)
			if err != nil {
				elapsed := time.Since(start)
				_, code, _ := errorStatus(err)
				cfg.stats.record(elapsed, true)
				cfg.metrics.observeError(code, elapsed)
				cfg.logger.WarnContext(r.Context(), "tenant resolution failed",
					slog.String("error_code", code),
					slog.String("host", r.Host),
					slog.String("path", r.URL.Path),
					slog.Any("error", err),
				)
				cfg.errorHandler(w, r, err)
				return
			}

			tc.RequestID = requestid.FromContext(r.Context())
			if cfg.userIDFn != nil {
				tc.UserID = cfg.userIDFn(r)
			}

			ctx := WithContext(r.Context(), tc)

			if cfg.validator != nil {
				if err := cfg.validator.ValidateTenantAccess(ctx, r); err != nil {
					elapsed := time.Since(start)
					_, code, _ := errorStatus(err)
					cfg.stats.record(elapsed, true)
					cfg.metrics.observeError(code, elapsed)
					cfg.errorHandler(w, r, err)
					return
				}
			}

			elapsed := time.Since(start)
			cfg.stats.record(elapsed, false)
			cfg.metrics.observeSuccess(tc.Method, elapsed)

			if cfg.accessLogging {
				w.Header().Set(HeaderTenantID, tc.TenantID)
				w.Header().Set(HeaderResolution, string(tc.Method))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireTenant ensures a tenant context is present, for routes mounted
// outside the resolving middleware chain.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = writeError
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				errorHandler(w, r, ErrNoTenantInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// shouldSkip bypasses resolution for the skip-path allow-list and for
// CORS preflight requests.
func shouldSkip(r *http.Request, skipPaths []string) bool {
	if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
		return true
	}
	for _, skip := range skipPaths {
		if strings.HasPrefix(r.URL.Path, skip) {
			return true
		}
	}
	return false
}

// errorResponse is the structured error body. Details never include another
// tenant's identifying information, only values already present in the request.
type errorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// errorStatus maps resolution and boundary errors to an HTTP status, a
// stable machine-readable code, and response details.
func errorStatus(err error) (status int, code string, details map[string]any) {
	var nfe *NotFoundError
	var re *ResolutionError
	var se SecurityError

	switch {
	case errors.As(err, &se):
		return http.StatusForbidden, "security_violation", map[string]any{"violation": se.SecurityViolation()}
	case errors.As(err, &re):
		return http.StatusBadRequest, "tenant_resolution_failed", map[string]any{"strategy": re.Strategy}
	case errors.As(err, &nfe):
		return http.StatusBadRequest, "tenant_not_found", map[string]any{
			"identifier": nfe.Identifier,
			"method":     string(nfe.Method),
		}
	case errors.Is(err, ErrInactiveTenant):
		return http.StatusForbidden, "tenant_inactive", nil
	case errors.Is(err, ErrNoTenantInContext):
		return http.StatusBadRequest, "missing_tenant_context", nil
	default:
		return http.StatusInternalServerError, "internal_error", nil
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, details := errorStatus(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		// Internal failures are not the client's business.
		msg = "internal server error"
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Code:    code,
		Message: msg,
		Details: details,
	})
}

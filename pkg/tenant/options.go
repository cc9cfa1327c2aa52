package tenant

import (
	"context"
	"log/slog"
	"net/http"
)

// Validator checks the security boundary for a request once its tenant
// context is installed. Implemented by the security enforcer.
type Validator interface {
	ValidateTenantAccess(ctx context.Context, r *http.Request) error
}

// ErrorHandler renders errors that occur during tenant resolution.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// middlewareConfig holds middleware configuration.
type middlewareConfig struct {
	skipPaths     []string
	validator     Validator
	errorHandler  ErrorHandler
	logger        *slog.Logger
	stats         *Stats
	metrics       *Metrics
	accessLogging bool
	userIDFn      func(r *http.Request) string
}

// Option configures the middleware.
type Option func(*middlewareConfig)

// WithSkipPaths replaces the default set of path prefixes that bypass tenant
// resolution (health, readiness, metrics, static assets).
func WithSkipPaths(paths []string) Option {
	return func(c *middlewareConfig) {
		c.skipPaths = paths
	}
}

// WithValidator installs a security boundary check that runs after the
// tenant context is installed and before the handler.
func WithValidator(v Validator) Option {
	return func(c *middlewareConfig) {
		c.validator = v
	}
}

// WithErrorHandler sets a custom error renderer.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(c *middlewareConfig) {
		if handler != nil {
			c.errorHandler = handler
		}
	}
}

// WithLogger sets a custom logger for the middleware.
func WithLogger(logger *slog.Logger) Option {
	return func(c *middlewareConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStats attaches a rolling stats collector.
func WithStats(s *Stats) Option {
	return func(c *middlewareConfig) {
		c.stats = s
	}
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *middlewareConfig) {
		c.metrics = m
	}
}

// WithAccessLogging annotates responses with the resolved tenant id and
// resolution method headers.
func WithAccessLogging(enabled bool) Option {
	return func(c *middlewareConfig) {
		c.accessLogging = enabled
	}
}

// WithUserIDExtractor supplies the acting user id for the tenant context,
// typically from the authentication layer.
func WithUserIDExtractor(fn func(r *http.Request) string) Option {
	return func(c *middlewareConfig) {
		c.userIDFn = fn
	}
}

package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/tenantguard/pkg/requestid"
	"github.com/dmitrymomot/tenantguard/pkg/tenant"
)

// RouterConfig assembles the tenant-aware middleware chain.
type RouterConfig struct {
	// Resolver is required; it drives tenant identification.
	Resolver *tenant.Resolver
	// Validator optionally enforces the security boundary after resolution,
	// typically a *security.Enforcer.
	Validator tenant.Validator
	// Readiness checks back the /readyz endpoint.
	Readiness []func(context.Context) error
	// Registry, when set, exposes /metrics and enables resolution metrics.
	Registry *prometheus.Registry

	Logger        *slog.Logger
	AccessLogging bool
	SkipPaths     []string
}

// NewRouter builds a chi router with the full request-identity chain:
// panic recovery, request id, tenant resolution with optional boundary
// enforcement, plus health and metrics endpoints outside the resolved zone.
// Mount application routes on the returned router; every handler below it
// sees a fully installed tenant context.
func NewRouter(ctx context.Context, cfg RouterConfig) chi.Router {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestid.Middleware)

	opts := []tenant.Option{
		tenant.WithLogger(log),
		tenant.WithAccessLogging(cfg.AccessLogging),
	}
	if cfg.Validator != nil {
		opts = append(opts, tenant.WithValidator(cfg.Validator))
	}
	if cfg.Registry != nil {
		opts = append(opts, tenant.WithMetrics(tenant.NewMetrics(cfg.Registry)))
	}
	if len(cfg.SkipPaths) > 0 {
		// Replaces the default list; custom lists must keep the probe and
		// metrics paths or those endpoints will demand a tenant.
		opts = append(opts, tenant.WithSkipPaths(cfg.SkipPaths))
	}
	r.Use(tenant.Middleware(cfg.Resolver, opts...))

	// Probes and metrics sit on the default skip-path list, so the tenant
	// middleware passes them through unresolved.
	r.Get("/healthz", HealthCheckHandler(ctx, log))
	r.Get("/readyz", HealthCheckHandler(ctx, log, cfg.Readiness...))
	if cfg.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}

	return r
}

// Package httpserver provides the HTTP surface for tenant-aware services: a
// graceful net/http server wrapper and a chi router pre-wired with the
// request-identity chain (panic recovery, request ids, tenant resolution,
// security boundary enforcement, probes, metrics).
//
// # Server
//
// Server wraps *http.Server with graceful shutdown. Run blocks until the
// context is cancelled or an interrupt/TERM signal arrives, then drains with
// a configurable deadline. Construction goes through New or NewFromConfig
// with functional options (WithAddr, WithReadTimeout, WithLogger, ...);
// WithStartHook and WithStopHook run side-effects around the lifecycle.
// Listen failures wrap ErrStart, shutdown failures wrap ErrShutdown.
//
// # Router
//
// NewRouter assembles the full middleware chain so every application handler
// runs with an installed tenant context:
//
//	resolver := tenant.NewResolver(strategy, tenant.WithProvider(store))
//	enforcer := security.NewEnforcer(security.WithAuditStorage(auditStore))
//
//	r := httpserver.NewRouter(ctx, httpserver.RouterConfig{
//		Resolver:  resolver,
//		Validator: enforcer,
//		Readiness: []func(context.Context) error{manager.Healthcheck()},
//		Registry:  prometheus.NewRegistry(),
//		Logger:    log,
//	})
//	r.Get("/api/orders", listOrders)
//
//	srv := httpserver.New(httpserver.WithAddr(":8080"), httpserver.WithLogger(log))
//	if err := srv.Run(ctx, r); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Health endpoints double as liveness (/healthz, no checks) and readiness
// (/readyz, runs the supplied dependency checks) probes; both sit on the
// tenant middleware's skip list.
package httpserver

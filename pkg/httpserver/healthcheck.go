package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/tenantguard/pkg/logger"
)

// HealthCheckHandler serves liveness and readiness probes. With no checks it
// answers 200 "ALIVE" unconditionally. With checks it runs each one and
// answers 200 "READY", or 500 "NOT_READY" as soon as a check fails. The
// supplied context bounds the checks independently of the request, so probe
// behavior stays stable while the server drains.
func HealthCheckHandler(ctx context.Context, log *slog.Logger, checks ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(checks) == 0 {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ALIVE"))
			return
		}

		for _, check := range checks {
			if err := check(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed", logger.Error(err))
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("NOT_READY"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	}
}

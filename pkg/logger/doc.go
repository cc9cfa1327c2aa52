// Package logger provides a slog factory with context-aware attribute injection.
//
// Loggers created here automatically enrich every record with request-scoped
// values (tenant id, request id) extracted from context, so call sites never
// need to thread identity attributes by hand.
//
//	log := logger.New(
//		logger.WithProduction("tenantguard"),
//		logger.WithContextExtractors(tenant.LoggerExtractor(), requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "request handled") // carries tenant_id and request_id
package logger

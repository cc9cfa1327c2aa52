package requestid

import "context"

type contextKey struct{}

// WithContext attaches the request ID so downstream handlers and log
// extractors can correlate work belonging to the same request.
func WithContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the request ID, or an empty string when the
// middleware has not run for this request.
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

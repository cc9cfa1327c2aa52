package httpserver

import (
	"log/slog"
	"net/http"
	"time"
)

// Option configures the HTTP server.
type Option func(*settings)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	if addr == "" {
		panic("WithAddr: addr cannot be empty")
	}
	return func(s *settings) { s.addr = addr }
}

// WithReadTimeout bounds how long the server waits to read a full request.
func WithReadTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("WithReadTimeout: duration must be > 0")
	}
	return func(s *settings) { s.readTimeout = d }
}

// WithWriteTimeout bounds how long the server may spend writing a response.
func WithWriteTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("WithWriteTimeout: duration must be > 0")
	}
	return func(s *settings) { s.writeTimeout = d }
}

// WithIdleTimeout bounds how long a keep-alive connection may sit idle.
func WithIdleTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("WithIdleTimeout: duration must be > 0")
	}
	return func(s *settings) { s.idleTimeout = d }
}

// WithShutdownTimeout bounds how long Shutdown waits for in-flight requests.
func WithShutdownTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("WithShutdownTimeout: duration must be > 0")
	}
	return func(s *settings) { s.shutdownTimeout = d }
}

// WithServer uses the provided http.Server instance. Its Handler and timeout
// fields may be modified; values already set on it win over package defaults.
func WithServer(srv *http.Server) Option {
	if srv == nil {
		panic("WithServer: nil server")
	}
	return func(s *settings) { s.server = srv }
}

// WithLogger supplies the logger used for lifecycle events. Nil keeps the
// server silent.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithStartHook registers a callback invoked when the server begins listening.
func WithStartHook(h func(*slog.Logger)) Option {
	if h == nil {
		panic("WithStartHook: nil hook")
	}
	return func(s *settings) { s.startHooks = append(s.startHooks, h) }
}

// WithStopHook registers a callback invoked after the server shuts down.
func WithStopHook(h func(*slog.Logger)) Option {
	if h == nil {
		panic("WithStopHook: nil hook")
	}
	return func(s *settings) { s.stopHooks = append(s.stopHooks, h) }
}

package tenant

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// statsWindowSize bounds the recent-durations window.
const statsWindowSize = 128

// Stats tracks rolling middleware metrics: request and error counts plus a
// bounded window of recent resolution durations. All methods are safe for
// concurrent use and never fail; metrics must not affect responses.
type Stats struct {
	mu        sync.Mutex
	requests  uint64
	errors    uint64
	durations []time.Duration
	next      int
	filled    bool
}

// NewStats creates an empty Stats collector.
func NewStats() *Stats {
	return &Stats{durations: make([]time.Duration, statsWindowSize)}
}

func (s *Stats) record(d time.Duration, failed bool) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests++
	if failed {
		s.errors++
	}
	s.durations[s.next] = d
	s.next++
	if s.next == len(s.durations) {
		s.next = 0
		s.filled = true
	}
}

// Snapshot returns the request count, error count, and mean resolution
// duration over the recent window.
func (s *Stats) Snapshot() (requests, errs uint64, avg time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.next
	if s.filled {
		n = len(s.durations)
	}
	if n == 0 {
		return s.requests, s.errors, 0
	}

	var total time.Duration
	for _, d := range s.durations[:n] {
		total += d
	}
	return s.requests, s.errors, total / time.Duration(n)
}

// Metrics exposes middleware counters through Prometheus.
type Metrics struct {
	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics creates and registers middleware metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenantguard",
			Name:      "requests_total",
			Help:      "Requests processed by the tenant middleware.",
		}, []string{"method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenantguard",
			Name:      "resolution_errors_total",
			Help:      "Tenant resolution failures by error code.",
		}, []string{"code"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tenantguard",
			Name:      "resolution_duration_seconds",
			Help:      "Time spent resolving the tenant per request.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.errors, m.duration)
	}
	return m
}

func (m *Metrics) observeSuccess(method Method, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(string(method)).Inc()
	m.duration.Observe(d.Seconds())
}

func (m *Metrics) observeError(code string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues("error").Inc()
	m.errors.WithLabelValues(code).Inc()
	m.duration.Observe(d.Seconds())
}

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache lookup results
const (
	ResultHit  = "hit"
	ResultMiss = "miss"
)

// Manager owns every instrument and the registry they live on.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	enabled          bool
	registry         *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	cacheLookups       *prometheus.CounterVec
	cacheInvalidations *prometheus.CounterVec

	upstreamRequests *prometheus.CounterVec
	upstreamRetries  prometheus.Counter
	upstreamDuration prometheus.Histogram

	analyticsDuration *prometheus.HistogramVec
}

// NewManager creates a manager on a fresh registry unless WithRegistry is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gridstats",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	m.initializeMetrics()
	return m
}

// Nop returns a disabled manager on its own registry, for tests and tools.
func Nop() *Manager {
	return NewManager(WithMetricsEnabled(false))
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route, method and status code",
		},
		[]string{"route", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"route", "method"},
	)

	m.cacheLookups = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by backend and result",
		},
		[]string{"backend", "result"},
	)

	m.cacheInvalidations = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Prefix invalidations by origin (local or remote)",
		},
		[]string{"origin"},
	)

	m.upstreamRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Upstream API requests by outcome",
		},
		[]string{"outcome"},
	)

	m.upstreamRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "upstream",
		Name:      "retries_total",
		Help:      "Upstream API requests that were retried",
	})

	m.upstreamDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Upstream API request duration in seconds, retries included",
		Buckets:   m.histogramBuckets,
	})

	m.analyticsDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: "analytics",
			Name:      "compute_duration_seconds",
			Help:      "Time spent computing an analytics result on a cache miss",
			Buckets:   m.histogramBuckets,
		},
		[]string{"metric"},
	)
}

// Registry returns the registry the manager serves from.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Enabled reports whether recording is on.
func (m *Manager) Enabled() bool {
	return m != nil && m.enabled
}

// RecordHTTPRequest records one served request.
func (m *Manager) RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	if !m.Enabled() {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordCacheLookup records a hit or miss on a cache backend.
func (m *Manager) RecordCacheLookup(backend string, hit bool) {
	if !m.Enabled() {
		return
	}
	result := ResultMiss
	if hit {
		result = ResultHit
	}
	m.cacheLookups.WithLabelValues(backend, result).Inc()
}

// RecordInvalidation records a prefix invalidation.
func (m *Manager) RecordInvalidation(origin string) {
	if !m.Enabled() {
		return
	}
	m.cacheInvalidations.WithLabelValues(origin).Inc()
}

// RecordUpstreamRequest records a finished upstream call.
func (m *Manager) RecordUpstreamRequest(outcome string, duration time.Duration) {
	if !m.Enabled() {
		return
	}
	m.upstreamRequests.WithLabelValues(outcome).Inc()
	m.upstreamDuration.Observe(duration.Seconds())
}

// RecordUpstreamRetry records one retried upstream attempt.
func (m *Manager) RecordUpstreamRetry() {
	if !m.Enabled() {
		return
	}
	m.upstreamRetries.Inc()
}

// RecordAnalytics records how long an analytics computation took.
func (m *Manager) RecordAnalytics(metric string, duration time.Duration) {
	if !m.Enabled() {
		return
	}
	m.analyticsDuration.WithLabelValues(metric).Observe(duration.Seconds())
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomeSkip  = "duplicate"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Recommendation metrics
	recommendations  *prometheus.CounterVec
	selectionLatency *prometheus.HistogramVec
	toolCalls        *prometheus.CounterVec

	// Snapshot metrics
	snapshotRefreshes       *prometheus.CounterVec
	snapshotRefreshDuration *prometheus.HistogramVec
	snapshotRows            *prometheus.GaugeVec
	snapshotLastUnix        prometheus.Gauge
	announcements           *prometheus.CounterVec

	// Upstream FPL API metrics
	upstreamRequests *prometheus.CounterVec
	breakerState     *prometheus.GaugeVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec

	// Process metrics
	systemMemory     prometheus.Gauge
	systemGoroutines prometheus.Gauge
	systemGCPause    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Configure replaces the global manager with one built from opts on a fresh
// registry. It must run before GetRegistry is handed to an exporter.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(registry)}, opts...)...)
	customRegistry = registry
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fplcoach",
		subsystem:        "advisor",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	}, labels)
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.recommendations = m.counterVec("recommendations_total",
		"Recommendations served by operation and outcome", "operation", "outcome")
	m.selectionLatency = m.histogramVec("selection_latency_milliseconds",
		"Time spent scoring and selecting per operation", "operation")
	m.toolCalls = m.counterVec("tool_calls_total",
		"MCP tool invocations by tool and outcome", "tool", "outcome")

	m.snapshotRefreshes = m.counterVec("snapshot_refreshes_total",
		"Snapshot loads by source and outcome", "source", "outcome")
	m.snapshotRefreshDuration = m.histogramVec("snapshot_refresh_duration_milliseconds",
		"Snapshot load duration by source", "source")
	m.snapshotRows = m.gaugeVec("snapshot_rows",
		"Rows per table in the current snapshot", "table")
	m.snapshotLastUnix = promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "snapshot_last_loaded_unix",
		Help:        "Unix time the current snapshot was loaded",
		ConstLabels: m.constLabels,
	})

	m.announcements = m.counterVec("snapshot_announcements_total",
		"Snapshot announcements received by outcome", "outcome")

	m.upstreamRequests = m.counterVec("upstream_requests_total",
		"FPL API requests by endpoint and outcome", "endpoint", "outcome")
	m.breakerState = m.gaugeVec("upstream_breaker_state",
		"Circuit breaker state (0 closed, 1 half-open, 2 open)", "name")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")
	m.httpErrors = m.counterVec("http_errors_total",
		"HTTP error responses by endpoint and error code", "endpoint", "method", "error_code")

	factory := promauto.With(m.registry)
	m.systemMemory = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system", Name: "memory_bytes",
		Help: "Heap bytes allocated", ConstLabels: m.constLabels,
	})
	m.systemGoroutines = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system", Name: "goroutines",
		Help: "Number of goroutines", ConstLabels: m.constLabels,
	})
	m.systemGCPause = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "system", Name: "gc_pause_milliseconds",
		Help: "Average GC pause time", Buckets: m.histogramBuckets, ConstLabels: m.constLabels,
	})
}

// RecordRecommendation counts one served operation.
func RecordRecommendation(operation, outcome string) {
	globalManager.recommendations.WithLabelValues(operation, outcome).Inc()
}

// RecordSelectionLatency records scoring plus selection time for an operation.
func RecordSelectionLatency(operation string, latencyMs float64) {
	globalManager.selectionLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordToolCall counts one MCP tool invocation.
func RecordToolCall(tool, outcome string) {
	globalManager.toolCalls.WithLabelValues(tool, outcome).Inc()
}

// RecordSnapshotRefresh records a snapshot load attempt.
func RecordSnapshotRefresh(source, outcome string, durationMs float64) {
	globalManager.snapshotRefreshes.WithLabelValues(source, outcome).Inc()
	globalManager.snapshotRefreshDuration.WithLabelValues(source).Observe(durationMs)
}

// UpdateSnapshotRows sets the row count of a snapshot table.
func UpdateSnapshotRows(table string, rows int) {
	globalManager.snapshotRows.WithLabelValues(table).Set(float64(rows))
}

// UpdateSnapshotLoaded sets the load time of the current snapshot.
func UpdateSnapshotLoaded(at time.Time) {
	globalManager.snapshotLastUnix.Set(float64(at.Unix()))
}

// RecordAnnouncement counts one received snapshot announcement.
func RecordAnnouncement(outcome string) {
	globalManager.announcements.WithLabelValues(outcome).Inc()
}

// RecordUpstreamRequest counts one FPL API request.
func RecordUpstreamRequest(endpoint, outcome string) {
	globalManager.upstreamRequests.WithLabelValues(endpoint, outcome).Inc()
}

// UpdateBreakerState sets the state of a named circuit breaker.
func UpdateBreakerState(name string, state int) {
	globalManager.breakerState.WithLabelValues(name).Set(float64(state))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordHTTPError counts an error response by its error code.
func RecordHTTPError(endpoint, method, errorCode string) {
	globalManager.httpErrors.WithLabelValues(endpoint, method, errorCode).Inc()
}

// UpdateSystemMemoryUsage sets the allocated heap size.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemory.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(n int) {
	globalManager.systemGoroutines.Set(float64(n))
}

// RecordSystemGCPauseTime observes an average GC pause.
func RecordSystemGCPauseTime(ms float64) {
	globalManager.systemGCPause.Observe(ms)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package metrics provides Prometheus metrics for the tradeboard ranking service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Row outcomes recorded by RecordRows.
const (
	RowsRead     = "read"
	RowsSkipped  = "skipped"
	RowsRejected = "rejected"
	RowsDropped  = "dropped"
	RowsRetained = "retained"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Ingestion
	rows              *prometheus.CounterVec
	ingestionFailures prometheus.Counter
	ingestionLatency  prometheus.Histogram

	// Dataset
	datasetCountries  prometheus.Gauge
	datasetContinents prometheus.Gauge

	// Ranking
	rankings       *prometheus.CounterVec
	rankingLatency *prometheus.HistogramVec
	invalidMetrics prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage prometheus.Gauge
	systemGoroutines  prometheus.Gauge
	systemGCPauseTime prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Init rebuilds the global manager from opts on a fresh registry, which
// GetRegistry then returns. Call it before anything is recorded.
func Init(opts ...Option) {
	reg := prometheus.NewRegistry()
	customRegistry = reg
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(reg)}, opts...)...)
}

// NewManager creates a new metrics manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tradeboard",
		subsystem:        "ranking",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of collectors
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.rows = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("rows_total"),
		Help:        "Source rows by normalization outcome",
		ConstLabels: labels,
	}, []string{"outcome"})

	m.ingestionFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("ingestion_failures_total"),
		Help:        "Number of source tables that could not be read at all",
		ConstLabels: labels,
	})

	m.ingestionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("ingestion_latency_milliseconds"),
		Help:        "Time spent reading and normalizing the source table",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.datasetCountries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("dataset_countries"),
		Help:        "Countries retained in the current dataset",
		ConstLabels: labels,
	})

	m.datasetContinents = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("dataset_continents"),
		Help:        "Distinct continents in the current dataset",
		ConstLabels: labels,
	})

	m.rankings = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("rankings_total"),
		Help:        "Rankings computed by metric and mode",
		ConstLabels: labels,
	}, []string{"metric", "mode"})

	m.rankingLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("ranking_latency_milliseconds"),
		Help:        "Ranking latency in milliseconds by metric",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"metric"})

	m.invalidMetrics = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("invalid_metric_total"),
		Help:        "Ranking requests naming an unknown metric",
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_requests_total"),
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_request_duration_milliseconds"),
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_type_total"),
		Help:        "Total number of errors by type",
		ConstLabels: labels,
	}, []string{"error_type", "severity"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_endpoint_total"),
		Help:        "Total number of errors by endpoint",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_memory_usage_bytes"),
		Help:        "System memory usage in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutines = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_goroutines"),
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_gc_pause_milliseconds"),
		Help:        "Average GC pause time in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})
}

// RecordRows adds n rows with the given outcome.
func (m *Manager) RecordRows(outcome string, n int) {
	if !m.enabled || n <= 0 {
		return
	}
	m.rows.WithLabelValues(outcome).Add(float64(n))
}

// RecordIngestionFailure counts a source that could not be read.
func (m *Manager) RecordIngestionFailure() {
	if m.enabled {
		m.ingestionFailures.Inc()
	}
}

// RecordIngestionLatency records load+normalize time in milliseconds.
func (m *Manager) RecordIngestionLatency(latencyMs float64) {
	if m.enabled {
		m.ingestionLatency.Observe(latencyMs)
	}
}

// UpdateDatasetSize sets the country and continent gauges.
func (m *Manager) UpdateDatasetSize(countries, continents int) {
	if !m.enabled {
		return
	}
	m.datasetCountries.Set(float64(countries))
	m.datasetContinents.Set(float64(continents))
}

// RecordRanking counts one ranking and its latency.
func (m *Manager) RecordRanking(metric, mode string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.rankings.WithLabelValues(metric, mode).Inc()
	m.rankingLatency.WithLabelValues(metric).Observe(latencyMs)
}

// RecordInvalidMetric counts a request for an unknown metric.
func (m *Manager) RecordInvalidMetric() {
	if m.enabled {
		m.invalidMetrics.Inc()
	}
}

// RecordHTTPRequest counts an HTTP request.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string) {
	if m.enabled {
		m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func (m *Manager) RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if m.enabled {
		m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// RecordErrorByType counts an error by type and severity.
func (m *Manager) RecordErrorByType(errorType, severity string) {
	if m.enabled {
		m.errorRateByType.WithLabelValues(errorType, severity).Inc()
	}
}

// RecordErrorByEndpoint counts an HTTP error by endpoint.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	if m.enabled {
		m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// UpdateSystemMemoryUsage sets the allocated heap in bytes.
func (m *Manager) UpdateSystemMemoryUsage(bytes uint64) {
	if m.enabled {
		m.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func (m *Manager) UpdateSystemGoroutineCount(count int) {
	if m.enabled {
		m.systemGoroutines.Set(float64(count))
	}
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func (m *Manager) RecordSystemGCPauseTime(pauseMs float64) {
	if m.enabled {
		m.systemGCPauseTime.Observe(pauseMs)
	}
}

// Package-level helpers delegate to the global manager.

// RecordRows adds n rows with the given outcome.
func RecordRows(outcome string, n int) { globalManager.RecordRows(outcome, n) }

// RecordIngestionFailure counts a source that could not be read.
func RecordIngestionFailure() { globalManager.RecordIngestionFailure() }

// RecordIngestionLatency records load+normalize time in milliseconds.
func RecordIngestionLatency(latencyMs float64) { globalManager.RecordIngestionLatency(latencyMs) }

// UpdateDatasetSize sets the country and continent gauges.
func UpdateDatasetSize(countries, continents int) {
	globalManager.UpdateDatasetSize(countries, continents)
}

// RecordRanking counts one ranking and its latency.
func RecordRanking(metric, mode string, latencyMs float64) {
	globalManager.RecordRanking(metric, mode, latencyMs)
}

// RecordInvalidMetric counts a request for an unknown metric.
func RecordInvalidMetric() { globalManager.RecordInvalidMetric() }

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode)
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequestDuration(endpoint, method, statusCode, durationMs)
}

// RecordErrorByType counts an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.RecordErrorByType(errorType, severity)
}

// RecordErrorByEndpoint counts an HTTP error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

// UpdateSystemMemoryUsage sets the allocated heap in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.UpdateSystemMemoryUsage(bytes) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.UpdateSystemGoroutineCount(count) }

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.RecordSystemGCPauseTime(pauseMs) }

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

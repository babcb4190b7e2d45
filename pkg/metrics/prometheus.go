// Package metrics provides Prometheus metrics for the Fairway booking service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Buckets for value distributions that are not latencies.
var (
	scoreBuckets = []float64{60, 65, 70, 75, 80, 85, 90, 95, 100, 110, 120} //nolint:gochecknoglobals // bucket layout
	priceBuckets = []float64{40, 50, 60, 70, 80, 90, 100, 110, 120, 140}     //nolint:gochecknoglobals // bucket layout
)

// Manager manages all Prometheus metrics for the Fairway service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Booking pipeline
	bookingsCreated   prometheus.Counter
	bookingFailures   *prometheus.CounterVec
	quotesServed      prometheus.Counter
	duplicateRequests prometheus.Counter
	bookingPrice      prometheus.Histogram

	// Prediction
	predictionLatency prometheus.Histogram
	predictedScore    prometheus.Histogram
	zeroFilledColumns *prometheus.CounterVec

	// Weather cache
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter

	// Store
	storeLatency *prometheus.HistogramVec
	storeRecords *prometheus.GaugeVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fairway",
		subsystem:        "booking",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	m.bookingsCreated = m.counter("bookings_created_total", "Total number of bookings created")
	m.bookingFailures = m.counterVec("booking_failures_total", "Booking creation failures by stage", "stage")
	m.quotesServed = m.counter("quotes_total", "Total number of price quotes served")
	m.duplicateRequests = m.counter("duplicate_requests_total", "Booking requests rejected for a reused idempotency key")
	m.bookingPrice = m.histogram("price", "Distribution of booked prices", priceBuckets)

	m.predictionLatency = m.histogram("prediction_latency_milliseconds", "Score prediction latency in milliseconds", m.histogramBuckets)
	m.predictedScore = m.histogram("predicted_score", "Distribution of predicted scores", scoreBuckets)
	m.zeroFilledColumns = m.counterVec("zero_filled_columns_total",
		"Expected feature columns missing at prediction time and filled with zero", "column")

	m.cacheHits = m.counter("weather_cache_hits_total", "Weather lookups served from cache")
	m.cacheMisses = m.counter("weather_cache_misses_total", "Weather lookups that fell through to the store")

	m.storeLatency = m.histogramVec("store_latency_milliseconds", "Store operation latency in milliseconds", "operation")
	m.storeRecords = promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "store_records",
		Help:        "Rows held by the store per table",
		ConstLabels: m.customLabels,
	}, []string{"table"})

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total",
		"Total number of errors by component", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total",
		"Total number of errors by type", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Total number of errors by endpoint", "endpoint", "method", "error_type")
	m.errorLatency = m.histogramVec("error_latency_milliseconds",
		"Latency of operations that resulted in errors", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordBookingCreated increments the bookings counter.
func RecordBookingCreated() {
	globalManager.bookingsCreated.Inc()
}

// RecordBookingFailure counts a failed booking at the given stage.
func RecordBookingFailure(stage string) {
	globalManager.bookingFailures.WithLabelValues(stage).Inc()
}

// RecordQuote increments the quotes counter.
func RecordQuote() {
	globalManager.quotesServed.Inc()
}

// RecordDuplicateRequest counts a rejected idempotency key.
func RecordDuplicateRequest() {
	globalManager.duplicateRequests.Inc()
}

// RecordPrice observes a booked price.
func RecordPrice(price float64) {
	globalManager.bookingPrice.Observe(price)
}

// RecordPredictionLatency records prediction latency in milliseconds.
func RecordPredictionLatency(latencyMs float64) {
	globalManager.predictionLatency.Observe(latencyMs)
}

// RecordPredictedScore observes a predicted score.
func RecordPredictedScore(score float64) {
	globalManager.predictedScore.Observe(score)
}

// RecordZeroFilledColumn counts a feature column that was zero-filled.
func RecordZeroFilledColumn(column string) {
	globalManager.zeroFilledColumns.WithLabelValues(column).Inc()
}

// RecordCacheHit counts a weather cache hit.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss counts a weather cache miss.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// RecordStoreLatency records the latency of a store operation in milliseconds.
func RecordStoreLatency(operation string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(operation).Observe(latencyMs)
}

// UpdateStoreRecords sets the row count of a table.
func UpdateStoreRecords(table string, count int) {
	globalManager.storeRecords.WithLabelValues(table).Set(float64(count))
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Enhanced Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

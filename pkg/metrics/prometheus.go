// Package metrics provides Prometheus metrics for the expert ranking
// service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const defaultRefreshInterval = 10 * time.Second

// Manager owns every Prometheus metric the service exposes.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Ingestion metrics
	eventsProcessed prometheus.Counter
	eventsDuplicate prometheus.Counter
	scoringLatency  prometheus.Histogram
	scoreUpdates    prometheus.Counter

	// Ranking metrics
	rankingQueries *prometheus.CounterVec
	rankingLatency prometheus.Histogram
	rankingErrors  prometheus.Counter
	scoringErrors  prometheus.Counter

	// Operational health
	queueSize    prometheus.Gauge
	workerCount  prometheus.Gauge
	totalExperts prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Roster store metrics
	rosterShardCount      prometheus.Gauge
	rosterRecordsTotal    prometheus.Gauge
	rosterRecordsPerShard *prometheus.GaugeVec
	rosterUpdateLatency   prometheus.Histogram
	rosterQueryLatency    prometheus.Histogram

	// Queue metrics
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueTotal      prometheus.Counter
	queueDequeueTotal      prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Worker metrics
	workerActiveCount       prometheus.Gauge
	workerIdleCount         prometheus.Gauge
	workerMessagesPerSecond prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Error detail metrics
	errorsByComponent *prometheus.CounterVec
	errorsByType      *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec
	errorLatency      *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global manager on a custom registry, keeping the default Go collector
// noise out of /healthz.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "expertrank",
		subsystem:        "ranking",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics registers every metric on the configured registry.
func (m *Manager) initializeMetrics() { //nolint:funlen // flat metric registration
	auto := promauto.With(m.registry)

	m.eventsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stat_events_processed_total",
		Help:      "Total number of stat events successfully applied",
	})

	m.eventsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stat_events_duplicate_total",
		Help:      "Total number of duplicate stat events rejected by the deduper",
	})

	m.scoringLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_latency_milliseconds",
		Help:      "Histogram of ranking score computation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.scoreUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_updates_total",
		Help:      "Total number of expert score refreshes written to the roster",
	})

	m.rankingQueries = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "ranking_queries_total",
			Help:      "Total number of ranking view computations by mode",
		},
		[]string{"mode"},
	)

	m.rankingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_latency_milliseconds",
		Help:      "Ranking view computation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.rankingErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_errors_total",
		Help:      "Total number of ranking computation errors",
	})

	m.scoringErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_errors_total",
		Help:      "Total number of scoring errors",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the stat event queue",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Configured number of ingestion workers",
	})

	m.totalExperts = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "total_experts",
		Help:      "Total number of experts tracked in the roster",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.rosterShardCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "roster_shard_count",
		Help:      "Number of roster store shards",
	})

	m.rosterRecordsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "roster_records_total",
		Help:      "Total number of expert records across all shards",
	})

	m.rosterRecordsPerShard = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "roster_records_per_shard",
			Help:      "Number of expert records per shard",
		},
		[]string{"shard_id"},
	)

	m.rosterUpdateLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "roster_update_latency_milliseconds",
		Help:      "Roster write operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.rosterQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "roster_query_latency_milliseconds",
		Help:      "Roster read operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum queue capacity",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization_ratio",
		Help:      "Queue utilization ratio (current size / capacity)",
	})

	m.queueEnqueueTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_total",
		Help:      "Total number of events enqueued",
	})

	m.queueDequeueTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeue_total",
		Help:      "Total number of events dequeued",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total number of enqueue failures",
	})

	m.queueProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_processing_latency_milliseconds",
		Help:      "Queue operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_active_count",
		Help:      "Number of active workers",
	})

	m.workerIdleCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_idle_count",
		Help:      "Number of idle workers",
	})

	m.workerMessagesPerSecond = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_messages_per_second",
		Help:      "Average events processed per second by workers",
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "Worker event processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total number of worker errors",
	})

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)

	m.errorsByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_type_total",
			Help:      "Total number of errors by type and severity",
		},
		[]string{"error_type", "severity"},
	)

	m.errorsByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total number of errors by endpoint",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "error_latency_milliseconds",
			Help:      "Latency of operations that resulted in errors",
			Buckets:   m.histogramBuckets,
		},
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "Heap memory in use in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordEventProcessed increments the processed stat events counter.
func RecordEventProcessed() {
	globalManager.eventsProcessed.Inc()
}

// RecordEventDuplicate increments the duplicate stat events counter.
func RecordEventDuplicate() {
	globalManager.eventsDuplicate.Inc()
}

// RecordScoringLatency records score computation latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordScoreUpdate increments the score refresh counter.
func RecordScoreUpdate() {
	globalManager.scoreUpdates.Inc()
}

// RecordRankingQuery counts one ranking view computation for mode.
func RecordRankingQuery(mode string) {
	globalManager.rankingQueries.WithLabelValues(mode).Inc()
}

// RecordRankingLatency records ranking view computation latency.
func RecordRankingLatency(latencyMs float64) {
	globalManager.rankingLatency.Observe(latencyMs)
}

// RecordRankingError increments the ranking errors counter.
func RecordRankingError() {
	globalManager.rankingErrors.Inc()
}

// RecordScoringError increments the scoring errors counter.
func RecordScoringError() {
	globalManager.scoringErrors.Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateTotalExperts sets the tracked experts gauge.
func UpdateTotalExperts(count int) {
	globalManager.totalExperts.Set(float64(count))
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records an HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// Roster store metrics.

// UpdateRosterShardCount sets the roster shard count gauge.
func UpdateRosterShardCount(count int) {
	globalManager.rosterShardCount.Set(float64(count))
}

// UpdateRosterRecordsTotal sets the total roster record gauge.
func UpdateRosterRecordsTotal(count int) {
	globalManager.rosterRecordsTotal.Set(float64(count))
}

// UpdateRosterRecordsPerShard sets the record count for one shard.
func UpdateRosterRecordsPerShard(shardID string, count int) {
	globalManager.rosterRecordsPerShard.WithLabelValues(shardID).Set(float64(count))
}

// RecordRosterUpdateLatency records a roster write latency.
func RecordRosterUpdateLatency(latencyMs float64) {
	globalManager.rosterUpdateLatency.Observe(latencyMs)
}

// RecordRosterQueryLatency records a roster read latency.
func RecordRosterQueryLatency(latencyMs float64) {
	globalManager.rosterQueryLatency.Observe(latencyMs)
}

// Queue metrics.

// UpdateQueueCapacity sets the configured queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue counts a successful enqueue.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueTotal.Inc()
}

// RecordQueueDequeue counts a dequeue.
func RecordQueueDequeue() {
	globalManager.queueDequeueTotal.Inc()
}

// RecordQueueEnqueueError counts a failed enqueue.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records a queue operation latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Worker metrics.

// UpdateWorkerActiveCount sets the active worker gauge.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// UpdateWorkerIdleCount sets the idle worker gauge.
func UpdateWorkerIdleCount(count int) {
	globalManager.workerIdleCount.Set(float64(count))
}

// UpdateWorkerMessagesPerSecond sets the worker throughput gauge.
func UpdateWorkerMessagesPerSecond(rate float64) {
	globalManager.workerMessagesPerSecond.Set(rate)
}

// RecordWorkerProcessingLatency records one worker event latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a worker error.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// Error detail metrics.

// RecordErrorByComponent counts an error for a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType counts an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint counts an error for an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of a failed operation.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System metrics.

// UpdateSystemMemoryUsage sets the heap memory gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records average GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry metrics are
// registered on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package metrics provides Prometheus metrics for the scale ingest service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Frame pipeline
	framesReceived  *prometheus.CounterVec
	framesDecoded   *prometheus.CounterVec
	framesDuplicate prometheus.Counter
	decodeErrors    *prometheus.CounterVec
	dispatchLatency prometheus.Histogram

	// Session lifecycle
	sessionsStarted       prometheus.Counter
	sessionsFinalized     *prometheus.CounterVec
	sessionsAbandoned     prometheus.Counter
	liveUpdates           prometheus.Counter
	activeSessions        prometheus.Gauge

	// Routing and body composition
	routingOutcomes  *prometheus.CounterVec
	bodycompComputed prometheus.Counter
	bodycompErrors   prometheus.Counter

	// Registry
	profileCount prometheus.Gauge

	// Queue
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueues    prometheus.Counter
	queueDrops       prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "eufylife",
		subsystem:        "scale",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.framesReceived = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_received_total",
		Help:      "Total raw frames received from transports, by device",
	}, []string{"device"})

	m.framesDecoded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_decoded_total",
		Help:      "Total frames decoded into readings, by reading kind",
	}, []string{"kind"})

	m.framesDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_duplicate_total",
		Help:      "Total repeated advertisement frames suppressed",
	})

	m.decodeErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "decode_errors_total",
		Help:      "Total frames dropped by the decoder, by reason",
	}, []string{"reason"})

	m.dispatchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dispatch_latency_milliseconds",
		Help:      "Latency from dequeue to fully processed frame in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.sessionsStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_started_total",
		Help:      "Total measurement sessions started",
	})

	m.sessionsFinalized = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_finalized_total",
		Help:      "Total sessions producing a final measurement, by trigger (frame|fallback)",
	}, []string{"trigger"})

	m.sessionsAbandoned = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_abandoned_total",
		Help:      "Total sessions that ended without a final measurement",
	})

	m.liveUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "live_updates_total",
		Help:      "Total real-time weight updates emitted",
	})

	m.activeSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_sessions",
		Help:      "Number of currently live device sessions",
	})

	m.routingOutcomes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "routing_outcomes_total",
		Help:      "Total routed final measurements, by outcome (matched|unassigned|ambiguous)",
	}, []string{"outcome"})

	m.bodycompComputed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "bodycomp_computed_total",
		Help:      "Total body composition results computed",
	})

	m.bodycompErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "bodycomp_errors_total",
		Help:      "Total body composition computations rejected on invalid input",
	})

	m.profileCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "profile_count",
		Help:      "Number of profiles in the registry",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current number of queued frames",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum frame queue capacity",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization_ratio",
		Help:      "Queue utilization ratio (size / capacity)",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_total",
		Help:      "Total frames enqueued",
	})

	m.queueDrops = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_drops_total",
		Help:      "Total frames dropped on backpressure or closed queue",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordFrameReceived counts a raw frame arriving from a transport.
func RecordFrameReceived(device string) {
	globalManager.framesReceived.WithLabelValues(device).Inc()
}

// RecordFrameDecoded counts a successfully decoded reading.
func RecordFrameDecoded(kind string) {
	globalManager.framesDecoded.WithLabelValues(kind).Inc()
}

// RecordFrameDuplicate counts a suppressed repeated advertisement.
func RecordFrameDuplicate() {
	globalManager.framesDuplicate.Inc()
}

// RecordDecodeError counts a dropped frame by reason.
func RecordDecodeError(reason string) {
	globalManager.decodeErrors.WithLabelValues(reason).Inc()
}

// RecordDispatchLatency records the per-frame processing latency.
func RecordDispatchLatency(latencyMs float64) {
	globalManager.dispatchLatency.Observe(latencyMs)
}

// RecordSessionStarted counts a new device session.
func RecordSessionStarted() {
	globalManager.sessionsStarted.Inc()
}

// RecordSessionFinalized counts a finalized session by trigger.
func RecordSessionFinalized(trigger string) {
	globalManager.sessionsFinalized.WithLabelValues(trigger).Inc()
}

// RecordSessionAbandoned counts a session ending without a final measurement.
func RecordSessionAbandoned() {
	globalManager.sessionsAbandoned.Inc()
}

// RecordLiveUpdate counts an emitted real-time weight update.
func RecordLiveUpdate() {
	globalManager.liveUpdates.Inc()
}

// UpdateActiveSessions sets the live session gauge.
func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

// RecordRoutingOutcome counts a routing decision.
func RecordRoutingOutcome(outcome string) {
	globalManager.routingOutcomes.WithLabelValues(outcome).Inc()
}

// RecordBodyCompComputed counts a computed composition result.
func RecordBodyCompComputed() {
	globalManager.bodycompComputed.Inc()
}

// RecordBodyCompError counts a rejected composition computation.
func RecordBodyCompError() {
	globalManager.bodycompErrors.Inc()
}

// UpdateProfileCount sets the registry size gauge.
func UpdateProfileCount(count int) {
	globalManager.profileCount.Set(float64(count))
}

// UpdateQueueSize sets the current queue size and utilization.
func UpdateQueueSize(size, capacity int) {
	globalManager.queueSize.Set(float64(size))
	if capacity > 0 {
		globalManager.queueUtilization.Set(float64(size) / float64(capacity))
	}
}

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue counts an accepted frame.
func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

// RecordQueueDrop counts a rejected frame.
func RecordQueueDrop() {
	globalManager.queueDrops.Inc()
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records an HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// GetRegistry returns the custom Prometheus registry used by the service.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

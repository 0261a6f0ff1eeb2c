package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kinesis-dev/kinesis/pkg/kinesis"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "kinesis").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for event and update durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "kinesis",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a kinesis.Observer recording Prometheus metrics.
//
// Metrics collected:
//   - kinesis_events_total: events by component and status (handled, ignored)
//   - kinesis_event_duration_seconds: event handling including the update
//   - kinesis_updates_total: fragment update passes by component
//   - kinesis_parts_updated_total: parts dispatched by those passes
//   - kinesis_update_duration_seconds: fragment update pass duration
//   - kinesis_lifecycle_total: mounts and detaches by component
//   - kinesis_failures_total: host failures by component and operation
//   - kinesis_active_sessions: live server sessions
//   - kinesis_mutations_sent_total: mutations streamed to clients
//   - kinesis_websocket_errors_total: transport errors by type
type Metrics struct {
	eventsTotal    *prometheus.CounterVec
	eventDuration  *prometheus.HistogramVec
	updatesTotal   *prometheus.CounterVec
	partsUpdated   *prometheus.CounterVec
	updateDuration *prometheus.HistogramVec
	lifecycle      *prometheus.CounterVec
	failures       *prometheus.CounterVec
	activeSessions prometheus.Gauge
	mutationsSent  prometheus.Counter
	wsErrors       *prometheus.CounterVec
}

// NewMetrics registers the metrics and returns the observer. Registering
// twice against the same registry panics, as promauto does.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_total",
			Help:        "Total number of host events handled by components",
			ConstLabels: config.ConstLabels,
		}, []string{"component", "status"}),

		eventDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "event_duration_seconds",
			Help:        "Event handling duration in seconds, including the resulting update",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"component"}),

		updatesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "updates_total",
			Help:        "Total number of fragment update passes",
			ConstLabels: config.ConstLabels,
		}, []string{"component"}),

		partsUpdated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "parts_updated_total",
			Help:        "Total number of dynamic parts dispatched by update passes",
			ConstLabels: config.ConstLabels,
		}, []string{"component"}),

		updateDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "update_duration_seconds",
			Help:        "Fragment update pass duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"component"}),

		lifecycle: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "lifecycle_total",
			Help:        "Total number of component mounts and detaches",
			ConstLabels: config.ConstLabels,
		}, []string{"component", "phase"}),

		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "failures_total",
			Help:        "Total number of host failures by operation",
			ConstLabels: config.ConstLabels,
		}, []string{"component", "op", "code"}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of active live sessions",
			ConstLabels: config.ConstLabels,
		}),

		mutationsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mutations_sent_total",
			Help:        "Total number of tree mutations sent to clients",
			ConstLabels: config.ConstLabels,
		}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_errors_total",
			Help:        "Total WebSocket errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// EventHandled implements kinesis.Observer.
func (m *Metrics) EventHandled(component string, _ kinesis.EventID, changed bool, elapsed time.Duration) {
	status := "ignored"
	if changed {
		status = "handled"
	}
	m.eventsTotal.WithLabelValues(component, status).Inc()
	m.eventDuration.WithLabelValues(component).Observe(elapsed.Seconds())
}

// FragmentUpdated implements kinesis.Observer.
func (m *Metrics) FragmentUpdated(component string, _ []kinesis.DepID, parts int, elapsed time.Duration) {
	m.updatesTotal.WithLabelValues(component).Inc()
	m.partsUpdated.WithLabelValues(component).Add(float64(parts))
	m.updateDuration.WithLabelValues(component).Observe(elapsed.Seconds())
}

// Mounted implements kinesis.Observer.
func (m *Metrics) Mounted(component string) {
	m.lifecycle.WithLabelValues(component, "mount").Inc()
}

// Detached implements kinesis.Observer.
func (m *Metrics) Detached(component string) {
	m.lifecycle.WithLabelValues(component, "detach").Inc()
}

// Failed implements kinesis.Observer.
func (m *Metrics) Failed(component, op string, err error) {
	m.failures.WithLabelValues(component, op, errorCode(err)).Inc()
}

// SessionOpened records a new live session.
func (m *Metrics) SessionOpened() {
	m.activeSessions.Inc()
}

// SessionClosed records the end of a live session.
func (m *Metrics) SessionClosed() {
	m.activeSessions.Dec()
}

// MutationsSent records count mutations streamed to a client.
func (m *Metrics) MutationsSent(count int) {
	m.mutationsSent.Add(float64(count))
}

// WebSocketError records a transport error. kind should be a small fixed
// vocabulary ("read", "write", "decode") to keep label cardinality low.
func (m *Metrics) WebSocketError(kind string) {
	m.wsErrors.WithLabelValues(kind).Inc()
}


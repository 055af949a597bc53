package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rpggio/robolab/internal/config"
)

// Metrics records store operations on a private registry. A disabled
// Metrics accepts observations and drops them.
type Metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
}

// NewMetrics creates the store collectors.
func NewMetrics(cfg config.MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return &Metrics{}
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "robolab"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Store operations by store, operation and outcome",
			},
			[]string{"store", "op", "outcome"},
		),
		durations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_seconds",
				Help:      "Store operation latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"store", "op"},
		),
	}
	m.registry.MustRegister(m.operations, m.durations)
	return m
}

// ObserveOperation implements robot.Recorder.
func (m *Metrics) ObserveOperation(store, op, outcome string, elapsed time.Duration) {
	if m == nil || m.registry == nil {
		return
	}
	m.operations.WithLabelValues(store, op, outcome).Inc()
	m.durations.WithLabelValues(store, op).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry, or nil when disabled.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

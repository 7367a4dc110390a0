package publisher

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for audit emission.
type Metrics struct {
	Emitted         prometheus.Counter
	Dropped         prometheus.Counter
	CircuitDropped  prometheus.Counter
	PersistFailures prometheus.Counter
	CircuitState    prometheus.Gauge
	PersistDuration prometheus.Histogram
}

// NewMetrics registers audit publisher metrics with the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith registers audit publisher metrics with reg.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Emitted: f.NewCounter(prometheus.CounterOpts{
			Name: "fellinglicence_audit_events_emitted_total",
			Help: "Total number of audit events successfully persisted",
		}),
		Dropped: f.NewCounter(prometheus.CounterOpts{
			Name: "fellinglicence_audit_events_dropped_total",
			Help: "Total number of audit events dropped because the buffer was full",
		}),
		CircuitDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "fellinglicence_audit_circuit_breaker_dropped_total",
			Help: "Total number of audit events dropped while the circuit breaker was open",
		}),
		PersistFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "fellinglicence_audit_persist_failures_total",
			Help: "Total number of audit event persistence failures",
		}),
		CircuitState: f.NewGauge(prometheus.GaugeOpts{
			Name: "fellinglicence_audit_circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed/healthy, 1=open/unhealthy)",
		}),
		PersistDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "fellinglicence_audit_persist_duration_seconds",
			Help:    "Duration of audit event persistence",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) observeEmitted(d time.Duration) {
	if m != nil {
		m.Emitted.Inc()
		m.PersistDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) incDropped() {
	if m != nil {
		m.Dropped.Inc()
	}
}

func (m *Metrics) incCircuitDropped() {
	if m != nil {
		m.CircuitDropped.Inc()
	}
}

func (m *Metrics) incPersistFailures() {
	if m != nil {
		m.PersistFailures.Inc()
	}
}

func (m *Metrics) setCircuitOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.CircuitState.Set(1)
	} else {
		m.CircuitState.Set(0)
	}
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for CalculationOutcome.
const (
	OutcomeCalculated  = "calculated"
	OutcomeCalcFailed  = "calculation_failed"
	OutcomeSaved       = "saved"
	OutcomeSaveFailed  = "save_failed"
	OutcomeInvalidArgs = "invalid_input"
)

// Metrics provides observability for the conditions module.
type Metrics struct {
	// Calculation outcomes by outcome and draft flag
	CalculationOutcome *prometheus.CounterVec

	// Conditions produced per strategy
	ConditionsProduced *prometheus.CounterVec

	// Full Calculate latency including persistence
	CalculateLatency *prometheus.HistogramVec

	PersistLatency prometheus.Histogram
}

// New registers the conditions metrics with the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the conditions metrics with reg.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CalculationOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fellinglicence_conditions_calculations_total",
			Help: "Condition calculations by outcome and draft flag",
		}, []string{"outcome", "draft"}),

		ConditionsProduced: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fellinglicence_conditions_produced_total",
			Help: "Calculated conditions by strategy",
		}, []string{"strategy"}),

		CalculateLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fellinglicence_conditions_calculate_duration_seconds",
			Help:    "Duration of condition calculation including persistence",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"draft"}),

		PersistLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fellinglicence_conditions_persist_duration_seconds",
			Help:    "Duration of the clear-then-save unit of work",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// IncrementOutcome records a calculation outcome.
func (m *Metrics) IncrementOutcome(outcome string, draft bool) {
	if m != nil {
		m.CalculationOutcome.WithLabelValues(outcome, draftLabel(draft)).Inc()
	}
}

// AddConditions records how many conditions a strategy produced.
func (m *Metrics) AddConditions(strategy string, n int) {
	if m != nil && n > 0 {
		m.ConditionsProduced.WithLabelValues(strategy).Add(float64(n))
	}
}

func (m *Metrics) ObserveCalculateLatency(draft bool, d time.Duration) {
	if m != nil {
		m.CalculateLatency.WithLabelValues(draftLabel(draft)).Observe(d.Seconds())
	}
}

func (m *Metrics) ObservePersistLatency(d time.Duration) {
	if m != nil {
		m.PersistLatency.Observe(d.Seconds())
	}
}

func draftLabel(draft bool) string {
	if draft {
		return "true"
	}
	return "false"
}

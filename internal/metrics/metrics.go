// Package metrics exposes Prometheus instrumentation for the calculator.
// All methods are safe to call on a nil *Metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the calculator's collectors.
type Metrics struct {
	// Service operations by name and outcome ("ok", "invalid", "not_found", "error")
	Operations *prometheus.CounterVec

	// Service operation latency by name
	OperationDuration *prometheus.HistogramVec

	// Programs evaluated per eligibility request
	ProgramsEvaluated prometheus.Histogram

	// Engine warnings: rule anomalies and unknown frequencies
	EngineWarnings prometheus.Counter

	// Per-request cache lookups by result ("hit", "miss")
	CacheLookups *prometheus.CounterVec

	// COLA adjustments applied
	COLAApplied prometheus.Counter
}

// New registers the calculator metrics with reg. A nil reg registers with the
// default Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "spcalc_operations_total",
			Help: "Service operations by name and outcome",
		}, []string{"operation", "outcome"}),

		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "spcalc_operation_duration_seconds",
			Help:    "Duration of service operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),

		ProgramsEvaluated: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "spcalc_programs_evaluated",
			Help:    "Number of programs evaluated per eligibility request",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
		}),

		EngineWarnings: factory.NewCounter(prometheus.CounterOpts{
			Name: "spcalc_engine_warnings_total",
			Help: "Rule evaluation anomalies and other engine warnings",
		}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "spcalc_request_cache_lookups_total",
			Help: "Per-request evaluation cache lookups by result",
		}, []string{"result"}),

		COLAApplied: factory.NewCounter(prometheus.CounterOpts{
			Name: "spcalc_cola_adjustments_total",
			Help: "Cost-of-living adjustments applied to programs",
		}),
	}
}

// ObserveOperation records the outcome and duration of a service operation.
// Call with time.Now() taken at the start of the operation.
func (m *Metrics) ObserveOperation(operation, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveProgramsEvaluated records how many programs one request evaluated.
func (m *Metrics) ObserveProgramsEvaluated(n int) {
	if m != nil {
		m.ProgramsEvaluated.Observe(float64(n))
	}
}

// IncrementEngineWarnings records one engine warning.
func (m *Metrics) IncrementEngineWarnings() {
	if m != nil {
		m.EngineWarnings.Inc()
	}
}

// AddCacheLookups records a request's cache hits and misses.
func (m *Metrics) AddCacheLookups(hits, misses int) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues("hit").Add(float64(hits))
	m.CacheLookups.WithLabelValues("miss").Add(float64(misses))
}

// IncrementCOLAApplied records one applied adjustment.
func (m *Metrics) IncrementCOLAApplied() {
	if m != nil {
		m.COLAApplied.Inc()
	}
}

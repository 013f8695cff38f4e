package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for Dialectic
type Metrics struct {
	// Planning metrics
	PlanInvocations  *prometheus.CounterVec
	ChildJobsPlanned *prometheus.CounterVec
	PlanDuration     *prometheus.HistogramVec

	// Path codec metrics
	PathsClassified          *prometheus.CounterVec
	PathClassificationMisses prometheus.Counter

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// Plan outcomes
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		PlanInvocations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dialectic_plan_invocations_total",
				Help: "Total number of planner invocations",
			},
			[]string{"strategy", "outcome"},
		),
		ChildJobsPlanned: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dialectic_child_jobs_planned_total",
				Help: "Total number of EXECUTE child jobs planned",
			},
			[]string{"strategy"},
		),
		PlanDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dialectic_plan_duration_seconds",
				Help:    "Planner invocation duration in seconds",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"strategy"},
		),

		PathsClassified: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dialectic_paths_classified_total",
				Help: "Total number of storage paths classified by file type",
			},
			[]string{"file_type"},
		),
		PathClassificationMisses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dialectic_path_classification_misses_total",
				Help: "Total number of storage paths no decode rule matched",
			},
		),

		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dialectic_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"code"},
		),
	}
}

// ObservePlan records one planner invocation. code is the error code of a
// failed invocation and ignored on success.
func (m *Metrics) ObservePlan(strategy string, jobs int, elapsed time.Duration, code string) {
	if m == nil {
		return
	}
	m.PlanDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
	if code != "" {
		m.PlanInvocations.WithLabelValues(strategy, OutcomeError).Inc()
		m.Errors.WithLabelValues(code).Inc()
		return
	}
	m.PlanInvocations.WithLabelValues(strategy, OutcomeSuccess).Inc()
	m.ChildJobsPlanned.WithLabelValues(strategy).Add(float64(jobs))
}

// ObserveClassification records the outcome of decoding one path
func (m *Metrics) ObserveClassification(fileType string) {
	if m == nil {
		return
	}
	if fileType == "" {
		m.PathClassificationMisses.Inc()
		return
	}
	m.PathsClassified.WithLabelValues(fileType).Inc()
}

// Package observability provides metrics collectors for the outbreak-response core.
package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all the metric collectors for the application. A nil
// *Metrics is valid and records nothing, so components can run unmetered
// in tests.
type Metrics struct {
	registry *prometheus.Registry

	reportsIngestedTotal *prometheus.CounterVec
	densityScoresTotal   prometheus.Counter
	fusionCalibrations   *prometheus.CounterVec

	recomputePassesTotal  prometheus.Counter
	recomputeDuration     prometheus.Histogram
	outbreaksCreatedTotal prometheus.Counter
	outbreaksUpdatedTotal prometheus.Counter

	reconcilePassesTotal prometheus.Counter
	tasksDispatchedTotal *prometheus.CounterVec

	storeErrorsTotal *prometheus.CounterVec
}

// NewMetrics creates a new instance of Metrics, registering all collectors.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		reportsIngestedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reports_ingested_total",
			Help: "Total number of reports ingested, labeled by initial status",
		}, []string{"status"}),
		densityScoresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "density_scores_computed_total",
			Help: "Total number of density scores computed",
		}),
		fusionCalibrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fusion_calibrations_total",
			Help: "Total number of fusion calibration rules triggered, labeled by rule",
		}, []string{"rule"}),
		recomputePassesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "outbreak_recompute_passes_total",
			Help: "Total number of outbreak recompute passes",
		}),
		recomputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "outbreak_recompute_duration_seconds",
			Help:    "Duration of outbreak recompute passes",
			Buckets: prometheus.DefBuckets,
		}),
		outbreaksCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "outbreaks_created_total",
			Help: "Total number of outbreaks created by recompute passes",
		}),
		outbreaksUpdatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "outbreaks_updated_total",
			Help: "Total number of outbreaks updated in place by recompute passes",
		}),
		reconcilePassesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "task_reconcile_passes_total",
			Help: "Total number of task reconcile passes",
		}),
		tasksDispatchedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tasks_dispatched_total",
			Help: "Total number of tasks auto-created, labeled by priority",
		}, []string{"priority"}),
		storeErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "store_errors_total",
			Help: "Total number of store errors, labeled by operation",
		}, []string{"operation"}),
	}

	collectors := []prometheus.Collector{
		m.reportsIngestedTotal,
		m.densityScoresTotal,
		m.fusionCalibrations,
		m.recomputePassesTotal,
		m.recomputeDuration,
		m.outbreaksCreatedTotal,
		m.outbreaksUpdatedTotal,
		m.reconcilePassesTotal,
		m.tasksDispatchedTotal,
		m.storeErrorsTotal,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}

	return m, nil
}

// Registry returns the prometheus registry for exposition.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ReportIngested records one ingested report with its initial status.
func (m *Metrics) ReportIngested(status string) {
	if m == nil {
		return
	}
	m.reportsIngestedTotal.WithLabelValues(status).Inc()
}

// DensityScoreComputed records one density computation.
func (m *Metrics) DensityScoreComputed() {
	if m == nil {
		return
	}
	m.densityScoresTotal.Inc()
}

// FusionCalibrationTriggered records a triggered calibration rule.
func (m *Metrics) FusionCalibrationTriggered(rule string) {
	if m == nil {
		return
	}
	m.fusionCalibrations.WithLabelValues(rule).Inc()
}

// RecomputePass records one recompute pass with its duration and outcome.
func (m *Metrics) RecomputePass(seconds float64, created, updated int) {
	if m == nil {
		return
	}
	m.recomputePassesTotal.Inc()
	m.recomputeDuration.Observe(seconds)
	m.outbreaksCreatedTotal.Add(float64(created))
	m.outbreaksUpdatedTotal.Add(float64(updated))
}

// ReconcilePass records one reconcile pass.
func (m *Metrics) ReconcilePass() {
	if m == nil {
		return
	}
	m.reconcilePassesTotal.Inc()
}

// TaskDispatched records one auto-created task.
func (m *Metrics) TaskDispatched(priority string) {
	if m == nil {
		return
	}
	m.tasksDispatchedTotal.WithLabelValues(priority).Inc()
}

// StoreError records a store failure for an operation.
func (m *Metrics) StoreError(operation string) {
	if m == nil {
		return
	}
	m.storeErrorsTotal.WithLabelValues(operation).Inc()
}

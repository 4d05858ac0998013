package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for idleforge.
// Recording methods are safe on a nil *Metrics.
type Metrics struct {
	// Progression metrics
	TaskCompletions  *prometheus.CounterVec
	TaskSelections   *prometheus.CounterVec
	MoneyEarned      prometheus.Counter
	JobLevel         prometheus.Gauge
	MasteryPromotion *prometheus.CounterVec

	// Save metrics
	Saves        *prometheus.CounterVec
	SaveDuration prometheus.Histogram
	Loads        *prometheus.CounterVec

	// Content metrics
	PackMerges        *prometheus.CounterVec
	PackMergeDuration prometheus.Histogram
	ContentErrors     *prometheus.CounterVec

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		TaskCompletions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "idleforge_task_completions_total",
				Help: "Total number of task completions",
			},
			[]string{"task", "kind"},
		),
		TaskSelections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "idleforge_task_selections_total",
				Help: "Total number of active task changes",
			},
			[]string{"task"},
		),
		MoneyEarned: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "idleforge_money_earned_total",
				Help: "Total money earned from job completions",
			},
		),
		JobLevel: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "idleforge_job_level",
				Help: "Current job level",
			},
		),
		MasteryPromotion: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "idleforge_mastery_promotions_total",
				Help: "Total number of mastery tier promotions",
			},
			[]string{"task"},
		),

		Saves: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "idleforge_saves_total",
				Help: "Total number of save attempts",
			},
			[]string{"trigger", "success"},
		),
		SaveDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "idleforge_save_duration_seconds",
				Help:    "Save duration in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
		),
		Loads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "idleforge_loads_total",
				Help: "Total number of save loads by outcome",
			},
			[]string{"outcome"},
		),

		PackMerges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "idleforge_pack_merges_total",
				Help: "Total number of content pack merges",
			},
			[]string{"success"},
		),
		PackMergeDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "idleforge_pack_merge_duration_seconds",
				Help:    "Content pack merge duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		ContentErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "idleforge_content_errors_total",
				Help: "Total number of content authoring errors",
			},
			[]string{"kind"},
		),

		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "idleforge_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code", "component"},
		),
	}
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// RecordCompletion counts one completion of task.
func (m *Metrics) RecordCompletion(task, kind string) {
	if m == nil {
		return
	}
	m.TaskCompletions.WithLabelValues(task, kind).Inc()
}

// RecordSelection counts a task change.
func (m *Metrics) RecordSelection(task string) {
	if m == nil {
		return
	}
	m.TaskSelections.WithLabelValues(task).Inc()
}

// RecordMoney adds earned money.
func (m *Metrics) RecordMoney(amount float64) {
	if m == nil || amount <= 0 {
		return
	}
	m.MoneyEarned.Add(amount)
}

// SetJobLevel records the current job level.
func (m *Metrics) SetJobLevel(level int) {
	if m == nil {
		return
	}
	m.JobLevel.Set(float64(level))
}

// RecordMasteryPromotion counts a tier change of task.
func (m *Metrics) RecordMasteryPromotion(task string) {
	if m == nil {
		return
	}
	m.MasteryPromotion.WithLabelValues(task).Inc()
}

// RecordSave records one save attempt.
func (m *Metrics) RecordSave(trigger string, success bool, d time.Duration) {
	if m == nil {
		return
	}
	m.Saves.WithLabelValues(trigger, boolLabel(success)).Inc()
	m.SaveDuration.Observe(d.Seconds())
}

// RecordLoad records how a load ended: "restored", "fresh" or "fallback".
func (m *Metrics) RecordLoad(outcome string) {
	if m == nil {
		return
	}
	m.Loads.WithLabelValues(outcome).Inc()
}

// RecordMerge records one pack merge.
func (m *Metrics) RecordMerge(success bool, d time.Duration) {
	if m == nil {
		return
	}
	m.PackMerges.WithLabelValues(boolLabel(success)).Inc()
	m.PackMergeDuration.Observe(d.Seconds())
}

// RecordContentError counts an authoring error of a given kind.
func (m *Metrics) RecordContentError(kind string) {
	if m == nil {
		return
	}
	m.ContentErrors.WithLabelValues(kind).Inc()
}

// RecordError counts an error by code.
func (m *Metrics) RecordError(code, component string) {
	if m == nil {
		return
	}
	m.Errors.WithLabelValues(code, component).Inc()
}

// Package metrics exposes Prometheus collectors for pipeline execution.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	InjectorApplyDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cadenza_injector_apply_seconds",
		Help:    "Time spent in a single injector Apply",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})

	InjectorErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cadenza_injector_errors_total",
		Help: "Injector failures by type and error kind",
	}, []string{"type", "kind"})

	StepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cadenza_steps_total",
		Help: "Completed training steps",
	})

	StepDuration = promauto.NewSummary(prometheus.SummaryOpts{
		Name: "cadenza_step_duration_seconds",
		Help: "Duration of a full training step",
	})

	ScalarValue = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cadenza_scalar_value",
		Help: "Last scalar written to the step state, by key",
	}, []string{"key"})
)

// RecordApply observes one injector invocation.
func RecordApply(typ string, d time.Duration) {
	InjectorApplyDuration.WithLabelValues(typ).Observe(d.Seconds())
}

// RecordInjectorError counts a failed injector. kind is a short error class
// such as "shape_mismatch" or "missing_key".
func RecordInjectorError(typ, kind string) {
	InjectorErrors.WithLabelValues(typ, kind).Inc()
}

// RecordStep counts a completed step.
func RecordStep(d time.Duration) {
	StepsTotal.Inc()
	StepDuration.Observe(d.Seconds())
}

// RecordScalar sets the gauge for a scalar state key.
func RecordScalar(key string, v float64) {
	ScalarValue.WithLabelValues(key).Set(v)
}

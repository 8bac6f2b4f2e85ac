// Package observability exposes engine activity as Prometheus metrics.
// The Metrics type plugs into domain.LifecycleHooks so the engine itself
// stays free of any metrics dependency.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/inquest/pkg/domain"
)

// Metrics holds the Prometheus collectors for engine activity.
type Metrics struct {
	runsTotal        *prometheus.CounterVec
	runDuration      prometheus.Histogram
	stepsTotal       *prometheus.CounterVec
	stepsInFlight    prometheus.Gauge
	generateTotal    *prometheus.CounterVec
	generateDuration prometheus.Histogram
	generateRetries  prometheus.Counter
	tokensTotal      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with the given
// registerer. Pass prometheus.DefaultRegisterer for the global registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inquest_runs_total",
				Help: "Total number of completed runs by terminal status",
			},
			[]string{"status"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "inquest_run_duration_seconds",
				Help:    "Wall-clock duration of completed runs",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
		),
		stepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inquest_steps_total",
				Help: "Total number of executed solver steps",
			},
			[]string{"solver", "outcome"},
		),
		stepsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "inquest_steps_in_flight",
				Help: "Number of solver steps currently executing",
			},
		),
		generateTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inquest_generate_total",
				Help: "Total number of gateway generate calls",
			},
			[]string{"model", "outcome"},
		),
		generateDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "inquest_generate_duration_seconds",
				Help:    "Duration of gateway generate calls, retries included",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
			},
		),
		generateRetries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "inquest_generate_retries_total",
				Help: "Total number of retried generate attempts",
			},
		),
		tokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inquest_tokens_total",
				Help: "Total tokens reported by the model backend",
			},
			[]string{"model", "kind"},
		),
	}

	collectors := []prometheus.Collector{
		m.runsTotal,
		m.runDuration,
		m.stepsTotal,
		m.stepsInFlight,
		m.generateTotal,
		m.generateDuration,
		m.generateRetries,
		m.tokensTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that feed the collectors. Merge them with
// any application hooks before handing them to the engine.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepStart: func(ctx context.Context, e *domain.StepEvent) {
			m.stepsInFlight.Inc()
		},
		OnStepEnd: func(ctx context.Context, e *domain.StepEvent) {
			m.stepsInFlight.Dec()
			m.stepsTotal.WithLabelValues(e.Solver, outcome(e.Err)).Inc()
		},
		OnGenerate: func(ctx context.Context, e *domain.GenerateEvent) {
			m.generateTotal.WithLabelValues(e.Model, outcome(e.Err)).Inc()
			m.generateDuration.Observe(e.Duration.Seconds())
			if e.Retries > 0 {
				m.generateRetries.Add(float64(e.Retries))
			}
			if e.Err == nil {
				m.tokensTotal.WithLabelValues(e.Model, "input").Add(float64(e.Usage.InputTokens))
				m.tokensTotal.WithLabelValues(e.Model, "output").Add(float64(e.Usage.OutputTokens))
			}
		},
		OnRunEnd: func(ctx context.Context, e *domain.RunEvent) {
			m.runsTotal.WithLabelValues(string(e.Status)).Inc()
			m.runDuration.Observe(e.Duration.Seconds())
		},
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// MergeHooks fans events out to every non-nil callback of the given hook
// sets, in order.
func MergeHooks(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepStart: func(ctx context.Context, e *domain.StepEvent) {
			for _, h := range hooks {
				if h.OnStepStart != nil {
					h.OnStepStart(ctx, e)
				}
			}
		},
		OnStepEnd: func(ctx context.Context, e *domain.StepEvent) {
			for _, h := range hooks {
				if h.OnStepEnd != nil {
					h.OnStepEnd(ctx, e)
				}
			}
		},
		OnGenerate: func(ctx context.Context, e *domain.GenerateEvent) {
			for _, h := range hooks {
				if h.OnGenerate != nil {
					h.OnGenerate(ctx, e)
				}
			}
		},
		OnRunEnd: func(ctx context.Context, e *domain.RunEvent) {
			for _, h := range hooks {
				if h.OnRunEnd != nil {
					h.OnRunEnd(ctx, e)
				}
			}
		},
	}
}

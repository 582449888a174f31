package telemetry

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vicinitylabs/vicinity/pkg/domain"
)

// Metrics exposes wizard activity as Prometheus collectors.
type Metrics struct {
	stepEnters         *prometheus.CounterVec
	stepCompletions    *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	submissions        *prometheus.CounterVec
	submissionDuration prometheus.Histogram
}

// NewMetrics creates and registers the wizard collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		stepEnters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vicinity",
			Subsystem: "wizard",
			Name:      "step_enters_total",
			Help:      "Step form views, by step number.",
		}, []string{"step"}),
		stepCompletions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vicinity",
			Subsystem: "wizard",
			Name:      "step_completions_total",
			Help:      "Successful step submissions, by step number.",
		}, []string{"step"}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vicinity",
			Subsystem: "wizard",
			Name:      "validation_failures_total",
			Help:      "Rejected step submissions, by step number.",
		}, []string{"step"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vicinity",
			Subsystem: "wizard",
			Name:      "submissions_total",
			Help:      "Final submission attempts, by result.",
		}, []string{"result"}),
		submissionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vicinity",
			Subsystem: "wizard",
			Name:      "submission_duration_seconds",
			Help:      "Time spent materializing a final submission.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.stepEnters,
		m.stepCompletions,
		m.validationFailures,
		m.submissions,
		m.submissionDuration,
	)
	return m
}

// Hooks returns a hook set that updates the collectors.
func (m *Metrics) Hooks() *domain.TelemetryHooks {
	return &domain.TelemetryHooks{
		OnStepEnter: func(_ context.Context, ev *domain.StepEvent) {
			m.stepEnters.WithLabelValues(strconv.Itoa(ev.Step)).Inc()
		},
		OnStepComplete: func(_ context.Context, ev *domain.StepEvent) {
			m.stepCompletions.WithLabelValues(strconv.Itoa(ev.Step)).Inc()
		},
		OnValidationFailure: func(_ context.Context, ev *domain.ValidationEvent) {
			m.validationFailures.WithLabelValues(strconv.Itoa(ev.Step)).Inc()
		},
		OnSubmission: func(_ context.Context, ev *domain.SubmissionEvent) {
			m.submissions.WithLabelValues("success").Inc()
			m.submissionDuration.Observe(ev.Duration.Seconds())
		},
		OnSubmissionError: func(_ context.Context, ev *domain.SubmissionEvent) {
			m.submissions.WithLabelValues("error").Inc()
			m.submissionDuration.Observe(ev.Duration.Seconds())
		},
	}
}

// Package telemetry provides ready-made TelemetryHooks implementations:
// structured logging, Prometheus metrics, an in-memory recorder for tests,
// and a combinator to fan events out to several sinks.
package telemetry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vicinitylabs/vicinity/pkg/domain"
)

// Merge fans each event out to every non-nil hook set, in order.
func Merge(hooks ...*domain.TelemetryHooks) *domain.TelemetryHooks {
	merged := &domain.TelemetryHooks{}

	merged.OnStepEnter = func(ctx context.Context, ev *domain.StepEvent) {
		for _, h := range hooks {
			if h != nil && h.OnStepEnter != nil {
				h.OnStepEnter(ctx, ev)
			}
		}
	}
	merged.OnStepComplete = func(ctx context.Context, ev *domain.StepEvent) {
		for _, h := range hooks {
			if h != nil && h.OnStepComplete != nil {
				h.OnStepComplete(ctx, ev)
			}
		}
	}
	merged.OnValidationFailure = func(ctx context.Context, ev *domain.ValidationEvent) {
		for _, h := range hooks {
			if h != nil && h.OnValidationFailure != nil {
				h.OnValidationFailure(ctx, ev)
			}
		}
	}
	merged.OnSubmission = func(ctx context.Context, ev *domain.SubmissionEvent) {
		for _, h := range hooks {
			if h != nil && h.OnSubmission != nil {
				h.OnSubmission(ctx, ev)
			}
		}
	}
	merged.OnSubmissionError = func(ctx context.Context, ev *domain.SubmissionEvent) {
		for _, h := range hooks {
			if h != nil && h.OnSubmissionError != nil {
				h.OnSubmissionError(ctx, ev)
			}
		}
	}

	return merged
}

// NewLogHooks emits one structured log line per wizard event.
func NewLogHooks(logger *slog.Logger) *domain.TelemetryHooks {
	return &domain.TelemetryHooks{
		OnStepEnter: func(ctx context.Context, ev *domain.StepEvent) {
			logger.DebugContext(ctx, "wizard step entered",
				"session_id", ev.SessionID,
				"step", ev.Step,
			)
		},
		OnStepComplete: func(ctx context.Context, ev *domain.StepEvent) {
			logger.InfoContext(ctx, "wizard step completed",
				"session_id", ev.SessionID,
				"step", ev.Step,
			)
		},
		OnValidationFailure: func(ctx context.Context, ev *domain.ValidationEvent) {
			logger.InfoContext(ctx, "wizard validation failed",
				"session_id", ev.SessionID,
				"step", ev.Step,
				"fields", ev.Fields,
			)
		},
		OnSubmission: func(ctx context.Context, ev *domain.SubmissionEvent) {
			logger.InfoContext(ctx, "listing submitted",
				"session_id", ev.SessionID,
				"listing_id", ev.ListingID,
				"slug", ev.Slug,
				"duration", ev.Duration,
			)
		},
		OnSubmissionError: func(ctx context.Context, ev *domain.SubmissionEvent) {
			logger.ErrorContext(ctx, "listing submission failed",
				"session_id", ev.SessionID,
				"duration", ev.Duration,
				"err", ev.Err,
			)
		},
	}
}

// Recorder captures events in memory for test assertions.
type Recorder struct {
	mu sync.Mutex

	StepEnters         []domain.StepEvent
	StepCompletes      []domain.StepEvent
	ValidationFailures []domain.ValidationEvent
	Submissions        []domain.SubmissionEvent
	SubmissionErrors   []domain.SubmissionEvent
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Hooks returns a hook set that appends every event to the recorder.
func (r *Recorder) Hooks() *domain.TelemetryHooks {
	return &domain.TelemetryHooks{
		OnStepEnter: func(_ context.Context, ev *domain.StepEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.StepEnters = append(r.StepEnters, *ev)
		},
		OnStepComplete: func(_ context.Context, ev *domain.StepEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.StepCompletes = append(r.StepCompletes, *ev)
		},
		OnValidationFailure: func(_ context.Context, ev *domain.ValidationEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.ValidationFailures = append(r.ValidationFailures, *ev)
		},
		OnSubmission: func(_ context.Context, ev *domain.SubmissionEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.Submissions = append(r.Submissions, *ev)
		},
		OnSubmissionError: func(_ context.Context, ev *domain.SubmissionEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.SubmissionErrors = append(r.SubmissionErrors, *ev)
		},
	}
}

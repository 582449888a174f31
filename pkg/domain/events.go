package domain

import (
	"context"
	"time"
)

// StepEvent describes a wizard step being entered or completed.
type StepEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Step      int       `json:"step"`
}

// ValidationEvent describes a rejected step submission.
type ValidationEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Step      int       `json:"step"`
	Fields    []string  `json:"fields"`
}

// SubmissionEvent describes a final submission attempt.
type SubmissionEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	SessionID string        `json:"session_id"`
	ListingID string        `json:"listing_id,omitempty"`
	Slug      string        `json:"slug,omitempty"`
	Duration  time.Duration `json:"duration"`
	Err       string        `json:"err,omitempty"`
}

// TelemetryHooks defines fire-and-forget observability callbacks. Every field
// is optional; the wizard never depends on a hook's behavior or success, and
// hooks must not affect control flow. Production implementations may log or
// record metrics; test implementations may capture calls for assertions.
type TelemetryHooks struct {
	OnStepEnter         func(context.Context, *StepEvent)
	OnStepComplete      func(context.Context, *StepEvent)
	OnValidationFailure func(context.Context, *ValidationEvent)
	OnSubmission        func(context.Context, *SubmissionEvent)
	OnSubmissionError   func(context.Context, *SubmissionEvent)
}

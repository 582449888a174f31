package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/vicinitylabs/vicinity/internal/logging"
	"github.com/vicinitylabs/vicinity/pkg/domain"
	"github.com/vicinitylabs/vicinity/pkg/schema"
)

// Materializer converts the merged, validated step data into a persisted
// listing. The wizard guarantees the input is complete before calling it.
type Materializer interface {
	Materialize(ctx context.Context, fields map[string]string) (*domain.Listing, error)
}

// Engine is the onboarding state machine. It is pure with respect to
// persistence: every operation takes the session state explicitly, and the
// caller owns loading and saving it. State is defined entirely by which step
// entries exist in the session, not by an explicit cursor.
type Engine struct {
	registry     *schema.Registry
	materializer Materializer
	hooks        domain.TelemetryHooks
	logger       *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithTelemetry registers observability hooks. Hooks are fire-and-forget and
// never influence transitions.
func WithTelemetry(hooks domain.TelemetryHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates a wizard engine over the given step registry. The materializer
// may be nil for read-only uses, in which case SubmitFinal fails.
func New(registry *schema.Registry, materializer Materializer, opts ...Option) *Engine {
	e := &Engine{
		registry:     registry,
		materializer: materializer,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RedirectError signals a recoverable ordering violation: the caller should
// redirect the user to the target step rather than render an error page.
type RedirectError struct {
	Target int
	Notice string
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("redirect to step %d: %s", e.Target, e.Notice)
}

// StepView is the read model for rendering a step form.
type StepView struct {
	Step *schema.StepDefinition `json:"step"`
	// Values pre-fills the form with previously validated data on backward
	// navigation. Empty for a first visit.
	Values   map[string]string `json:"values"`
	Progress int               `json:"progress"`
}

// SubmitOutcome is the result of a step submission. When Errors is non-nil
// the submission was rejected: the caller re-renders the step with the
// messages and the echoed Values, and the session was not mutated.
type SubmitOutcome struct {
	Errors schema.FieldErrors `json:"errors,omitempty"`
	Values map[string]string  `json:"values,omitempty"`

	// NextStep is the step to advance to; 0 when Review is set.
	NextStep int  `json:"next_step,omitempty"`
	Review   bool `json:"review,omitempty"`
	Progress int  `json:"progress"`
}

// ReviewSection pairs a step definition with its submitted values.
type ReviewSection struct {
	Step   *schema.StepDefinition `json:"step"`
	Values map[string]string      `json:"values"`
}

// ReviewView is the read-only merged view of all step data for confirmation.
type ReviewView struct {
	Sections []ReviewSection `json:"sections"`
	Progress int             `json:"progress"`
}

// Confirmation references the listing created by a successful final submission.
type Confirmation struct {
	ListingID string `json:"listing_id"`
	Slug      string `json:"slug"`
}

// EnterStep returns the view for step n without mutating the session.
// Accessing a step whose prerequisites are incomplete returns a
// *RedirectError pointing at the lowest missing step; a step number outside
// the registry's range returns domain.ErrStepNotFound.
func (e *Engine) EnterStep(ctx context.Context, sess *domain.WizardSession, n int) (*StepView, error) {
	step, err := e.registry.Get(n)
	if err != nil {
		return nil, err
	}
	if redirect := e.guardOrdering(sess, n); redirect != nil {
		return nil, redirect
	}

	e.fireStepEnter(ctx, sess, n)

	values, _ := sess.StepData(n)
	if values == nil {
		values = make(map[string]string)
	}
	return &StepView{
		Step:     step,
		Values:   values,
		Progress: sess.Progress,
	}, nil
}

// SubmitStep validates a submission for step n. On success the step's data
// is fully replaced, progress recomputed, and the outcome points at step n+1
// or the review. On validation failure the session is left untouched and the
// outcome carries the per-field messages plus the submitted values for echo.
// A step number outside the registry's range returns domain.ErrStepNotFound,
// regardless of session state.
func (e *Engine) SubmitStep(ctx context.Context, sess *domain.WizardSession, n int, submitted map[string]string) (*SubmitOutcome, error) {
	if _, err := e.registry.Get(n); err != nil {
		return nil, err
	}
	if redirect := e.guardOrdering(sess, n); redirect != nil {
		return nil, redirect
	}

	accepted, fieldErrs, err := e.registry.Validate(n, submitted)
	if err != nil {
		return nil, err
	}
	if fieldErrs != nil {
		e.logger.Debug("step submission rejected",
			"session_id", sess.SessionID,
			"step", n,
			"fields", fieldErrs.Fields(),
		)
		e.fireValidationFailure(ctx, sess, n, fieldErrs)
		return &SubmitOutcome{
			Errors:   fieldErrs,
			Values:   e.registry.Known(n, submitted),
			Progress: sess.Progress,
		}, nil
	}

	sess.SetStep(n, accepted)
	sess.Progress = progressPercent(sess.HighestCompleted(), e.registry.TotalSteps())

	e.logger.Info("step completed",
		"session_id", sess.SessionID,
		"step", n,
		"progress", sess.Progress,
	)
	e.fireStepComplete(ctx, sess, n)

	outcome := &SubmitOutcome{Progress: sess.Progress}
	if n < e.registry.TotalSteps() {
		outcome.NextStep = n + 1
	} else {
		outcome.Review = true
	}
	return outcome, nil
}

// EnterReview returns the merged, read-only view of all step data. All steps
// must be complete; otherwise a *RedirectError targets the lowest missing step.
func (e *Engine) EnterReview(ctx context.Context, sess *domain.WizardSession) (*ReviewView, error) {
	if redirect := e.guardComplete(sess); redirect != nil {
		return nil, redirect
	}

	total := e.registry.TotalSteps()
	sections := make([]ReviewSection, 0, total)
	for n := 1; n <= total; n++ {
		step, err := e.registry.Get(n)
		if err != nil {
			return nil, err
		}
		values, _ := sess.StepData(n)
		sections = append(sections, ReviewSection{Step: step, Values: values})
	}
	return &ReviewView{Sections: sections, Progress: sess.Progress}, nil
}

// SubmitFinal materializes the merged step data into a listing and wipes the
// session. If persistence fails the session is left fully intact so the user
// can retry without losing work.
func (e *Engine) SubmitFinal(ctx context.Context, sess *domain.WizardSession) (*Confirmation, error) {
	if redirect := e.guardComplete(sess); redirect != nil {
		return nil, redirect
	}
	if e.materializer == nil {
		return nil, fmt.Errorf("no materializer configured")
	}

	merged := e.merge(sess)

	start := time.Now()
	listing, err := e.materializer.Materialize(ctx, merged)
	if err != nil {
		// Deliberate policy: losing the user's work on a transient
		// persistence failure is unacceptable, so the session survives.
		e.logger.Error("final submission failed",
			"session_id", sess.SessionID,
			"err", err,
		)
		e.fireSubmissionError(ctx, sess, time.Since(start), err)
		return nil, fmt.Errorf("failed to materialize listing: %w", err)
	}

	sess.Reset()

	e.logger.Info("listing submitted",
		"session_id", sess.SessionID,
		"listing_id", listing.ID,
		"slug", listing.Slug,
	)
	e.fireSubmission(ctx, sess, listing, time.Since(start))

	return &Confirmation{ListingID: listing.ID, Slug: listing.Slug}, nil
}

// TotalSteps exposes the registry's step count for callers building routes
// or views.
func (e *Engine) TotalSteps() int {
	return e.registry.TotalSteps()
}

// guardOrdering checks that all steps before n are complete. Returns a
// redirect to the lowest missing prerequisite.
func (e *Engine) guardOrdering(sess *domain.WizardSession, n int) *RedirectError {
	for k := 1; k < n; k++ {
		if !sess.HasStep(k) {
			return &RedirectError{Target: k, Notice: "complete previous steps first"}
		}
	}
	return nil
}

// guardComplete checks that every step has data.
func (e *Engine) guardComplete(sess *domain.WizardSession) *RedirectError {
	for k := 1; k <= e.registry.TotalSteps(); k++ {
		if !sess.HasStep(k) {
			return &RedirectError{Target: k, Notice: "complete all steps before submitting"}
		}
	}
	return nil
}

// merge builds the disjoint union of all step data in step order.
func (e *Engine) merge(sess *domain.WizardSession) map[string]string {
	merged := make(map[string]string)
	for n := 1; n <= e.registry.TotalSteps(); n++ {
		values, _ := sess.StepData(n)
		for k, v := range values {
			merged[k] = v
		}
	}
	return merged
}

func progressPercent(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// --- Telemetry (fire-and-forget, nil-safe) ---

func (e *Engine) fireStepEnter(ctx context.Context, sess *domain.WizardSession, n int) {
	if e.hooks.OnStepEnter != nil {
		e.hooks.OnStepEnter(ctx, &domain.StepEvent{Timestamp: time.Now(), SessionID: sess.SessionID, Step: n})
	}
}

func (e *Engine) fireStepComplete(ctx context.Context, sess *domain.WizardSession, n int) {
	if e.hooks.OnStepComplete != nil {
		e.hooks.OnStepComplete(ctx, &domain.StepEvent{Timestamp: time.Now(), SessionID: sess.SessionID, Step: n})
	}
}

func (e *Engine) fireValidationFailure(ctx context.Context, sess *domain.WizardSession, n int, errs schema.FieldErrors) {
	if e.hooks.OnValidationFailure != nil {
		e.hooks.OnValidationFailure(ctx, &domain.ValidationEvent{
			Timestamp: time.Now(),
			SessionID: sess.SessionID,
			Step:      n,
			Fields:    errs.Fields(),
		})
	}
}

func (e *Engine) fireSubmission(ctx context.Context, sess *domain.WizardSession, listing *domain.Listing, d time.Duration) {
	if e.hooks.OnSubmission != nil {
		e.hooks.OnSubmission(ctx, &domain.SubmissionEvent{
			Timestamp: time.Now(),
			SessionID: sess.SessionID,
			ListingID: listing.ID,
			Slug:      listing.Slug,
			Duration:  d,
		})
	}
}

func (e *Engine) fireSubmissionError(ctx context.Context, sess *domain.WizardSession, d time.Duration, err error) {
	if e.hooks.OnSubmissionError != nil {
		e.hooks.OnSubmissionError(ctx, &domain.SubmissionEvent{
			Timestamp: time.Now(),
			SessionID: sess.SessionID,
			Duration:  d,
			Err:       err.Error(),
		})
	}
}

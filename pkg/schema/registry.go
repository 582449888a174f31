package schema

import (
	"fmt"

	"github.com/vicinitylabs/vicinity/pkg/domain"
)

// StepDefinition is the static description of one wizard step: which fields
// it collects, which of them are mandatory, and the format rules applied to
// present values. Definitions are immutable after registry construction.
type StepDefinition struct {
	Number   int      `json:"number"`
	Title    string   `json:"title"`
	Required []string `json:"required"`
	Optional []string `json:"optional"`

	// Rules maps field names to format rules, applied only when the field
	// has a value.
	Rules map[string]Rule `json:"-"`
}

// Fields returns all field names the step accepts, required first.
func (d *StepDefinition) Fields() []string {
	fields := make([]string, 0, len(d.Required)+len(d.Optional))
	fields = append(fields, d.Required...)
	fields = append(fields, d.Optional...)
	return fields
}

func (d *StepDefinition) accepts(field string) bool {
	for _, f := range d.Fields() {
		if f == field {
			return true
		}
	}
	return false
}

// Registry is the single source of truth for step schemas. Both server-side
// enforcement and client-facing hints derive from it.
type Registry struct {
	steps []StepDefinition
}

// NewRegistry builds a registry from an ordered list of step definitions.
// Step numbers must be contiguous starting at 1, and no field may be
// required by two different steps.
func NewRegistry(steps ...StepDefinition) (*Registry, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("registry requires at least one step")
	}
	requiredBy := make(map[string]int)
	for i, step := range steps {
		if step.Number != i+1 {
			return nil, fmt.Errorf("step numbers must be contiguous from 1: got %d at position %d", step.Number, i+1)
		}
		for _, field := range step.Required {
			if prev, ok := requiredBy[field]; ok {
				return nil, fmt.Errorf("field %q required by both step %d and step %d", field, prev, step.Number)
			}
			requiredBy[field] = step.Number
		}
	}
	return &Registry{steps: steps}, nil
}

// TotalSteps returns the number of steps in the wizard. All range checks in
// the workflow derive from this value.
func (r *Registry) TotalSteps() int {
	return len(r.steps)
}

// Get returns the definition for step n, or domain.ErrStepNotFound when n is
// outside [1, TotalSteps].
func (r *Registry) Get(n int) (*StepDefinition, error) {
	if n < 1 || n > len(r.steps) {
		return nil, fmt.Errorf("step %d: %w", n, domain.ErrStepNotFound)
	}
	return &r.steps[n-1], nil
}

// Steps returns all definitions in order.
func (r *Registry) Steps() []StepDefinition {
	return r.steps
}

// Validate checks a submission against step n. It returns the accepted
// field values (required fields plus present optional fields) and nil, or
// nil and the full set of per-field messages.
//
// Semantics:
//   - required and missing/empty: "required"
//   - present but failing a format rule: the rule's message
//   - optional and absent/empty: omitted from the result, no error
//   - unknown fields: silently ignored
func (r *Registry) Validate(n int, submitted map[string]string) (map[string]string, FieldErrors, error) {
	step, err := r.Get(n)
	if err != nil {
		return nil, nil, err
	}

	errs := make(FieldErrors)
	accepted := make(map[string]string)

	for _, field := range step.Required {
		value := submitted[field]
		if value == "" {
			errs.Add(field, RequiredMessage)
			continue
		}
		if rule, ok := step.Rules[field]; ok {
			if ruleErr := rule.Validate(value); ruleErr != nil {
				errs.Add(field, ruleErr.Error())
				continue
			}
		}
		accepted[field] = value
	}

	for _, field := range step.Optional {
		value := submitted[field]
		if value == "" {
			continue
		}
		if rule, ok := step.Rules[field]; ok {
			if ruleErr := rule.Validate(value); ruleErr != nil {
				errs.Add(field, ruleErr.Error())
				continue
			}
		}
		accepted[field] = value
	}

	if len(errs) > 0 {
		return nil, errs, nil
	}
	return accepted, nil, nil
}

// Known returns the subset of submitted values the step accepts, without
// validating them. Used to echo submitted values back on failed submissions.
func (r *Registry) Known(n int, submitted map[string]string) map[string]string {
	step, err := r.Get(n)
	if err != nil {
		return nil
	}
	known := make(map[string]string)
	for field, value := range submitted {
		if step.accepts(field) {
			known[field] = value
		}
	}
	return known
}

package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Session persistence keys. These are the only keys the wizard reads or
// writes in the underlying store; other session content is never touched.
const (
	StepKeyPrefix = "onboarding_step_"
	ProgressKey   = "onboarding_progress"
)

// WizardSession is the per-browsing-session state of the onboarding wizard.
// It is created implicitly on first step visit, mutated only by successful
// step submissions, and wiped entirely on final submission.
type WizardSession struct {
	// SessionID is the opaque identifier of the browsing session.
	SessionID string

	// Steps maps step number to the validated field values for that step.
	// An entry for step k exists only if steps 1..k-1 also have entries.
	Steps map[int]map[string]string

	// Progress is the completion percentage (0-100), derived from the
	// highest completed step.
	Progress int
}

// NewWizardSession creates an empty session.
func NewWizardSession(sessionID string) *WizardSession {
	return &WizardSession{
		SessionID: sessionID,
		Steps:     make(map[int]map[string]string),
	}
}

// StepData returns a copy of the stored values for step n.
func (s *WizardSession) StepData(n int) (map[string]string, bool) {
	values, ok := s.Steps[n]
	if !ok {
		return nil, false
	}
	return copyFields(values), true
}

// HasStep reports whether step n has validated data.
func (s *WizardSession) HasStep(n int) bool {
	_, ok := s.Steps[n]
	return ok
}

// SetStep stores the validated values for step n, fully replacing any prior
// entry for that step. Entries for other steps are untouched.
func (s *WizardSession) SetStep(n int, fields map[string]string) {
	if s.Steps == nil {
		s.Steps = make(map[int]map[string]string)
	}
	s.Steps[n] = copyFields(fields)
}

// HighestCompleted returns the highest step number with stored data, or 0.
func (s *WizardSession) HighestCompleted() int {
	highest := 0
	for n := range s.Steps {
		if n > highest {
			highest = n
		}
	}
	return highest
}

// Reset wipes all step data and the progress marker.
func (s *WizardSession) Reset() {
	s.Steps = make(map[int]map[string]string)
	s.Progress = 0
}

// Clone returns a deep copy of the session.
func (s *WizardSession) Clone() *WizardSession {
	clone := NewWizardSession(s.SessionID)
	clone.Progress = s.Progress
	for n, values := range s.Steps {
		clone.Steps[n] = copyFields(values)
	}
	return clone
}

// Snapshot serializes the session to the flat key/value form stores persist:
// "onboarding_step_{n}" holding a JSON object per step, and
// "onboarding_progress" holding the percentage. An empty session yields an
// empty map, so saving a reset session clears every wizard key.
func (s *WizardSession) Snapshot() (map[string]string, error) {
	kv := make(map[string]string, len(s.Steps)+1)
	for n, values := range s.Steps {
		data, err := json.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("failed to encode step %d: %w", n, err)
		}
		kv[StepKeyPrefix+strconv.Itoa(n)] = string(data)
	}
	if len(s.Steps) > 0 {
		kv[ProgressKey] = strconv.Itoa(s.Progress)
	}
	return kv, nil
}

// RestoreSession rebuilds a session from its persisted key/value form.
// Keys outside the wizard contract are ignored.
func RestoreSession(sessionID string, kv map[string]string) (*WizardSession, error) {
	sess := NewWizardSession(sessionID)
	for key, raw := range kv {
		switch {
		case key == ProgressKey:
			progress, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid progress value %q: %w", raw, err)
			}
			sess.Progress = progress
		case strings.HasPrefix(key, StepKeyPrefix):
			n, err := strconv.Atoi(strings.TrimPrefix(key, StepKeyPrefix))
			if err != nil {
				return nil, fmt.Errorf("invalid step key %q: %w", key, err)
			}
			values := make(map[string]string)
			if err := json.Unmarshal([]byte(raw), &values); err != nil {
				return nil, fmt.Errorf("failed to decode step %d: %w", n, err)
			}
			sess.Steps[n] = values
		}
	}
	return sess, nil
}

func copyFields(fields map[string]string) map[string]string {
	cp := make(map[string]string, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return cp
}

// Package wizard implements the multi-step onboarding state machine: step
// ordering guards, validation-gated transitions, progress tracking, and
// final materialization. Operations take the session state explicitly and
// never touch persistence themselves, which keeps the machine testable
// without any web or storage framework.
package wizard

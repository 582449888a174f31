package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrStepNotFound is returned for step numbers outside the registry's range.
// This is a routing/input error, not a workflow error; there is no recovery path.
var ErrStepNotFound = errors.New("step not found")

// ErrListingNotFound is returned when a listing cannot be found in the store.
var ErrListingNotFound = errors.New("listing not found")

// ErrSlugTaken is returned by listing stores when an insert collides with an
// existing slug. The materializer retries with the next numeric suffix.
var ErrSlugTaken = errors.New("slug already taken")

// ErrSlugExhausted is returned when slug generation gives up after the
// configured number of suffix attempts.
var ErrSlugExhausted = errors.New("exhausted slug suffix attempts")

// ErrInvalidTransition is returned when a moderation action is not valid for
// the listing's current status.
var ErrInvalidTransition = errors.New("invalid status transition")

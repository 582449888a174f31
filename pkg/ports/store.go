package ports

import (
	"context"

	"github.com/vicinitylabs/vicinity/pkg/domain"
)

// SessionStore defines the interface for persisting wizard session state.
// Implementations persist the session's Snapshot() key/value form, so the
// wizard contract keys ("onboarding_step_{n}", "onboarding_progress") are
// the only state touched.
type SessionStore interface {
	// Save persists the session. Saving a reset session removes all wizard keys.
	Save(ctx context.Context, sessionID string, sess *domain.WizardSession) error

	// Load retrieves the session for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.WizardSession, error)

	// Delete removes the session for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of active sessions.
	List(ctx context.Context) ([]string, error)
}

// ListingFilter narrows List queries.
type ListingFilter struct {
	// Status restricts to a single lifecycle state; empty matches all.
	Status domain.ListingStatus

	// Query is a case-insensitive substring match on name and description.
	Query string

	// Industry is an exact match on the industry field.
	Industry string

	// FeaturedOnly restricts to featured listings.
	FeaturedOnly bool
}

// ListingStore defines the interface for persisting directory listings.
type ListingStore interface {
	// Insert persists a new listing. Returns domain.ErrSlugTaken when the
	// slug collides with an existing listing; the insert must be atomic
	// (either the full record is persisted or nothing is).
	Insert(ctx context.Context, listing *domain.Listing) error

	// Update replaces a listing's mutable fields (status, flags, timestamps).
	// Returns domain.ErrListingNotFound for unknown IDs.
	Update(ctx context.Context, listing *domain.Listing) error

	// GetByID retrieves a listing by its opaque identifier.
	GetByID(ctx context.Context, id string) (*domain.Listing, error)

	// GetBySlug retrieves a listing by its slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Listing, error)

	// SlugExists reports whether a slug is already in use.
	SlugExists(ctx context.Context, slug string) (bool, error)

	// List returns listings matching the filter, featured first.
	List(ctx context.Context, filter ListingFilter) ([]domain.Listing, error)
}

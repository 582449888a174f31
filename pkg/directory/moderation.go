package directory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vicinitylabs/vicinity/internal/logging"
	"github.com/vicinitylabs/vicinity/pkg/domain"
	"github.com/vicinitylabs/vicinity/pkg/ports"
)

// Moderation implements the admin approval workflow over the listing status
// field. Transitions are guarded: approve and reject are only valid from
// pending, archive only from approved, and the featured/verified flags can
// only be set on approved listings. Invalid actions return
// domain.ErrInvalidTransition, never a panic.
type Moderation struct {
	store  ports.ListingStore
	logger *slog.Logger
	now    func() time.Time
}

// NewModeration creates the moderation service.
func NewModeration(store ports.ListingStore, logger *slog.Logger) *Moderation {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Moderation{store: store, logger: logger, now: time.Now}
}

// Approve moves a pending listing into public view.
func (m *Moderation) Approve(ctx context.Context, id string) (*domain.Listing, error) {
	return m.transition(ctx, id, "approve", domain.StatusApproved, domain.StatusPending)
}

// Reject declines a pending listing.
func (m *Moderation) Reject(ctx context.Context, id string) (*domain.Listing, error) {
	return m.transition(ctx, id, "reject", domain.StatusRejected, domain.StatusPending)
}

// Archive removes an approved listing from public view.
func (m *Moderation) Archive(ctx context.Context, id string) (*domain.Listing, error) {
	return m.transition(ctx, id, "archive", domain.StatusArchived, domain.StatusApproved)
}

// SetFeatured toggles the featured flag on an approved listing.
func (m *Moderation) SetFeatured(ctx context.Context, id string, featured bool) (*domain.Listing, error) {
	return m.setFlag(ctx, id, func(l *domain.Listing) { l.Featured = featured })
}

// SetVerified toggles the verified badge on an approved listing.
func (m *Moderation) SetVerified(ctx context.Context, id string, verified bool) (*domain.Listing, error) {
	return m.setFlag(ctx, id, func(l *domain.Listing) { l.Verified = verified })
}

// Get returns any listing by ID regardless of status, for admin views.
func (m *Moderation) Get(ctx context.Context, id string) (*domain.Listing, error) {
	return m.store.GetByID(ctx, id)
}

// Pending returns the moderation queue.
func (m *Moderation) Pending(ctx context.Context) ([]domain.Listing, error) {
	return m.store.List(ctx, ports.ListingFilter{Status: domain.StatusPending})
}

func (m *Moderation) transition(ctx context.Context, id, action string, to, from domain.ListingStatus) (*domain.Listing, error) {
	listing, err := m.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.Status != from {
		return nil, fmt.Errorf("cannot %s listing in status %q: %w", action, listing.Status, domain.ErrInvalidTransition)
	}

	listing.Status = to
	listing.UpdatedAt = m.now().UTC()
	if err := m.store.Update(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to update listing %s: %w", id, err)
	}

	m.logger.Info("listing moderated",
		"listing_id", id,
		"action", action,
		"status", to,
	)
	return listing, nil
}

func (m *Moderation) setFlag(ctx context.Context, id string, apply func(*domain.Listing)) (*domain.Listing, error) {
	listing, err := m.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.Status != domain.StatusApproved {
		return nil, fmt.Errorf("flags require an approved listing, got %q: %w", listing.Status, domain.ErrInvalidTransition)
	}

	apply(listing)
	listing.UpdatedAt = m.now().UTC()
	if err := m.store.Update(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to update listing %s: %w", id, err)
	}
	return listing, nil
}

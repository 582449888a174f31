package directory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vicinitylabs/vicinity/pkg/adapters/memory"
	"github.com/vicinitylabs/vicinity/pkg/domain"
)

func seedListing(t *testing.T, store *memory.ListingStore, slug string, status domain.ListingStatus) *domain.Listing {
	t.Helper()
	now := time.Now().UTC()
	listing := &domain.Listing{
		ID:        "id-" + slug,
		Slug:      slug,
		Name:      "Biz " + slug,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.Insert(context.Background(), listing))
	return listing
}

func TestModerationApprove(t *testing.T) {
	store := memory.NewListingStore()
	mod := NewModeration(store, nil)
	seedListing(t, store, "pending-biz", domain.StatusPending)

	listing, err := mod.Approve(context.Background(), "id-pending-biz")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, listing.Status)

	// Approving twice is an invalid transition.
	_, err = mod.Approve(context.Background(), "id-pending-biz")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestModerationReject(t *testing.T) {
	store := memory.NewListingStore()
	mod := NewModeration(store, nil)
	seedListing(t, store, "reject-me", domain.StatusPending)

	listing, err := mod.Reject(context.Background(), "id-reject-me")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, listing.Status)

	_, err = mod.Approve(context.Background(), "id-reject-me")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "rejected listings cannot be approved")
}

func TestModerationArchiveRequiresApproved(t *testing.T) {
	store := memory.NewListingStore()
	mod := NewModeration(store, nil)
	seedListing(t, store, "archive-me", domain.StatusPending)

	_, err := mod.Archive(context.Background(), "id-archive-me")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = mod.Approve(context.Background(), "id-archive-me")
	require.NoError(t, err)

	listing, err := mod.Archive(context.Background(), "id-archive-me")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusArchived, listing.Status)
}

func TestModerationFlagsRequireApproved(t *testing.T) {
	store := memory.NewListingStore()
	mod := NewModeration(store, nil)
	seedListing(t, store, "flag-me", domain.StatusPending)

	_, err := mod.SetFeatured(context.Background(), "id-flag-me", true)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = mod.SetVerified(context.Background(), "id-flag-me", true)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = mod.Approve(context.Background(), "id-flag-me")
	require.NoError(t, err)

	listing, err := mod.SetFeatured(context.Background(), "id-flag-me", true)
	require.NoError(t, err)
	assert.True(t, listing.Featured)

	listing, err = mod.SetVerified(context.Background(), "id-flag-me", true)
	require.NoError(t, err)
	assert.True(t, listing.Verified)
}

func TestModerationUnknownListing(t *testing.T) {
	mod := NewModeration(memory.NewListingStore(), nil)

	_, err := mod.Approve(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}

func TestModerationPendingQueue(t *testing.T) {
	store := memory.NewListingStore()
	mod := NewModeration(store, nil)
	seedListing(t, store, "queued-one", domain.StatusPending)
	seedListing(t, store, "queued-two", domain.StatusPending)
	seedListing(t, store, "live-one", domain.StatusApproved)

	queue, err := mod.Pending(context.Background())
	require.NoError(t, err)
	assert.Len(t, queue, 2)
	for _, l := range queue {
		assert.Equal(t, domain.StatusPending, l.Status)
	}
}

func TestServiceHidesNonApproved(t *testing.T) {
	store := memory.NewListingStore()
	svc := NewService(store, nil)
	seedListing(t, store, "hidden-biz", domain.StatusPending)
	seedListing(t, store, "visible-biz", domain.StatusApproved)

	_, err := svc.GetBySlug(context.Background(), "hidden-biz")
	assert.ErrorIs(t, err, domain.ErrListingNotFound)

	listing, err := svc.GetBySlug(context.Background(), "visible-biz")
	require.NoError(t, err)
	assert.Equal(t, "visible-biz", listing.Slug)

	results, err := svc.Search(context.Background(), SearchFilter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "visible-biz", results[0].Slug)
}

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

func completeFields() map[string]string {
	return map[string]string{
		"business_name": "Acme Corp",
		"business_type": "LLC",
		"industry":      "Technology",
		"description":   "We make everything",
		"contact_email": "owner@acme.test",
		"contact_phone": "+1 555 0100",
		"website":       "https://acme.test",
		"address":       "1 Main St",
		"city":          "Springfield",
		"postal_code":   "12345",
	}
}

func TestMaterializeCreatesPendingListing(t *testing.T) {
	store := memory.NewListingStore()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mat := NewMaterializer(store, WithClock(func() time.Time { return fixed }))

	listing, err := mat.Materialize(context.Background(), completeFields())
	require.NoError(t, err)

	assert.NotEmpty(t, listing.ID)
	assert.Equal(t, "acme-corp", listing.Slug)
	assert.Equal(t, domain.StatusPending, listing.Status)
	assert.Equal(t, "Acme Corp", listing.Name)
	assert.Equal(t, "owner@acme.test", listing.ContactEmail)
	assert.Equal(t, "https://acme.test", listing.Website)
	assert.Equal(t, fixed, listing.CreatedAt)
	assert.Equal(t, fixed, listing.UpdatedAt)

	stored, err := store.GetBySlug(context.Background(), "acme-corp")
	require.NoError(t, err)
	assert.Equal(t, listing.ID, stored.ID)
}

func TestMaterializeSlugCollisionAppendsSuffix(t *testing.T) {
	store := memory.NewListingStore()
	mat := NewMaterializer(store)

	first, err := mat.Materialize(context.Background(), completeFields())
	require.NoError(t, err)
	assert.Equal(t, "acme-corp", first.Slug)

	second, err := mat.Materialize(context.Background(), completeFields())
	require.NoError(t, err)
	assert.Equal(t, "acme-corp-2", second.Slug)
	assert.NotEqual(t, first.ID, second.ID)

	third, err := mat.Materialize(context.Background(), completeFields())
	require.NoError(t, err)
	assert.Equal(t, "acme-corp-3", third.Slug)
}

func TestMaterializeSlugExhaustion(t *testing.T) {
	store := memory.NewListingStore()
	mat := NewMaterializer(store, WithSlugAttempts(2))

	_, err := mat.Materialize(context.Background(), completeFields())
	require.NoError(t, err)
	_, err = mat.Materialize(context.Background(), completeFields())
	require.NoError(t, err)

	_, err = mat.Materialize(context.Background(), completeFields())
	assert.ErrorIs(t, err, domain.ErrSlugExhausted)
}

func TestMaterializeRequiresBusinessName(t *testing.T) {
	store := memory.NewListingStore()
	mat := NewMaterializer(store)

	fields := completeFields()
	delete(fields, "business_name")

	_, err := mat.Materialize(context.Background(), fields)
	assert.Error(t, err)
}

// racingStore simulates losing the check-then-insert race: the existence
// check passes but another writer grabs the slug before our insert lands.
type racingStore struct {
	*memory.ListingStore
	stolen bool
}

func (r *racingStore) Insert(ctx context.Context, listing *domain.Listing) error {
	if !r.stolen {
		r.stolen = true
		rival := *listing
		rival.ID = "rival-" + listing.ID
		if err := r.ListingStore.Insert(ctx, &rival); err != nil {
			return err
		}
	}
	return r.ListingStore.Insert(ctx, listing)
}

func TestMaterializeRetriesAfterInsertRace(t *testing.T) {
	store := &racingStore{ListingStore: memory.NewListingStore()}
	mat := NewMaterializer(store)

	listing, err := mat.Materialize(context.Background(), completeFields())
	require.NoError(t, err)
	assert.Equal(t, "acme-corp-2", listing.Slug, "losing the race moves on to the next suffix")
}

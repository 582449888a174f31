package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vicinitylabs/vicinity/pkg/domain"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		sess := domain.NewWizardSession(sessionID)
		sess.SetStep(1, map[string]string{"business_name": "Acme", "industry": "Tech"})
		sess.Progress = 25

		err := store.Save(ctx, sessionID, sess)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sess.Steps, loaded.Steps)
		assert.Equal(t, 25, loaded.Progress)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Save Preserves Later Steps", func(t *testing.T) {
		sess := domain.NewWizardSession(sessionID)
		sess.SetStep(1, map[string]string{"business_name": "Acme"})
		sess.SetStep(2, map[string]string{"contact_email": "a@b.test"})
		require.NoError(t, store.Save(ctx, sessionID, sess))

		// Re-edit step 1; step 2 must survive the round trip.
		sess.SetStep(1, map[string]string{"business_name": "Acme Two"})
		require.NoError(t, store.Save(ctx, sessionID, sess))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "Acme Two", loaded.Steps[1]["business_name"])
		assert.Equal(t, "a@b.test", loaded.Steps[2]["contact_email"])
	})

	t.Run("Save Reset Clears Keys", func(t *testing.T) {
		sess := domain.NewWizardSession(sessionID)
		sess.SetStep(1, map[string]string{"business_name": "Acme"})
		sess.Progress = 25
		require.NoError(t, store.Save(ctx, sessionID, sess))

		sess.Reset()
		require.NoError(t, store.Save(ctx, sessionID, sess))

		loaded, err := store.Load(ctx, sessionID)
		if err != nil {
			// A store may treat an empty session as absent; that satisfies
			// the full-wipe guarantee too.
			assert.ErrorIs(t, err, domain.ErrSessionNotFound)
			return
		}
		assert.Empty(t, loaded.Steps)
		assert.Zero(t, loaded.Progress)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.NewWizardSession(sessionID)))

		err := store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		s1 := domain.NewWizardSession(id1)
		s1.SetStep(1, map[string]string{"business_name": "One"})
		s2 := domain.NewWizardSession(id2)
		s2.SetStep(1, map[string]string{"business_name": "Two"})
		_ = store.Save(ctx, id1, s1)
		_ = store.Save(ctx, id2, s2)

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunListingStoreContract runs a suite of tests to verify that a ListingStore
// implementation adheres to the defined interface contract.
func RunListingStoreContract(t *testing.T, store ListingStore) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	fixture := func(slug string) *domain.Listing {
		return &domain.Listing{
			ID:           "listing-" + slug,
			Slug:         slug,
			Name:         "Acme " + slug,
			BusinessType: "LLC",
			Industry:     "Tech",
			Description:  "We make everything",
			ContactEmail: "owner@acme.test",
			ContactPhone: "+1 555 0100",
			Address:      "1 Main St",
			City:         "Springfield",
			PostalCode:   "12345",
			Status:       domain.StatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}

	t.Run("Insert and Get", func(t *testing.T) {
		listing := fixture("contract-acme")
		require.NoError(t, store.Insert(ctx, listing))

		byID, err := store.GetByID(ctx, listing.ID)
		require.NoError(t, err)
		assert.Equal(t, listing.Slug, byID.Slug)
		assert.Equal(t, domain.StatusPending, byID.Status)

		bySlug, err := store.GetBySlug(ctx, listing.Slug)
		require.NoError(t, err)
		assert.Equal(t, listing.ID, bySlug.ID)
	})

	t.Run("Insert Slug Conflict", func(t *testing.T) {
		first := fixture("contract-dup")
		require.NoError(t, store.Insert(ctx, first))

		second := fixture("contract-dup")
		second.ID = "listing-contract-dup-2"
		err := store.Insert(ctx, second)
		assert.ErrorIs(t, err, domain.ErrSlugTaken)
	})

	t.Run("SlugExists", func(t *testing.T) {
		require.NoError(t, store.Insert(ctx, fixture("contract-exists")))

		exists, err := store.SlugExists(ctx, "contract-exists")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = store.SlugExists(ctx, "contract-absent")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Update", func(t *testing.T) {
		listing := fixture("contract-update")
		require.NoError(t, store.Insert(ctx, listing))

		listing.Status = domain.StatusApproved
		listing.Verified = true
		require.NoError(t, store.Update(ctx, listing))

		loaded, err := store.GetByID(ctx, listing.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusApproved, loaded.Status)
		assert.True(t, loaded.Verified)

		missing := fixture("contract-missing")
		missing.ID = "never-inserted"
		assert.ErrorIs(t, store.Update(ctx, missing), domain.ErrListingNotFound)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.GetByID(ctx, "no-such-id")
		assert.ErrorIs(t, err, domain.ErrListingNotFound)

		_, err = store.GetBySlug(ctx, "no-such-slug")
		assert.ErrorIs(t, err, domain.ErrListingNotFound)
	})

	t.Run("List Filters", func(t *testing.T) {
		approved := fixture("contract-list-approved")
		approved.Status = domain.StatusApproved
		approved.Industry = "Food"
		require.NoError(t, store.Insert(ctx, approved))

		featured := fixture("contract-list-featured")
		featured.Status = domain.StatusApproved
		featured.Featured = true
		require.NoError(t, store.Insert(ctx, featured))

		results, err := store.List(ctx, ListingFilter{Status: domain.StatusApproved})
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.True(t, results[0].Featured, "featured listings sort first")

		results, err = store.List(ctx, ListingFilter{Status: domain.StatusApproved, Industry: "Food"})
		require.NoError(t, err)
		for _, l := range results {
			assert.Equal(t, "Food", l.Industry)
		}

		results, err = store.List(ctx, ListingFilter{Status: domain.StatusApproved, FeaturedOnly: true})
		require.NoError(t, err)
		for _, l := range results {
			assert.True(t, l.Featured)
		}
	})
}

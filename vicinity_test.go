package vicinity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vicinitylabs/vicinity"
	"github.com/vicinitylabs/vicinity/pkg/domain"
	"github.com/vicinitylabs/vicinity/pkg/telemetry"
)

func submitAll(t *testing.T, app *vicinity.App, sess *domain.WizardSession) {
	t.Helper()
	ctx := context.Background()

	steps := []map[string]string{
		{
			"business_name": "Acme Corp",
			"business_type": "LLC",
			"industry":      "Technology",
			"description":   "We make everything",
		},
		{
			"contact_email": "owner@acme.test",
			"contact_phone": "+1 555 0100",
		},
		{
			"address":     "1 Main St",
			"city":        "Springfield",
			"postal_code": "12345",
		},
		{
			"slogan": "We deliver",
		},
	}
	for i, fields := range steps {
		outcome, err := app.Wizard.SubmitStep(ctx, sess, i+1, fields)
		require.NoError(t, err)
		require.Nil(t, outcome.Errors)
	}
}

func TestEndToEndOnboarding(t *testing.T) {
	rec := telemetry.NewRecorder()
	app := vicinity.New(vicinity.WithTelemetryHooks(*rec.Hooks()))
	ctx := context.Background()

	sess := domain.NewWizardSession("e2e-session")
	submitAll(t, app, sess)
	assert.Equal(t, 100, sess.Progress)

	confirmation, err := app.Wizard.SubmitFinal(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, "acme-corp", confirmation.Slug)
	assert.Empty(t, sess.Steps, "session is wiped after submission")

	// New listings await moderation.
	_, err = app.Directory.GetBySlug(ctx, "acme-corp")
	assert.ErrorIs(t, err, domain.ErrListingNotFound)

	approved, err := app.Moderation.Approve(ctx, confirmation.ListingID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, approved.Status)

	listing, err := app.Directory.GetBySlug(ctx, "acme-corp")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", listing.Name)
	assert.Equal(t, "We deliver", listing.Slogan)

	assert.Len(t, rec.StepCompletes, 4)
	assert.Len(t, rec.Submissions, 1)
}

func TestDuplicateNamesGetSuffixedSlugs(t *testing.T) {
	app := vicinity.New()
	ctx := context.Background()

	first := domain.NewWizardSession("dup-1")
	submitAll(t, app, first)
	c1, err := app.Wizard.SubmitFinal(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "acme-corp", c1.Slug)

	second := domain.NewWizardSession("dup-2")
	submitAll(t, app, second)
	c2, err := app.Wizard.SubmitFinal(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, "acme-corp-2", c2.Slug)
}

func TestSessionsPersistThroughManager(t *testing.T) {
	app := vicinity.New()
	ctx := context.Background()

	sess, err := app.Sessions.LoadOrStart(ctx, "persisted")
	require.NoError(t, err)

	_, err = app.Wizard.SubmitStep(ctx, sess, 1, map[string]string{
		"business_name": "Acme Corp",
		"business_type": "LLC",
		"industry":      "Technology",
		"description":   "We make everything",
	})
	require.NoError(t, err)
	require.NoError(t, app.Sessions.Save(ctx, "persisted", sess))

	reloaded, err := app.Sessions.Load(ctx, "persisted")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", reloaded.Steps[1]["business_name"])
	assert.Equal(t, 25, reloaded.Progress)
}

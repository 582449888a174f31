package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vicinitylabs/vicinity/pkg/adapters/redis"
	"github.com/vicinitylabs/vicinity/pkg/domain"
	"github.com/vicinitylabs/vicinity/pkg/ports"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	return mr, backend.NewClient(&backend.Options{Addr: mr.Addr()})
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newTestClient(t)

	store := redis.NewFromClient(client)
	ports.RunSessionStoreContract(t, store)
}

// The hash fields are the wizard contract keys, so any other consumer of the
// session sees the same shape.
func TestRedisStore_HashLayout(t *testing.T) {
	mr, client := newTestClient(t)

	store := redis.NewFromClient(client)
	ctx := context.Background()

	sess := domain.NewWizardSession("layout-session")
	sess.SetStep(1, map[string]string{"business_name": "Acme"})
	sess.SetStep(2, map[string]string{"contact_email": "a@b.test"})
	sess.Progress = 50
	require.NoError(t, store.Save(ctx, "layout-session", sess))

	fields, err := mr.HKeys("vicinity:session:layout-session")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"onboarding_step_1",
		"onboarding_step_2",
		"onboarding_progress",
	}, fields)

	raw := mr.HGet("vicinity:session:layout-session", "onboarding_step_1")
	assert.JSONEq(t, `{"business_name":"Acme"}`, raw)
	assert.Equal(t, "50", mr.HGet("vicinity:session:layout-session", "onboarding_progress"))
}

func TestRedisStore_ResetClearsStepKeys(t *testing.T) {
	mr, client := newTestClient(t)

	store := redis.NewFromClient(client)
	ctx := context.Background()

	sess := domain.NewWizardSession("reset-session")
	sess.SetStep(1, map[string]string{"business_name": "Acme"})
	sess.Progress = 25
	require.NoError(t, store.Save(ctx, "reset-session", sess))

	sess.Reset()
	require.NoError(t, store.Save(ctx, "reset-session", sess))

	assert.False(t, mr.Exists("vicinity:session:reset-session"),
		"reset save must wipe every wizard key")
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newTestClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	sessionID := "session-ttl"

	sess := domain.NewWizardSession(sessionID)
	sess.SetStep(1, map[string]string{"business_name": "Acme"})
	require.NoError(t, store.Save(ctx, sessionID, sess))

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, sessions, sessionID)

	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, sessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// Lazy index cleanup keys off time.Now(), so wait past the TTL in real
	// time before expecting the pruned list.
	time.Sleep(1200 * time.Millisecond)

	sessions, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newTestClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	sess := domain.NewWizardSession("my-session")
	sess.SetStep(1, map[string]string{"business_name": "Acme"})
	require.NoError(t, store.Save(ctx, "my-session", sess))

	assert.True(t, mr.Exists("custom:app:my-session"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, list, "my-session")
}

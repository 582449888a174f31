package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vicinitylabs/vicinity/internal/logging"
	"github.com/vicinitylabs/vicinity/pkg/domain"
	"github.com/vicinitylabs/vicinity/pkg/ports"
	"github.com/vicinitylabs/vicinity/pkg/schema"
)

// DefaultSlugAttempts caps the suffix retry loop. The collision retry has no
// natural bound, so materialization gives up after this many candidates and
// reports domain.ErrSlugExhausted instead of looping under a pathological
// collision storm.
const DefaultSlugAttempts = 1000

// Materializer turns the merged onboarding fields into a persisted listing.
type Materializer struct {
	store    ports.ListingStore
	attempts int
	logger   *slog.Logger
	now      func() time.Time
}

// MaterializerOption configures the Materializer.
type MaterializerOption func(*Materializer)

// WithSlugAttempts overrides the suffix retry cap.
func WithSlugAttempts(n int) MaterializerOption {
	return func(m *Materializer) {
		if n > 0 {
			m.attempts = n
		}
	}
}

// WithMaterializerLogger sets the logger.
func WithMaterializerLogger(logger *slog.Logger) MaterializerOption {
	return func(m *Materializer) {
		m.logger = logger
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) MaterializerOption {
	return func(m *Materializer) {
		m.now = now
	}
}

// NewMaterializer creates a Materializer backed by the given store.
func NewMaterializer(store ports.ListingStore, opts ...MaterializerOption) *Materializer {
	m := &Materializer{
		store:    store,
		attempts: DefaultSlugAttempts,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Materialize builds the complete listing from the merged step data and
// persists it in a single insert. The slug derives from the business name;
// collisions append a numeric suffix starting at 2 ("acme", "acme-2", ...).
// The insert itself is the atomicity boundary: either the full record lands
// or nothing does.
func (m *Materializer) Materialize(ctx context.Context, fields map[string]string) (*domain.Listing, error) {
	var listing domain.Listing
	if err := schema.Decode(fields, &listing); err != nil {
		return nil, fmt.Errorf("failed to decode listing fields: %w", err)
	}
	if listing.Name == "" {
		return nil, fmt.Errorf("business_name is required to materialize a listing")
	}

	now := m.now().UTC()
	listing.ID = uuid.NewString()
	listing.Status = domain.StatusPending
	listing.CreatedAt = now
	listing.UpdatedAt = now

	base := Slugify(listing.Name)
	for i := 0; i < m.attempts; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d", base, i+1)
		}

		exists, err := m.store.SlugExists(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("failed to check slug %q: %w", candidate, err)
		}
		if exists {
			continue
		}

		listing.Slug = candidate
		err = m.store.Insert(ctx, &listing)
		if errors.Is(err, domain.ErrSlugTaken) {
			// Lost the check-then-insert race to a concurrent submission
			// with the same name; try the next suffix.
			m.logger.Debug("slug taken after existence check, retrying",
				"slug", candidate,
			)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to insert listing: %w", err)
		}
		return &listing, nil
	}

	m.logger.Warn("slug generation exhausted",
		"base", base,
		"attempts", m.attempts,
	)
	return nil, fmt.Errorf("slug %q: %w", base, domain.ErrSlugExhausted)
}

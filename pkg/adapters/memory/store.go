// Package memory provides in-memory store implementations, suitable for
// tests and single-process deployments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/vicinitylabs/vicinity/pkg/domain"
	"github.com/vicinitylabs/vicinity/pkg/ports"
)

// SessionStore is an in-memory implementation of ports.SessionStore. It
// persists each session's key/value snapshot, mirroring what the redis
// adapter stores in a hash.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]string
}

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]map[string]string)}
}

// Save persists the session's snapshot under its ID.
func (s *SessionStore) Save(ctx context.Context, sessionID string, sess *domain.WizardSession) error {
	kv, err := sess.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to snapshot session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = kv
	return nil
}

// Load restores a session from its stored snapshot.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*domain.WizardSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	kv, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %q: %w", sessionID, domain.ErrSessionNotFound)
	}
	return domain.RestoreSession(sessionID, kv)
}

// Delete removes the session.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// List returns the IDs of all stored sessions.
func (s *SessionStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// ListingStore is an in-memory implementation of ports.ListingStore.
type ListingStore struct {
	mu     sync.RWMutex
	byID   map[string]*domain.Listing
	bySlug map[string]string // slug -> id
}

// NewListingStore creates an empty in-memory listing store.
func NewListingStore() *ListingStore {
	return &ListingStore{
		byID:   make(map[string]*domain.Listing),
		bySlug: make(map[string]string),
	}
}

// Insert persists a new listing, enforcing slug uniqueness.
func (s *ListingStore) Insert(ctx context.Context, listing *domain.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.bySlug[listing.Slug]; taken {
		return fmt.Errorf("slug %q: %w", listing.Slug, domain.ErrSlugTaken)
	}

	cp := *listing
	s.byID[cp.ID] = &cp
	s.bySlug[cp.Slug] = cp.ID
	return nil
}

// Update replaces a stored listing.
func (s *ListingStore) Update(ctx context.Context, listing *domain.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.byID[listing.ID]
	if !ok {
		return fmt.Errorf("listing %q: %w", listing.ID, domain.ErrListingNotFound)
	}

	cp := *listing
	if prev.Slug != cp.Slug {
		delete(s.bySlug, prev.Slug)
		s.bySlug[cp.Slug] = cp.ID
	}
	s.byID[cp.ID] = &cp
	return nil
}

// GetByID retrieves a listing by ID.
func (s *ListingStore) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listing, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("listing %q: %w", id, domain.ErrListingNotFound)
	}
	cp := *listing
	return &cp, nil
}

// GetBySlug retrieves a listing by slug.
func (s *ListingStore) GetBySlug(ctx context.Context, slug string) (*domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.bySlug[slug]
	if !ok {
		return nil, fmt.Errorf("listing slug %q: %w", slug, domain.ErrListingNotFound)
	}
	cp := *s.byID[id]
	return &cp, nil
}

// SlugExists reports whether a slug is in use.
func (s *ListingStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.bySlug[slug]
	return ok, nil
}

// List returns listings matching the filter, featured first and then by
// creation time (newest first).
func (s *ListingStore) List(ctx context.Context, filter ports.ListingFilter) ([]domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]domain.Listing, 0)
	for _, listing := range s.byID {
		if !matches(listing, filter) {
			continue
		}
		results = append(results, *listing)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Featured != results[j].Featured {
			return results[i].Featured
		}
		if !results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].CreatedAt.After(results[j].CreatedAt)
		}
		return results[i].Slug < results[j].Slug
	})
	return results, nil
}

func matches(listing *domain.Listing, filter ports.ListingFilter) bool {
	if filter.Status != "" && listing.Status != filter.Status {
		return false
	}
	if filter.Industry != "" && listing.Industry != filter.Industry {
		return false
	}
	if filter.FeaturedOnly && !listing.Featured {
		return false
	}
	if filter.Query != "" {
		q := strings.ToLower(filter.Query)
		if !strings.Contains(strings.ToLower(listing.Name), q) &&
			!strings.Contains(strings.ToLower(listing.Description), q) {
			return false
		}
	}
	return true
}

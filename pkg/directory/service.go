package directory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vicinitylabs/vicinity/internal/logging"
	"github.com/vicinitylabs/vicinity/pkg/domain"
	"github.com/vicinitylabs/vicinity/pkg/ports"
)

// Service is the public read surface of the directory. Only approved
// listings are visible through it; pending, rejected and archived records
// behave as if they do not exist.
type Service struct {
	store  ports.ListingStore
	logger *slog.Logger
}

// NewService creates the public directory service.
func NewService(store ports.ListingStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// GetBySlug returns an approved listing by slug, or domain.ErrListingNotFound.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*domain.Listing, error) {
	listing, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if listing.Status != domain.StatusApproved {
		return nil, fmt.Errorf("listing %q not public: %w", slug, domain.ErrListingNotFound)
	}
	return listing, nil
}

// SearchFilter narrows a public search.
type SearchFilter struct {
	Query        string
	Industry     string
	FeaturedOnly bool
}

// Search returns approved listings matching the filter, featured first.
func (s *Service) Search(ctx context.Context, filter SearchFilter) ([]domain.Listing, error) {
	results, err := s.store.List(ctx, ports.ListingFilter{
		Status:       domain.StatusApproved,
		Query:        filter.Query,
		Industry:     filter.Industry,
		FeaturedOnly: filter.FeaturedOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	return results, nil
}

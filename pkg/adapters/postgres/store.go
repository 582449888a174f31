// Package postgres provides a PostgreSQL-backed listing store.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/vicinitylabs/vicinity/pkg/domain"
	"github.com/vicinitylabs/vicinity/pkg/ports"
)

// uniqueViolation is the PostgreSQL error code for unique constraint hits.
const uniqueViolation = "23505"

const listingColumns = `id, slug, name, business_type, industry, description,
	contact_email, contact_phone, website, address, city, region, postal_code,
	country, opening_hours, tags, logo_url, year_founded, slogan,
	status, featured, verified, created_at, updated_at`

// Store implements ports.ListingStore backed by PostgreSQL. Slug uniqueness
// is enforced by the database, so the check-then-insert race in slug
// generation resolves safely under concurrent submissions.
type Store struct {
	db *sql.DB
}

var _ ports.ListingStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return New(db), nil
}

// DB exposes the underlying handle, for migrations.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert persists a new listing in a single statement; the unique index on
// slug makes the write the atomicity boundary.
func (s *Store) Insert(ctx context.Context, listing *domain.Listing) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO listings (`+listingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
	`,
		listing.ID, listing.Slug, listing.Name, listing.BusinessType,
		listing.Industry, listing.Description, listing.ContactEmail,
		listing.ContactPhone, listing.Website, listing.Address, listing.City,
		listing.Region, listing.PostalCode, listing.Country,
		listing.OpeningHours, listing.Tags, listing.LogoURL,
		listing.YearFounded, listing.Slogan, string(listing.Status),
		listing.Featured, listing.Verified, listing.CreatedAt,
		listing.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("slug %q: %w", listing.Slug, domain.ErrSlugTaken)
		}
		return fmt.Errorf("failed to insert listing: %w", err)
	}
	return nil
}

// Update replaces a listing's mutable fields.
func (s *Store) Update(ctx context.Context, listing *domain.Listing) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE listings
		SET status = $2, featured = $3, verified = $4, updated_at = $5
		WHERE id = $1
	`, listing.ID, string(listing.Status), listing.Featured, listing.Verified,
		listing.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("listing %q: %w", listing.ID, domain.ErrListingNotFound)
	}
	return nil
}

// GetByID retrieves a listing by its identifier.
func (s *Store) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+listingColumns+`
		FROM listings
		WHERE id = $1
	`, id)
	return scanListing(row, id)
}

// GetBySlug retrieves a listing by its slug.
func (s *Store) GetBySlug(ctx context.Context, slug string) (*domain.Listing, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+listingColumns+`
		FROM listings
		WHERE slug = $1
	`, slug)
	return scanListing(row, slug)
}

// SlugExists reports whether a slug is already in use.
func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM listings WHERE slug = $1)`, slug,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

// List returns listings matching the filter, featured first then newest.
func (s *Store) List(ctx context.Context, filter ports.ListingFilter) ([]domain.Listing, error) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		where = append(where, "status = "+arg(string(filter.Status)))
	}
	if filter.Industry != "" {
		where = append(where, "industry = "+arg(filter.Industry))
	}
	if filter.FeaturedOnly {
		where = append(where, "featured")
	}
	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		where = append(where, "(name ILIKE "+arg(pattern)+" OR description ILIKE "+arg(pattern)+")")
	}

	query := `SELECT ` + listingColumns + ` FROM listings`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY featured DESC, created_at DESC, slug"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	defer rows.Close()

	var results []domain.Listing
	for rows.Next() {
		var listing domain.Listing
		var status string
		if err := rows.Scan(
			&listing.ID, &listing.Slug, &listing.Name, &listing.BusinessType,
			&listing.Industry, &listing.Description, &listing.ContactEmail,
			&listing.ContactPhone, &listing.Website, &listing.Address,
			&listing.City, &listing.Region, &listing.PostalCode,
			&listing.Country, &listing.OpeningHours, &listing.Tags,
			&listing.LogoURL, &listing.YearFounded, &listing.Slogan,
			&status, &listing.Featured, &listing.Verified,
			&listing.CreatedAt, &listing.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listing.Status = domain.ListingStatus(status)
		results = append(results, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate listings: %w", err)
	}
	return results, nil
}

func scanListing(row *sql.Row, ref string) (*domain.Listing, error) {
	var listing domain.Listing
	var status string
	err := row.Scan(
		&listing.ID, &listing.Slug, &listing.Name, &listing.BusinessType,
		&listing.Industry, &listing.Description, &listing.ContactEmail,
		&listing.ContactPhone, &listing.Website, &listing.Address,
		&listing.City, &listing.Region, &listing.PostalCode, &listing.Country,
		&listing.OpeningHours, &listing.Tags, &listing.LogoURL,
		&listing.YearFounded, &listing.Slogan, &status, &listing.Featured,
		&listing.Verified, &listing.CreatedAt, &listing.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("listing %q: %w", ref, domain.ErrListingNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan listing: %w", err)
	}
	listing.Status = domain.ListingStatus(status)
	return &listing, nil
}

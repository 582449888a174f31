package domain

import "time"

// ListingStatus is the moderation lifecycle state of a listing.
type ListingStatus string

const (
	// StatusPending is the initial state of every materialized listing.
	// Pending listings are invisible in public reads.
	StatusPending ListingStatus = "pending"

	// StatusApproved makes the listing publicly visible.
	StatusApproved ListingStatus = "approved"

	// StatusRejected is terminal for moderation purposes.
	StatusRejected ListingStatus = "rejected"

	// StatusArchived removes a previously approved listing from public view.
	StatusArchived ListingStatus = "archived"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s ListingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusArchived:
		return true
	}
	return false
}

// Listing is a business directory record. The mapstructure tags bind the
// onboarding field names collected by the wizard; materialization decodes the
// merged step data directly into this struct.
type Listing struct {
	ID   string `json:"id" mapstructure:"-"`
	Slug string `json:"slug" mapstructure:"-"`

	// Step 1: basics
	Name         string `json:"business_name" mapstructure:"business_name"`
	BusinessType string `json:"business_type" mapstructure:"business_type"`
	Industry     string `json:"industry" mapstructure:"industry"`
	Description  string `json:"description" mapstructure:"description"`

	// Step 2: contact
	ContactEmail string `json:"contact_email" mapstructure:"contact_email"`
	ContactPhone string `json:"contact_phone" mapstructure:"contact_phone"`
	Website      string `json:"website,omitempty" mapstructure:"website"`

	// Step 3: location
	Address    string `json:"address" mapstructure:"address"`
	City       string `json:"city" mapstructure:"city"`
	Region     string `json:"region,omitempty" mapstructure:"region"`
	PostalCode string `json:"postal_code" mapstructure:"postal_code"`
	Country    string `json:"country,omitempty" mapstructure:"country"`

	// Step 4: profile extras
	OpeningHours string `json:"opening_hours,omitempty" mapstructure:"opening_hours"`
	Tags         string `json:"tags,omitempty" mapstructure:"tags"`
	LogoURL      string `json:"logo_url,omitempty" mapstructure:"logo_url"`
	YearFounded  string `json:"year_founded,omitempty" mapstructure:"year_founded"`
	Slogan       string `json:"slogan,omitempty" mapstructure:"slogan"`

	Status   ListingStatus `json:"status" mapstructure:"-"`
	Featured bool          `json:"featured" mapstructure:"-"`
	Verified bool          `json:"verified" mapstructure:"-"`

	CreatedAt time.Time `json:"created_at" mapstructure:"-"`
	UpdatedAt time.Time `json:"updated_at" mapstructure:"-"`
}

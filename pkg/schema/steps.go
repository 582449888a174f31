package schema

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Onboarding field names. The union across all steps equals the field set of
// a complete listing record.
const (
	FieldBusinessName = "business_name"
	FieldBusinessType = "business_type"
	FieldIndustry     = "industry"
	FieldDescription  = "description"

	FieldContactEmail = "contact_email"
	FieldContactPhone = "contact_phone"
	FieldWebsite      = "website"

	FieldAddress    = "address"
	FieldCity       = "city"
	FieldRegion     = "region"
	FieldPostalCode = "postal_code"
	FieldCountry    = "country"

	FieldOpeningHours = "opening_hours"
	FieldTags         = "tags"
	FieldLogoURL      = "logo_url"
	FieldYearFounded  = "year_founded"
	FieldSlogan       = "slogan"
)

// Default returns the business onboarding registry: four steps covering
// basics, contact, location, and profile extras.
func Default() *Registry {
	registry, err := NewRegistry(
		StepDefinition{
			Number:   1,
			Title:    "Business basics",
			Required: []string{FieldBusinessName, FieldBusinessType, FieldIndustry, FieldDescription},
			Rules: map[string]Rule{
				FieldBusinessName: MaxLen(120),
				FieldBusinessType: MaxLen(60),
				FieldIndustry:     MaxLen(60),
				FieldDescription:  MaxLen(2000),
			},
		},
		StepDefinition{
			Number:   2,
			Title:    "Contact details",
			Required: []string{FieldContactEmail, FieldContactPhone},
			Optional: []string{FieldWebsite},
			Rules: map[string]Rule{
				FieldContactEmail: Email(),
				FieldContactPhone: MaxLen(32),
				FieldWebsite:      URL(),
			},
		},
		StepDefinition{
			Number:   3,
			Title:    "Location",
			Required: []string{FieldAddress, FieldCity, FieldPostalCode},
			Optional: []string{FieldRegion, FieldCountry},
			Rules: map[string]Rule{
				FieldAddress:    MaxLen(200),
				FieldCity:       MaxLen(80),
				FieldPostalCode: MaxLen(16),
				FieldRegion:     MaxLen(80),
				FieldCountry:    MaxLen(80),
			},
		},
		StepDefinition{
			Number:   4,
			Title:    "Profile extras",
			Optional: []string{FieldOpeningHours, FieldTags, FieldLogoURL, FieldYearFounded, FieldSlogan},
			Rules: map[string]Rule{
				FieldOpeningHours: MaxLen(200),
				FieldTags:         MaxLen(200),
				FieldLogoURL:      URL(),
				FieldYearFounded:  Rules(Numeric(), MaxLen(4)),
				FieldSlogan:       MaxLen(140),
			},
		},
	)
	if err != nil {
		// The default registry is defined above; a construction failure is a
		// programming error.
		panic(err)
	}
	return registry
}

// Decode binds a validated field map onto a typed record using its
// mapstructure tags. Unknown keys are rejected so the record's tags stay in
// lockstep with the registry definitions.
func Decode(fields map[string]string, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := decoder.Decode(fields); err != nil {
		return fmt.Errorf("failed to decode fields: %w", err)
	}
	return nil
}

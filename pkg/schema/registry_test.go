package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vicinitylabs/vicinity/pkg/domain"
	"github.com/vicinitylabs/vicinity/pkg/schema"
)

func TestGetOutOfRange(t *testing.T) {
	r := schema.Default()

	for _, n := range []int{0, -1, r.TotalSteps() + 1, 99} {
		_, err := r.Get(n)
		assert.ErrorIs(t, err, domain.ErrStepNotFound, "step %d", n)
	}

	step, err := r.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 1, step.Number)
	assert.Equal(t, "Business basics", step.Title)
}

func TestNewRegistryRejectsGaps(t *testing.T) {
	_, err := schema.NewRegistry(
		schema.StepDefinition{Number: 1, Required: []string{"a"}},
		schema.StepDefinition{Number: 3, Required: []string{"b"}},
	)
	assert.Error(t, err)
}

func TestNewRegistryRejectsDuplicateRequiredFields(t *testing.T) {
	_, err := schema.NewRegistry(
		schema.StepDefinition{Number: 1, Required: []string{"name"}},
		schema.StepDefinition{Number: 2, Required: []string{"name"}},
	)
	assert.Error(t, err)
}

func TestDefaultRequiredFieldsDisjoint(t *testing.T) {
	r := schema.Default()
	seen := make(map[string]int)
	for _, step := range r.Steps() {
		for _, field := range step.Required {
			prev, dup := seen[field]
			assert.False(t, dup, "field %q required by steps %d and %d", field, prev, step.Number)
			seen[field] = step.Number
		}
	}
}

func TestValidateRequiredMissing(t *testing.T) {
	r := schema.Default()

	// An empty required field alongside otherwise valid ones fails alone.
	accepted, errs, err := r.Validate(1, map[string]string{
		"business_name": "",
		"industry":      "Tech",
		"business_type": "LLC",
		"description":   "x",
	})
	require.NoError(t, err)
	assert.Nil(t, accepted)
	require.NotNil(t, errs)
	assert.Equal(t, []string{"required"}, errs["business_name"])
	assert.NotContains(t, errs, "industry")
}

func TestValidateReportsAllFailuresTogether(t *testing.T) {
	r := schema.Default()

	_, errs, err := r.Validate(2, map[string]string{
		"contact_email": "not-an-email",
		"website":       "ftp://nope",
	})
	require.NoError(t, err)
	require.NotNil(t, errs)
	assert.Equal(t, []string{"contact_email", "contact_phone", "website"}, errs.Fields())
}

func TestValidateFormatRules(t *testing.T) {
	r := schema.Default()

	tests := []struct {
		name      string
		submitted map[string]string
		wantField string
	}{
		{"bad email", map[string]string{"contact_email": "nope", "contact_phone": "555"}, "contact_email"},
		{"bad url", map[string]string{"contact_email": "a@b.test", "contact_phone": "555", "website": "not a url"}, "website"},
		{"relative url", map[string]string{"contact_email": "a@b.test", "contact_phone": "555", "website": "/just/a/path"}, "website"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, errs, err := r.Validate(2, tc.submitted)
			require.NoError(t, err)
			require.NotNil(t, errs)
			assert.Contains(t, errs, tc.wantField)
		})
	}
}

func TestValidateOptionalAbsent(t *testing.T) {
	r := schema.Default()

	accepted, errs, err := r.Validate(2, map[string]string{
		"contact_email": "owner@acme.test",
		"contact_phone": "+1 555 0100",
	})
	require.NoError(t, err)
	require.Nil(t, errs)
	assert.NotContains(t, accepted, "website")
}

func TestValidateIgnoresUnknownFields(t *testing.T) {
	r := schema.Default()

	accepted, errs, err := r.Validate(1, map[string]string{
		"business_name": "Acme Corp",
		"business_type": "LLC",
		"industry":      "Tech",
		"description":   "We make everything",
		"hacker_field":  "<script>",
	})
	require.NoError(t, err)
	require.Nil(t, errs)
	assert.NotContains(t, accepted, "hacker_field")
	assert.Equal(t, "Acme Corp", accepted["business_name"])
}

func TestValidateUnknownStep(t *testing.T) {
	r := schema.Default()
	_, _, err := r.Validate(9, map[string]string{})
	assert.ErrorIs(t, err, domain.ErrStepNotFound)
}

func TestKnownEchoesSubmittedValues(t *testing.T) {
	r := schema.Default()

	known := r.Known(2, map[string]string{
		"contact_email": "broken",
		"junk":          "dropped",
	})
	assert.Equal(t, map[string]string{"contact_email": "broken"}, known)
}

func TestDecodeTypedRecord(t *testing.T) {
	type basics struct {
		BusinessName string `mapstructure:"business_name"`
		BusinessType string `mapstructure:"business_type"`
		Industry     string `mapstructure:"industry"`
		Description  string `mapstructure:"description"`
	}

	accepted, errs, err := schema.Default().Validate(1, map[string]string{
		"business_name": "Acme Corp",
		"business_type": "LLC",
		"industry":      "Tech",
		"description":   "We make everything",
	})
	require.NoError(t, err)
	require.Nil(t, errs)

	var form basics
	require.NoError(t, schema.Decode(accepted, &form))
	assert.Equal(t, "Acme Corp", form.BusinessName)
	assert.Equal(t, "LLC", form.BusinessType)
}

func TestDecodeRejectsUntaggedKeys(t *testing.T) {
	// A key with no matching tag means the record drifted from the registry.
	type partial struct {
		BusinessName string `mapstructure:"business_name"`
	}

	var form partial
	err := schema.Decode(map[string]string{
		"business_name": "Acme Corp",
		"industry":      "Tech",
	}, &form)
	assert.Error(t, err)
}

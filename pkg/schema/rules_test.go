package schema_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vicinitylabs/vicinity/pkg/schema"
)

func TestEmailRule(t *testing.T) {
	rule := schema.Email()
	assert.NoError(t, rule.Validate("owner@acme.test"))
	assert.NoError(t, rule.Validate("Owner <owner@acme.test>"))
	assert.Error(t, rule.Validate("not-an-email"))
	assert.Error(t, rule.Validate("@acme.test"))
}

func TestURLRule(t *testing.T) {
	rule := schema.URL()
	assert.NoError(t, rule.Validate("https://acme.test"))
	assert.NoError(t, rule.Validate("http://acme.test/path"))
	assert.Error(t, rule.Validate("ftp://acme.test"))
	assert.Error(t, rule.Validate("acme.test"))
	assert.Error(t, rule.Validate("not a url"))
}

func TestMaxLenRule(t *testing.T) {
	rule := schema.MaxLen(5)
	assert.NoError(t, rule.Validate("12345"))
	assert.Error(t, rule.Validate("123456"))
	// Length counts runes, not bytes.
	assert.NoError(t, rule.Validate("café!"))
}

func TestNumericRule(t *testing.T) {
	rule := schema.Numeric()
	assert.NoError(t, rule.Validate("1998"))
	assert.Error(t, rule.Validate("199x"))
	assert.Error(t, rule.Validate("-1"))
}

func TestRuleChainStopsAtFirstFailure(t *testing.T) {
	rule := schema.Rules(schema.Numeric(), schema.MaxLen(4))
	assert.NoError(t, rule.Validate("1998"))

	err := rule.Validate("abcdef")
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "digits"))

	assert.Error(t, rule.Validate("19981"))
}

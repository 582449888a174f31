package schema

import (
	"fmt"
	"net/mail"
	"net/url"
)

// Rule defines the contract for field format validation. Rules are applied
// only when a value is present; presence itself is enforced by the step's
// required field set.
type Rule interface {
	// Name returns the machine-readable name of the rule (e.g. "email").
	Name() string
	// Validate checks a non-empty value against the rule.
	Validate(value string) error
}

// --- Built-in Rule Implementations ---

// EmailRule validates email-shaped values.
type EmailRule struct{}

func (r *EmailRule) Name() string { return "email" }

func (r *EmailRule) Validate(value string) error {
	if _, err := mail.ParseAddress(value); err != nil {
		return fmt.Errorf("must be a valid email address")
	}
	return nil
}

// URLRule validates absolute http(s) URLs.
type URLRule struct{}

func (r *URLRule) Name() string { return "url" }

func (r *URLRule) Validate(value string) error {
	u, err := url.Parse(value)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("must be a valid http(s) URL")
	}
	return nil
}

// MaxLenRule bounds the value length in runes.
type MaxLenRule struct {
	limit int
}

func (r *MaxLenRule) Name() string { return fmt.Sprintf("max:%d", r.limit) }

func (r *MaxLenRule) Validate(value string) error {
	if len([]rune(value)) > r.limit {
		return fmt.Errorf("must be at most %d characters", r.limit)
	}
	return nil
}

// NumericRule accepts decimal digits only.
type NumericRule struct{}

func (r *NumericRule) Name() string { return "numeric" }

func (r *NumericRule) Validate(value string) error {
	for _, c := range value {
		if c < '0' || c > '9' {
			return fmt.Errorf("must contain only digits")
		}
	}
	return nil
}

// --- Factory Functions ---

// Email creates an email format rule.
func Email() Rule { return &EmailRule{} }

// URL creates an http(s) URL format rule.
func URL() Rule { return &URLRule{} }

// MaxLen creates a maximum length rule.
func MaxLen(limit int) Rule { return &MaxLenRule{limit: limit} }

// Numeric creates a digits-only rule.
func Numeric() Rule { return &NumericRule{} }

// Rules combines several rules; validation stops at the first failure so a
// field reports one format message at a time.
func Rules(rules ...Rule) Rule { return &ruleChain{rules: rules} }

type ruleChain struct {
	rules []Rule
}

func (r *ruleChain) Name() string {
	names := ""
	for i, rule := range r.rules {
		if i > 0 {
			names += ","
		}
		names += rule.Name()
	}
	return names
}

func (r *ruleChain) Validate(value string) error {
	for _, rule := range r.rules {
		if err := rule.Validate(value); err != nil {
			return err
		}
	}
	return nil
}

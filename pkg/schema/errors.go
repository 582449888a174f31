package schema

import (
	"fmt"
	"sort"
	"strings"
)

// RequiredMessage is the message reported for a required field that is
// missing or empty.
const RequiredMessage = "required"

// FieldErrors maps field names to one or more validation messages. All
// failing fields of a submission are reported together, never fail-fast.
type FieldErrors map[string][]string

// Add appends a message for a field.
func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

// Fields returns the failing field names in sorted order.
func (fe FieldErrors) Fields() []string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

func (fe FieldErrors) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d invalid field(s):", len(fe))
	for _, field := range fe.Fields() {
		fmt.Fprintf(&b, " %s (%s)", field, strings.Join(fe[field], "; "))
	}
	return b.String()
}

// Package schema is the step schema registry: the single source of truth
// for which fields each onboarding step collects, which are required, and
// how present values are validated. The wizard, the HTTP surface, and the
// CLI all derive their view of the steps from this package.
package schema

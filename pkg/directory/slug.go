package directory

import "strings"

// Slugify derives a URL-safe identifier from a human-readable name:
// lowercase, alphanumeric runs joined by single hyphens. Falls back to
// "listing" when nothing usable remains.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "listing"
	}
	return slug
}

// Package normalize holds the canonical forms used for storage and comparisons.
package normalize

import "strings"

// Email returns a normalized form of an email address suitable for
// storage and comparisons. Normalization currently trims surrounding
// whitespace and lower-cases the address.
func Email(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// Phone strips everything but ASCII digits, which is the form wa.me expects.
func Phone(p string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, p)
}

// ID trims whitespace and lower-cases a hex object id.
func ID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// HasDomain reports whether the normalized email ends with suffix
// (compared case-insensitively). An empty suffix accepts everything.
func HasDomain(email, suffix string) bool {
	if suffix == "" {
		return true
	}
	return strings.HasSuffix(Email(email), strings.ToLower(strings.TrimSpace(suffix)))
}

// ConversationKey identifies the message bucket shared by two users: the
// two ids sorted lexicographically and joined with "-". It is symmetric.
func ConversationKey(a, b string) string {
	a, b = ID(a), ID(b)
	if b < a {
		a, b = b, a
	}
	return a + "-" + b
}

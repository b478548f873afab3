package normalization

import (
	"strings"
	"unicode"
)

// Slug folds identifiers coming from forms, JSON payloads or database rows into
// a lower-case, hyphen separated form.
//
// Example:
//
//	Slug("trustedClients")  => "trusted-clients"
//	Slug("TRUSTED_CLIENTS") => "trusted-clients"
//	Slug(" External Link ") => "external-link"
func Slug(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(trimmed) + 4)
	runes := []rune(trimmed)
	for i, r := range runes {
		switch {
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				b.WriteByte('-')
			}
		case unicode.IsUpper(r):
			if i > 0 && unicode.IsLower(runes[i-1]) && !strings.HasSuffix(b.String(), "-") {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// Canonical resolves raw through the alias table after slugging it. Unknown
// values are returned in slug form so callers can decide how to reject them.
func Canonical(raw string, aliases map[string]string) string {
	slug := Slug(raw)
	if canonical, ok := aliases[slug]; ok {
		return canonical
	}
	// "trustedclients" style input loses its separators before slugging.
	if canonical, ok := aliases[strings.ReplaceAll(slug, "-", "")]; ok {
		return canonical
	}
	return slug
}

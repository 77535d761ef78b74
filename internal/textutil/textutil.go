// Package textutil provides string helpers for filesystem-safe names.
package textutil

import "strings"

// Slug converts a title to a lowercase hyphenated token safe for directory
// names. Letters are lowercased, digits kept, whitespace and separators
// become hyphens, everything else is dropped. Returns fallback when nothing
// survives.
func Slug(value, fallback string) string {
	value = strings.TrimSpace(value)
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r == ' ' || r == '-' || r == '_' || r == '.':
			b.WriteByte('-')
		}
	}
	out := strings.Trim(collapseHyphens(b.String()), "-")
	if out == "" {
		return fallback
	}
	return out
}

func collapseHyphens(s string) string {
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return s
}

package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify maps display text to the key used to address media files:
// lowercase, combining marks dropped, anything outside letters, digits, '_',
// '-' and whitespace replaced by '_', whitespace runs joined by a single '_'.
// Input without a single letter or digit yields "".
func Slugify(s string) string {
	s = StripAccents(strings.ToLower(strings.TrimSpace(s)))

	var b strings.Builder
	hasAlnum := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			hasAlnum = true
			b.WriteRune(r)
		case r == '_' || r == '-' || unicode.IsSpace(r):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if !hasAlnum {
		return ""
	}
	return strings.Join(strings.Fields(b.String()), "_")
}

// ValidKey reports whether a slug can address a media file.
func ValidKey(key string) bool {
	return key != ""
}

// StripAccents removes combining diacritics after canonical decomposition.
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

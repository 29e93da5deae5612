package anki

import (
	"strings"
)

const (
	ANKI_CONNECT_VERSION = 6
)

// SearchEscape escapes text for use inside a double-quoted Anki search term.
func SearchEscape(s string) string {
	return searchReplacer.Replace(s)
}

var searchReplacer = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`*`, `\*`,
	`_`, `\_`,
	`:`, `\:`,
)

var quoteReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Query builds a findNotes query scoped to a deck and note type, optionally
// narrowed by a quoted text fragment. Empty parts are left out.
func Query(deck, model, fragment string) string {
	var parts []string
	if deck != "" {
		parts = append(parts, `deck:"`+quoteReplacer.Replace(deck)+`"`)
	}
	if model != "" {
		parts = append(parts, `note:"`+quoteReplacer.Replace(model)+`"`)
	}
	if fragment = strings.TrimSpace(fragment); fragment != "" {
		parts = append(parts, `"`+SearchEscape(fragment)+`"`)
	}
	return strings.Join(parts, " ")
}

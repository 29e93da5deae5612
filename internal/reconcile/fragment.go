package reconcile

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxFragmentRunes = 40

var (
	markup     = regexp.MustCompile(`\{\{c\d+::.*?\}\}|<[^>]*>|\[sound:[^\]]*\]`)
	clozeInner = regexp.MustCompile(`\{\{c\d+::(.*?)(?:::[^}]*)?\}\}`)
)

// Fragment picks the search text for a field value: the longest run of plain
// text outside cloze, HTML and sound markup, capped in length. A value that
// is all markup falls back to its rendered text.
func Fragment(value string) string {
	best := ""
	for _, seg := range markup.Split(value, -1) {
		seg = strings.TrimSpace(seg)
		if utf8.RuneCountInString(seg) > utf8.RuneCountInString(best) {
			best = seg
		}
	}
	if best == "" {
		best = strings.TrimSpace(markup.ReplaceAllString(clozeInner.ReplaceAllString(value, "$1"), " "))
	}
	return truncate(best, maxFragmentRunes)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}

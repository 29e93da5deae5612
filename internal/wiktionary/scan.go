package wiktionary

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/markgrovs/anki-spanish/pkg/utils"
)

// Fetcher returns the Spanish section of a page, "" when there is none.
type Fetcher interface {
	Spanish(ctx context.Context, lang, page string) (string, error)
}

// Variants lists the page titles worth trying for word, most specific first.
func Variants(word string) []string {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil
	}
	return uniq([]string{
		word,
		norm.NFC.String(word),
		utils.StripAccents(word),
		cases.Title(language.Spanish).String(word),
	})
}

// Exact lists only the titles spelled exactly like word. Accent-stripped
// titles are often different words (papá, papa).
func Exact(word string) []string {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil
	}
	return uniq([]string{word, norm.NFC.String(word)})
}

func uniq(candidates []string) []string {
	seen := make(map[string]bool, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// Scan walks languages in order and, within each, the given page titles,
// handing every non-empty Spanish section to fn until fn returns true.
// It returns an error only if no page could be fetched at all.
func Scan(ctx context.Context, f Fetcher, langs, pages []string, fn func(section string) bool) error {
	var lastErr error
	fetched := false
	for _, lang := range langs {
		for _, page := range pages {
			if err := ctx.Err(); err != nil {
				return err
			}
			sec, err := f.Spanish(ctx, lang, page)
			if err != nil {
				lastErr = err
				continue
			}
			fetched = true
			if sec != "" && fn(sec) {
				return nil
			}
		}
	}
	if !fetched {
		return lastErr
	}
	return nil
}

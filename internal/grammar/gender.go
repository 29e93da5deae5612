// Package grammar holds the Spanish grammar rules used during enrichment:
// noun gender defaults, article choice and part-of-speech hints.
package grammar

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/markgrovs/anki-spanish/pkg/models"
)

var feminineSuffixes = []string{"ción", "sión", "dad", "tad", "tud", "umbre", "ie"}

var masculineSuffixes = []string{"aje", "or", "án", "ambre"}

var genderExceptions = map[string]models.Gender{
	"mano":     models.GenderFeminine,
	"día":      models.GenderMasculine,
	"mapa":     models.GenderMasculine,
	"planeta":  models.GenderMasculine,
	"idioma":   models.GenderMasculine,
	"tema":     models.GenderMasculine,
	"poema":    models.GenderMasculine,
	"programa": models.GenderMasculine,
	"sistema":  models.GenderMasculine,
	"problema": models.GenderMasculine,
}

// HeadWord returns the lowercased first token of a headword or phrase.
func HeadWord(word string) string {
	fields := strings.Fields(norm.NFC.String(strings.ToLower(word)))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// IsInfinitive reports whether head ends like a Spanish infinitive.
func IsInfinitive(head string) bool {
	return strings.HasSuffix(head, "ar") ||
		strings.HasSuffix(head, "er") ||
		strings.HasSuffix(head, "ir")
}

// ExceptionGender looks head up in the table of nouns that break the
// ending rules.
func ExceptionGender(head string) models.Gender {
	return genderExceptions[head]
}

// SuffixGender applies the ending rules in order: feminine suffixes,
// masculine suffixes, then -a and -o. The first match decides.
func SuffixGender(head string) models.Gender {
	for _, s := range feminineSuffixes {
		if strings.HasSuffix(head, s) {
			return models.GenderFeminine
		}
	}
	for _, s := range masculineSuffixes {
		if strings.HasSuffix(head, s) {
			return models.GenderMasculine
		}
	}
	switch {
	case strings.HasSuffix(head, "a"):
		return models.GenderFeminine
	case strings.HasSuffix(head, "o"):
		return models.GenderMasculine
	}
	return models.GenderUnknown
}

// RuleGender combines the exception table and the ending rules. Heads that
// look like infinitives never get a gender.
func RuleGender(word string) models.Gender {
	head := HeadWord(word)
	if head == "" || IsInfinitive(head) {
		return models.GenderUnknown
	}
	if g := ExceptionGender(head); g != models.GenderUnknown {
		return g
	}
	return SuffixGender(head)
}

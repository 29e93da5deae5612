package models

import "strings"

type POS string

const (
	POSUnknown   POS = ""
	POSNoun      POS = "noun"
	POSVerb      POS = "verb"
	POSAdjective POS = "adj"
)

type Gender string

const (
	GenderUnknown   Gender = ""
	GenderMasculine Gender = "m"
	GenderFeminine  Gender = "f"
	GenderNone      Gender = "none"
)

// Record is one row of the vocabulary store. Column order on disk follows the
// field order below.
type Record struct {
	English string `csv:"english"`
	Sense   string `csv:"sense"`
	POS     string `csv:"pos"`
	Spanish string `csv:"spanish"`
	Gender  string `csv:"gender"`
	IPA     string `csv:"ipa"`
	Notes   string `csv:"notes"`

	Dirty bool `csv:"-"`
}

// Columns lists the store columns in write order.
var Columns = []string{"english", "sense", "pos", "spanish", "gender", "ipa", "notes"}

func (r *Record) Key() string {
	return strings.TrimSpace(r.Spanish)
}

func (r *Record) PartOfSpeech() POS {
	return ParsePOS(r.POS)
}

func (r *Record) GrammaticalGender() Gender {
	return ParseGender(r.Gender)
}

// Transcription returns the trimmed IPA column.
func (r *Record) Transcription() string {
	return strings.TrimSpace(r.IPA)
}

func ParsePOS(s string) POS {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "noun", "n", "sustantivo":
		return POSNoun
	case "verb", "v", "verbo":
		return POSVerb
	case "adj", "adj.", "adjective", "adjetivo":
		return POSAdjective
	default:
		return POSUnknown
	}
}

func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "masc", "masculine", "masculino":
		return GenderMasculine
	case "f", "fem", "feminine", "femenino":
		return GenderFeminine
	case "none", "n":
		return GenderNone
	default:
		return GenderUnknown
	}
}

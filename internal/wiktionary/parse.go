package wiktionary

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/markgrovs/anki-spanish/pkg/models"
)

var (
	spanishHeadES = regexp.MustCompile(`(?mi)^==\s*(?:Español|\{\{\s*lengua\s*\|\s*es\s*\}\})\s*==\s*$`)
	spanishHeadEN = regexp.MustCompile(`(?mi)^==\s*Spanish\s*==\s*$`)
	languageHead  = regexp.MustCompile(`(?m)^==[^=].*==\s*$`)

	ipaTemplate = regexp.MustCompile(`(?i)\{\{\s*(?:AFI|IPA)[^}]*\}\}`)
	foneParam   = regexp.MustCompile(`(?i)\bfone\s*=\s*([^|}\n]+)`)
	slashed     = regexp.MustCompile(`/([^/\n]*?)/`)

	genderSustantivo = regexp.MustCompile(`(?i)\{\{\s*sustantivo\s*\|\s*es\s*\|\s*([mf])`)
	genderNounEN     = regexp.MustCompile(`(?i)\{\{\s*es-noun\s*\|\s*([mf])`)
	genderHeaderES   = regexp.MustCompile(`(?i)\{\{\s*sustantivo\s+(masculino|femenino)\b`)
	genderText       = regexp.MustCompile(`(?i)sustantivo\s+(masculino|femenino)`)

	posHeader = regexp.MustCompile(`(?m)^={3,4}\s*([^=\n]+?)\s*={3,4}\s*$`)
	boldLine  = regexp.MustCompile(`'''[^']+'''\s*\(([^)]+)\)`)
)

// ipaMarkers are symbols that only show up in phonetic transcriptions.
const ipaMarkers = "ɾʝʎðɣθβˈˌ"

var posKeys = []struct {
	key string
	pos models.POS
}{
	{"sustantivo", models.POSNoun},
	{"verbo", models.POSVerb},
	{"adjetivo", models.POSAdjective},
	{"noun", models.POSNoun},
	{"verb", models.POSVerb},
	{"adjective", models.POSAdjective},
}

// Section returns the Spanish-language section of a page's wikitext. lang is
// the wiki the text came from ("es" or "en"); other languages never match.
func Section(text, lang string) string {
	var head *regexp.Regexp
	switch lang {
	case "es":
		head = spanishHeadES
	case "en":
		head = spanishHeadEN
	default:
		return ""
	}

	loc := head.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	rest := text[loc[1]:]
	if next := languageHead.FindStringIndex(rest); next != nil {
		return rest[:next[0]]
	}
	return rest
}

// TemplateIPA returns a transcription from a pronunciation template.
func TemplateIPA(section string) (string, bool) {
	for _, tmpl := range ipaTemplate.FindAllString(section, -1) {
		if m := slashed.FindString(tmpl); m != "" && m != "//" {
			return m, true
		}
	}
	if m := foneParam.FindStringSubmatch(section); m != nil {
		v := strings.Trim(strings.TrimSpace(m[1]), "[]/")
		if v != "" {
			return "/" + v + "/", true
		}
	}
	return "", false
}

// LooseIPA returns the first slash-delimited run that looks like a
// transcription.
func LooseIPA(section string) (string, bool) {
	for _, m := range slashed.FindAllStringSubmatch(section, -1) {
		if plausibleIPA(m[1]) {
			return "/" + m[1] + "/", true
		}
	}
	return "", false
}

func plausibleIPA(s string) bool {
	if strings.ContainsAny(s, ipaMarkers) {
		return true
	}
	if utf8.RuneCountInString(s) < 3 {
		return false
	}
	return !strings.ContainsAny(s, " \t<>=|{}:")
}

// TemplateGender reads noun gender from headword templates.
func TemplateGender(section string) models.Gender {
	for _, re := range []*regexp.Regexp{genderSustantivo, genderNounEN, genderHeaderES} {
		if m := re.FindStringSubmatch(section); m != nil {
			return genderLetter(m[1])
		}
	}
	return models.GenderUnknown
}

// TextGender reads noun gender from prose such as "sustantivo femenino". A
// section that names both genders is ambiguous and yields nothing.
func TextGender(section string) models.Gender {
	found := models.GenderUnknown
	for _, m := range genderText.FindAllStringSubmatch(section, -1) {
		g := genderLetter(m[1])
		if found != models.GenderUnknown && found != g {
			return models.GenderUnknown
		}
		found = g
	}
	return found
}

func genderLetter(s string) models.Gender {
	switch strings.ToLower(s)[0] {
	case 'm':
		return models.GenderMasculine
	case 'f':
		return models.GenderFeminine
	}
	return models.GenderUnknown
}

// POS returns the first recognised part-of-speech header, falling back to
// the bold headword line followed by a parenthesised description.
func POS(section string) models.POS {
	for _, m := range posHeader.FindAllStringSubmatch(section, -1) {
		if p := matchPOS(m[1]); p != models.POSUnknown {
			return p
		}
	}
	if m := boldLine.FindStringSubmatch(section); m != nil {
		return matchPOS(m[1])
	}
	return models.POSUnknown
}

func matchPOS(s string) models.POS {
	s = strings.ToLower(s)
	if strings.Contains(s, "adverb") {
		return models.POSUnknown
	}
	for _, k := range posKeys {
		if strings.Contains(s, k.key) {
			return k.pos
		}
	}
	return models.POSUnknown
}

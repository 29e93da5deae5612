package phonetic

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

type segKind int

const (
	consonant segKind = iota
	nucleus
	glide
)

type segment struct {
	ipa    string
	kind   segKind
	weak   bool
	accent bool
}

// Transcribe converts Spanish spelling to a broad transcription using
// ordered rewrite rules, syllabification and the written stress rules.
// Words are separated by spaces; the result is not wrapped in slashes.
func Transcribe(text string) string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(norm.NFC.String(text))) {
		if t := transcribeWord(w); t != "" {
			words = append(words, t)
		}
	}
	return strings.Join(words, " ")
}

func transcribeWord(word string) string {
	letters := []rune{}
	for _, r := range word {
		if unicode.IsLetter(r) {
			letters = append(letters, r)
		}
	}
	if len(letters) == 0 {
		return ""
	}

	segs := spell(letters)
	if len(segs) == 0 {
		return ""
	}
	markGlides(segs)
	allophones(segs)

	syllables, stressed := syllabify(segs, letters)
	if len(syllables) == 0 {
		var b strings.Builder
		for _, s := range segs {
			b.WriteString(s.ipa)
		}
		return b.String()
	}

	var b strings.Builder
	for i, syl := range syllables {
		switch {
		case i == stressed:
			b.WriteString("ˈ")
		case i > 0:
			b.WriteString(".")
		}
		b.WriteString(syl)
	}
	return b.String()
}

func isFrontVowel(r rune) bool {
	switch r {
	case 'e', 'i', 'é', 'í':
		return true
	}
	return false
}

func isVowelLetter(r rune) bool {
	return strings.ContainsRune("aeiouáéíóúü", r)
}

func at(letters []rune, i int) rune {
	if i < 0 || i >= len(letters) {
		return 0
	}
	return letters[i]
}

// spell rewrites letters into segments. Digraphs are consumed whole.
func spell(letters []rune) []segment {
	var segs []segment
	c := func(ipa string) { segs = append(segs, segment{ipa: ipa, kind: consonant}) }
	v := func(ipa string, weak, accent bool) {
		segs = append(segs, segment{ipa: ipa, kind: nucleus, weak: weak, accent: accent})
	}

	for i := 0; i < len(letters); i++ {
		r := letters[i]
		next := at(letters, i+1)
		switch r {
		case 'a', 'e', 'o':
			v(string(r), false, false)
		case 'á':
			v("a", false, true)
		case 'é':
			v("e", false, true)
		case 'ó':
			v("o", false, true)
		case 'i':
			v("i", true, false)
		case 'u':
			v("u", true, false)
		case 'í':
			v("i", false, true)
		case 'ú':
			v("u", false, true)
		case 'ü':
			v("u", true, false)
		case 'y':
			if len(letters) == 1 || (i == len(letters)-1 && isVowelLetter(at(letters, i-1))) {
				v("i", true, false)
			} else {
				c("ʝ")
			}
		case 'h':
		case 'c':
			switch {
			case next == 'h':
				c("tʃ")
				i++
			case isFrontVowel(next):
				c("s")
			default:
				c("k")
			}
		case 'q':
			c("k")
			if next == 'u' {
				i++
			}
		case 'g':
			switch {
			case isFrontVowel(next):
				c("x")
			case next == 'u' && isFrontVowel(at(letters, i+2)):
				c("ɡ")
				i++
			default:
				c("ɡ")
			}
		case 'j':
			c("x")
		case 'l':
			if next == 'l' {
				c("ʝ")
				i++
			} else {
				c("l")
			}
		case 'r':
			switch {
			case next == 'r':
				c("r")
				i++
			case i == 0 || strings.ContainsRune("nls", at(letters, i-1)):
				c("r")
			default:
				c("ɾ")
			}
		case 'ñ':
			c("ɲ")
		case 'v', 'b':
			c("b")
		case 'z':
			c("s")
		case 'x':
			c("k")
			c("s")
		default:
			if r < unicode.MaxASCII && unicode.IsLetter(r) {
				c(string(r))
			}
		}
	}
	return segs
}

// markGlides turns unstressed i and u next to another vowel into glides.
// In a run of weak vowels only the last one keeps the nucleus.
func markGlides(segs []segment) {
	for i := 0; i < len(segs); {
		if segs[i].kind != nucleus {
			i++
			continue
		}
		j := i
		for j < len(segs) && segs[j].kind == nucleus {
			j++
		}
		if j-i > 1 {
			hasStrong := false
			for k := i; k < j; k++ {
				if !segs[k].weak {
					hasStrong = true
				}
			}
			for k := i; k < j; k++ {
				if segs[k].weak && (hasStrong || k < j-1) {
					segs[k].kind = glide
					if segs[k].ipa == "i" {
						segs[k].ipa = "j"
					} else {
						segs[k].ipa = "w"
					}
				}
			}
		}
		i = j
	}
}

// allophones applies nasal place assimilation and spirantization of
// voiced stops.
func allophones(segs []segment) {
	for i := range segs {
		if segs[i].ipa == "n" && i+1 < len(segs) {
			switch segs[i+1].ipa {
			case "b", "p", "m":
				segs[i].ipa = "m"
			}
		}
	}
	for i := 1; i < len(segs); i++ {
		prev := segs[i-1].ipa
		if prev == "m" || prev == "n" {
			continue
		}
		switch segs[i].ipa {
		case "b":
			segs[i].ipa = "β"
		case "ɡ":
			segs[i].ipa = "ɣ"
		case "d":
			if prev != "l" {
				segs[i].ipa = "ð"
			}
		}
	}
}

var onsetFirst = map[string]bool{
	"p": true, "b": true, "β": true, "f": true, "k": true,
	"ɡ": true, "ɣ": true, "t": true, "d": true, "ð": true,
}

func isOnset(a, b segment) bool {
	if !onsetFirst[a.ipa] || (b.ipa != "ɾ" && b.ipa != "l") {
		return false
	}
	return !(b.ipa == "l" && (a.ipa == "d" || a.ipa == "ð" || a.ipa == "t"))
}

// syllabify splits segments into syllables and picks the stressed one.
func syllabify(segs []segment, letters []rune) ([]string, int) {
	var nuclei []int
	for i, s := range segs {
		if s.kind == nucleus {
			nuclei = append(nuclei, i)
		}
	}
	if len(nuclei) == 0 {
		return nil, -1
	}

	starts := []int{0}
	for n := 0; n+1 < len(nuclei); n++ {
		starts = append(starts, splitPoint(segs, nuclei[n], nuclei[n+1]))
	}

	syllables := make([]string, len(starts))
	for i, start := range starts {
		end := len(segs)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		var b strings.Builder
		for _, s := range segs[start:end] {
			b.WriteString(s.ipa)
		}
		syllables[i] = b.String()
	}

	stressed := -1
	for i, idx := range nuclei {
		if segs[idx].accent {
			stressed = i
		}
	}
	if stressed < 0 {
		last := letters[len(letters)-1]
		if strings.ContainsRune("aeiouns", last) && len(syllables) > 1 {
			stressed = len(syllables) - 2
		} else {
			stressed = len(syllables) - 1
		}
	}
	return syllables, stressed
}

// splitPoint returns the index of the first segment of the syllable whose
// nucleus is at q, given the previous nucleus at p.
func splitPoint(segs []segment, p, q int) int {
	i := p + 1
	hasConsonant := false
	for k := i; k < q; k++ {
		if segs[k].kind == consonant {
			hasConsonant = true
		}
	}
	if !hasConsonant {
		return i
	}
	for i < q && segs[i].kind == glide {
		i++
	}
	j := i
	for j < q && segs[j].kind == consonant {
		j++
	}

	switch n := j - i; {
	case n <= 1:
		return i
	case n == 2:
		if isOnset(segs[i], segs[i+1]) {
			return i
		}
		return i + 1
	default:
		if isOnset(segs[j-2], segs[j-1]) {
			return j - 2
		}
		return j - 1
	}
}

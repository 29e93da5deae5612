package grammar

import (
	"strings"

	"github.com/markgrovs/anki-spanish/pkg/models"
	"github.com/markgrovs/anki-spanish/pkg/utils"
)

// Feminine nouns starting with a stressed a- or ha- take "el" in the
// singular. Stored without accents.
var euphonicEl = map[string]bool{
	"agua":   true,
	"aguila": true,
	"arma":   true,
	"alma":   true,
	"aula":   true,
	"hacha":  true,
	"hada":   true,
	"hambre": true,
	"area":   true,
	"ala":    true,
}

// Article returns the definite article shown and spoken with a noun, or ""
// when the record is not a gendered noun.
func Article(word string, gender models.Gender, pos models.POS) string {
	if pos != models.POSNoun {
		return ""
	}
	switch gender {
	case models.GenderMasculine:
		return "el"
	case models.GenderFeminine:
		if euphonicEl[utils.StripAccents(strings.ToLower(strings.TrimSpace(word)))] {
			return "el"
		}
		return "la"
	}
	return ""
}

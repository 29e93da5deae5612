package grammar

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/markgrovs/anki-spanish/pkg/models"
	"github.com/markgrovs/anki-spanish/pkg/utils"
)

// Hints maps lowercased Spanish words to a part of speech.
type Hints map[string]models.POS

const defaultHints = `# POS hints (word: pos)
dólar: noun
dolar: noun
rojo: adj
azul: adj
animal: noun
arcilla: noun
limpiar: verb
cerca: adj
`

var senseToPOS = map[string]models.POS{
	"verb":         models.POSVerb,
	"adjective":    models.POSAdjective,
	"adj.":         models.POSAdjective,
	"adj":          models.POSAdjective,
	"noun":         models.POSNoun,
	"color":        models.POSAdjective,
	"season":       models.POSNoun,
	"location":     models.POSNoun,
	"the location": models.POSNoun,
}

var infinitiveWord = regexp.MustCompile(`^[a-zñ]+(ar|er|ir)$`)

// LoadHints reads a YAML map of word to part of speech. A missing file
// yields no hints; unknown parts of speech are dropped.
func LoadHints(path string) (Hints, error) {
	data, err := os.ReadFile(utils.ExpandPath(path))
	if errors.Is(err, fs.ErrNotExist) {
		return Hints{}, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "read hints %s", path)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrapf(err, "parse hints %s", path)
	}

	hints := make(Hints, len(raw))
	for k, v := range raw {
		if p := models.ParsePOS(v); p != models.POSUnknown {
			hints[strings.ToLower(strings.TrimSpace(k))] = p
		}
	}
	return hints, nil
}

// EnsureHints writes the starter hints file if path does not exist yet.
func EnsureHints(path string) error {
	path = utils.ExpandPath(path)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return eris.Wrapf(err, "create hints dir for %s", path)
	}
	if err := os.WriteFile(path, []byte(defaultHints), 0644); err != nil {
		return eris.Wrapf(err, "write hints %s", path)
	}
	return nil
}

func (h Hints) Lookup(word string) models.POS {
	return h[strings.ToLower(strings.TrimSpace(word))]
}

// SensePOS maps the free-text sense column to a part of speech.
func SensePOS(sense string) models.POS {
	return senseToPOS[strings.ToLower(strings.TrimSpace(sense))]
}

// GuessVerb reports whether a single word looks like an infinitive.
func GuessVerb(word string) bool {
	return infinitiveWord.MatchString(utils.StripAccents(strings.ToLower(strings.TrimSpace(word))))
}

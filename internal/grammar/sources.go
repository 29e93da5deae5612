package grammar

import (
	"context"

	"github.com/markgrovs/anki-spanish/internal/answer"
	"github.com/markgrovs/anki-spanish/internal/wiktionary"
	"github.com/markgrovs/anki-spanish/pkg/logger"
	"github.com/markgrovs/anki-spanish/pkg/models"
)

// ChainConfig selects which lookups a chain may use.
type ChainConfig struct {
	Wiki       wiktionary.Fetcher
	Languages  []string
	UseWiki    bool
	Hints      Hints
	GuessVerbs bool
}

func (c ChainConfig) wikiEnabled() bool {
	return c.UseWiki && c.Wiki != nil && len(c.Languages) > 0
}

// NewGenderChain builds the noun gender chain: wiki templates, wiki prose,
// the exception table, then the ending rules.
func NewGenderChain(log *logger.Logger, cfg ChainConfig) *answer.Chain {
	return answer.NewChain("gender", log,
		answer.Step{Source: wikiSource("wiktionary-template", cfg, wiktionary.TemplateGender), Enabled: cfg.wikiEnabled()},
		answer.Step{Source: wikiSource("wiktionary-text", cfg, wiktionary.TextGender), Enabled: cfg.wikiEnabled()},
		answer.On(ruleSource("exceptions", ExceptionGender)),
		answer.On(ruleSource("suffix", SuffixGender)),
	)
}

// NewPOSChain builds the part-of-speech chain: hints file, wiki headers,
// sense column, then the optional infinitive guess.
func NewPOSChain(log *logger.Logger, cfg ChainConfig) *answer.Chain {
	return answer.NewChain("pos", log,
		answer.Step{Source: hintSource(cfg.Hints), Enabled: len(cfg.Hints) > 0},
		answer.Step{Source: wikiPOSSource(cfg), Enabled: cfg.wikiEnabled()},
		answer.On(answer.SourceFunc{
			SourceName: "sense",
			Fn: func(ctx context.Context, q answer.Query) (answer.Answer, error) {
				return posAnswer(SensePOS(q.Sense)), nil
			},
		}),
		answer.Step{
			Source: answer.SourceFunc{
				SourceName: "infinitive",
				Fn: func(ctx context.Context, q answer.Query) (answer.Answer, error) {
					if GuessVerb(q.Word) {
						return answer.Of(string(models.POSVerb)), nil
					}
					return answer.None, nil
				},
			},
			Enabled: cfg.GuessVerbs,
		},
	)
}

func wikiSource(name string, cfg ChainConfig, extract func(string) models.Gender) answer.Source {
	return answer.SourceFunc{
		SourceName: name,
		Fn: func(ctx context.Context, q answer.Query) (answer.Answer, error) {
			found := models.GenderUnknown
			err := wiktionary.Scan(ctx, cfg.Wiki, cfg.Languages, wiktionary.Variants(q.Word), func(section string) bool {
				found = extract(section)
				return found != models.GenderUnknown
			})
			if found != models.GenderUnknown {
				return answer.Of(string(found)), nil
			}
			return answer.None, err
		},
	}
}

func ruleSource(name string, rule func(head string) models.Gender) answer.Source {
	return answer.SourceFunc{
		SourceName: name,
		Fn: func(ctx context.Context, q answer.Query) (answer.Answer, error) {
			if q.Head == "" || IsInfinitive(q.Head) {
				return answer.None, nil
			}
			if g := rule(q.Head); g != models.GenderUnknown {
				return answer.Of(string(g)), nil
			}
			return answer.None, nil
		},
	}
}

func hintSource(hints Hints) answer.Source {
	return answer.SourceFunc{
		SourceName: "hints",
		Fn: func(ctx context.Context, q answer.Query) (answer.Answer, error) {
			return posAnswer(hints.Lookup(q.Word)), nil
		},
	}
}

func wikiPOSSource(cfg ChainConfig) answer.Source {
	return answer.SourceFunc{
		SourceName: "wiktionary-pos",
		Fn: func(ctx context.Context, q answer.Query) (answer.Answer, error) {
			found := models.POSUnknown
			err := wiktionary.Scan(ctx, cfg.Wiki, cfg.Languages, wiktionary.Variants(q.Word), func(section string) bool {
				found = wiktionary.POS(section)
				return found != models.POSUnknown
			})
			if found != models.POSUnknown {
				return answer.Of(string(found)), nil
			}
			return answer.None, err
		},
	}
}

func posAnswer(p models.POS) answer.Answer {
	if p == models.POSUnknown {
		return answer.None
	}
	return answer.Of(string(p))
}

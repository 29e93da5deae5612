// Package phonetic resolves IPA transcriptions for Spanish headwords.
package phonetic

import (
	"context"
	"strings"

	"github.com/markgrovs/anki-spanish/internal/answer"
	"github.com/markgrovs/anki-spanish/internal/deps"
	"github.com/markgrovs/anki-spanish/internal/wiktionary"
	"github.com/markgrovs/anki-spanish/pkg/logger"
)

type Config struct {
	Wiki      wiktionary.Fetcher
	Languages []string
	UseWiki   bool

	Runner        deps.Runner
	EspeakCommand string
	EspeakVoice   string
	UseEspeak     bool

	UseRules bool
}

// NewChain builds the transcription chain: Wiktionary pronunciation
// sections, then espeak-ng, then the built-in spelling rules.
func NewChain(log *logger.Logger, cfg Config) *answer.Chain {
	return answer.NewChain("ipa", log,
		answer.Step{
			Source:  &WikiSource{wiki: cfg.Wiki, langs: cfg.Languages},
			Enabled: cfg.UseWiki && cfg.Wiki != nil && len(cfg.Languages) > 0,
		},
		answer.Step{
			Source:  &EspeakSource{runner: cfg.Runner, command: cfg.EspeakCommand, voice: cfg.EspeakVoice},
			Enabled: cfg.UseEspeak && cfg.Runner != nil && cfg.EspeakCommand != "",
		},
		answer.Step{Source: RulesSource{}, Enabled: cfg.UseRules},
	)
}

// WikiSource reads pronunciation templates, then loose slash-delimited
// transcriptions, from the Spanish sections of the configured wikis. Only
// pages titled exactly like the word are consulted.
type WikiSource struct {
	wiki  wiktionary.Fetcher
	langs []string
}

func (s *WikiSource) Name() string {
	return "wiktionary-ipa"
}

func (s *WikiSource) Lookup(ctx context.Context, q answer.Query) (answer.Answer, error) {
	var found string
	err := wiktionary.Scan(ctx, s.wiki, s.langs, wiktionary.Exact(q.Word), func(section string) bool {
		if ipa, ok := wiktionary.TemplateIPA(section); ok {
			found = ipa
			return true
		}
		if ipa, ok := wiktionary.LooseIPA(section); ok {
			found = ipa
			return true
		}
		return false
	})
	if found != "" {
		return answer.Of(found), nil
	}
	return answer.None, err
}

// EspeakSource asks espeak-ng for a transcription.
type EspeakSource struct {
	runner  deps.Runner
	command string
	voice   string
}

func (s *EspeakSource) Name() string {
	return "espeak"
}

func (s *EspeakSource) Lookup(ctx context.Context, q answer.Query) (answer.Answer, error) {
	word := strings.TrimSpace(q.Word)
	if word == "" {
		return answer.None, nil
	}
	voice := s.voice
	if voice == "" {
		voice = "es"
	}
	out, err := s.runner.Run(ctx, s.command, "-q", "--ipa", "-v", voice, word)
	if err != nil {
		return answer.None, err
	}
	ipa := strings.Join(strings.Fields(string(out)), "")
	if ipa == "" {
		return answer.None, nil
	}
	return answer.Of("/" + ipa + "/"), nil
}

type RulesSource struct{}

func (RulesSource) Name() string {
	return "rules"
}

func (RulesSource) Lookup(ctx context.Context, q answer.Query) (answer.Answer, error) {
	ipa := Transcribe(q.Word)
	if ipa == "" {
		return answer.None, nil
	}
	return answer.Of("/" + ipa + "/"), nil
}

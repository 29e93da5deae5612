package main

import (
	"github.com/markgrovs/anki-spanish/internal/answer"
	"github.com/markgrovs/anki-spanish/internal/config"
	"github.com/markgrovs/anki-spanish/internal/deps"
	"github.com/markgrovs/anki-spanish/internal/grammar"
	"github.com/markgrovs/anki-spanish/internal/phonetic"
	"github.com/markgrovs/anki-spanish/internal/wiktionary"
	"github.com/markgrovs/anki-spanish/pkg/logger"
)

type chains struct {
	ipa    *answer.Chain
	gender *answer.Chain
	pos    *answer.Chain
}

// newChains wires the lookup chains from cfg. Hints are only read when
// part-of-speech enrichment is on; a starter file is written if missing.
func newChains(log *logger.Logger, cfg *config.Config, enrichPOS bool) (chains, error) {
	wiki := wiktionary.NewClient(log,
		wiktionary.WithTimeout(cfg.LookupTimeout()),
		wiktionary.WithRateLimit(cfg.Lookup.RequestsPerSecond),
	)

	grammarCfg := grammar.ChainConfig{
		Wiki:       wiki,
		Languages:  cfg.Lookup.Languages,
		UseWiki:    cfg.Lookup.Wiktionary,
		GuessVerbs: cfg.Lookup.GuessVerbs,
	}
	if enrichPOS {
		if err := grammar.EnsureHints(cfg.Lookup.HintsPath); err != nil {
			log.Warn("Could not write POS hints: %v", err)
		}
		hints, err := grammar.LoadHints(cfg.Lookup.HintsPath)
		if err != nil {
			return chains{}, err
		}
		grammarCfg.Hints = hints
	}

	return chains{
		ipa: phonetic.NewChain(log, phonetic.Config{
			Wiki:          wiki,
			Languages:     cfg.Lookup.Languages,
			UseWiki:       cfg.Lookup.Wiktionary,
			Runner:        deps.ExecRunner{},
			EspeakCommand: cfg.Lookup.EspeakCommand,
			EspeakVoice:   cfg.Lookup.EspeakVoice,
			UseEspeak:     cfg.Lookup.Espeak,
			UseRules:      cfg.Lookup.Rules,
		}),
		gender: grammar.NewGenderChain(log, grammarCfg),
		pos:    grammar.NewPOSChain(log, grammarCfg),
	}, nil
}

// logCalls reports how often each source was asked.
func (c chains) logCalls(log *logger.Logger) {
	for _, ch := range []*answer.Chain{c.ipa, c.gender, c.pos} {
		for name, n := range ch.Calls() {
			log.Debug("%s lookups via %s: %d", ch.Attribute(), name, n)
		}
	}
}

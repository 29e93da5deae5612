// Package enrich fills missing record attributes from the lookup chains.
package enrich

import (
	"context"
	"strings"

	"github.com/markgrovs/anki-spanish/internal/answer"
	"github.com/markgrovs/anki-spanish/internal/config"
	"github.com/markgrovs/anki-spanish/internal/grammar"
	"github.com/markgrovs/anki-spanish/pkg/logger"
	"github.com/markgrovs/anki-spanish/pkg/models"
)

// Resolver is satisfied by *answer.Chain.
type Resolver interface {
	Resolve(ctx context.Context, q answer.Query) (answer.Answer, string)
}

// Counts tallies attributes filled or changed during a run.
type Counts struct {
	POS    int
	Gender int
	IPA    int
}

// Result reports which attributes of one record changed.
type Result struct {
	POS    bool
	Gender bool
	IPA    bool
}

func (r Result) Changed() bool {
	return r.POS || r.Gender || r.IPA
}

type Enricher struct {
	ipa    Resolver
	gender Resolver
	pos    Resolver
	opts   config.Options
	logger *logger.Logger
	counts Counts
}

// New builds an Enricher. pos may be nil when part-of-speech enrichment is
// not configured.
func New(log *logger.Logger, opts config.Options, ipa, gender, pos Resolver) *Enricher {
	return &Enricher{
		ipa:    ipa,
		gender: gender,
		pos:    pos,
		opts:   opts,
		logger: log,
	}
}

func (e *Enricher) Counts() Counts {
	return e.counts
}

// Enrich fills part of speech, gender and transcription in that order. A
// field is only asked for when empty or when its recompute flag is set, and
// an absent answer leaves it untouched.
func (e *Enricher) Enrich(ctx context.Context, rec *models.Record) Result {
	var res Result
	word := rec.Key()
	if word == "" {
		return res
	}
	head := grammar.HeadWord(word)

	if e.pos != nil && e.opts.EnrichPOS && (strings.TrimSpace(rec.POS) == "" || e.opts.ForcePOS) {
		if v, ok := e.resolve(ctx, e.pos, rec, head); ok && v != strings.TrimSpace(rec.POS) {
			rec.POS = v
			res.POS = true
			e.counts.POS++
		}
	}

	if e.gender != nil && rec.PartOfSpeech() == models.POSNoun && !grammar.IsInfinitive(head) &&
		(strings.TrimSpace(rec.Gender) == "" || e.opts.ForceGender) {
		if v, ok := e.resolve(ctx, e.gender, rec, head); ok && v != strings.TrimSpace(rec.Gender) {
			rec.Gender = v
			res.Gender = true
			e.counts.Gender++
		}
	}

	if e.ipa != nil && (rec.Transcription() == "" || e.opts.ForceTranscription) {
		if v, ok := e.resolve(ctx, e.ipa, rec, head); ok && v != rec.Transcription() {
			rec.IPA = v
			res.IPA = true
			e.counts.IPA++
		}
	}

	if res.Changed() {
		rec.Dirty = true
	}
	return res
}

func (e *Enricher) resolve(ctx context.Context, r Resolver, rec *models.Record, head string) (string, bool) {
	ans, src := r.Resolve(ctx, answer.Query{
		Word:  rec.Key(),
		Head:  head,
		POS:   rec.PartOfSpeech(),
		Sense: strings.TrimSpace(rec.Sense),
	})
	if !ans.Found || strings.TrimSpace(ans.Value) == "" {
		return "", false
	}
	e.logger.Debug("%s: %s from %s", rec.Key(), ans.Value, src)
	return strings.TrimSpace(ans.Value), true
}

// EnrichAll enriches every record with an identity and returns how many
// changed. It stops at the first cancellation of ctx.
func (e *Enricher) EnrichAll(ctx context.Context, records []*models.Record) (int, error) {
	changed := 0
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		if e.Enrich(ctx, rec).Changed() {
			changed++
		}
	}
	return changed, nil
}

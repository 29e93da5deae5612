// Package sentences turns generated example sentences into cloze notes.
package sentences

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/markgrovs/anki-spanish/internal/reconcile"
	"github.com/markgrovs/anki-spanish/pkg/logger"
	"github.com/markgrovs/anki-spanish/pkg/report"
)

var DefaultTags = []string{"sentences"}

// Item is one entry of the sentences file.
type Item struct {
	Text         string   `json:"text"`
	Clozes       []string `json:"clozes"`
	Notes        string   `json:"notes"`
	EnglishGloss string   `json:"english_gloss"`
	Tags         []string `json:"tags"`
}

// Gloss returns the notes, or the English gloss when there are none.
func (i Item) Gloss() string {
	if n := strings.TrimSpace(i.Notes); n != "" {
		return n
	}
	return strings.TrimSpace(i.EnglishGloss)
}

// Load reads a JSON array of items.
func Load(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read sentences %s", path)
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, eris.Wrapf(err, "parse sentences %s: expected a list of sentence objects", path)
	}
	return items, nil
}

// MakeCloze wraps the first occurrence of each target in a numbered cloze
// deletion. Targets that do not occur keep their number unused.
func MakeCloze(text string, targets []string) string {
	n := 1
	for _, t := range targets {
		if t == "" {
			continue
		}
		text = strings.Replace(text, t, fmt.Sprintf("{{c%d::%s}}", n, t), 1)
		n++
	}
	return text
}

func HasCloze(text string) bool {
	return strings.Contains(text, "{{c")
}

// Mapping names the note type fields that receive each part of a sentence.
// Empty names are not present in the note type.
type Mapping struct {
	Cloze string
	Text  string
	Extra string
	Audio string
}

func MapFields(s reconcile.Schema) Mapping {
	m := Mapping{Cloze: s.Identity}
	if s.Has("Text") && m.Cloze != "Text" {
		m.Text = "Text"
	}
	for _, f := range []string{"Back Extra", "Extra"} {
		if s.Has(f) {
			m.Extra = f
			break
		}
	}
	if s.Has("Audio") {
		m.Audio = "Audio"
	}
	return m
}

// Fields builds note fields. Without an Audio field the sound tag goes on
// its own line in the extra field.
func (m Mapping) Fields(cloze, text, gloss, audioName string) map[string]string {
	fields := map[string]string{m.Cloze: cloze}
	if m.Text != "" {
		fields[m.Text] = text
	}
	if m.Extra != "" {
		fields[m.Extra] = gloss
	}
	if audioName == "" {
		return fields
	}
	sound := "[sound:" + audioName + "]"
	switch {
	case m.Audio != "":
		fields[m.Audio] = sound
	case m.Extra != "":
		fields[m.Extra] = strings.TrimSpace(gloss + "\n" + sound)
	}
	return fields
}

type Audio interface {
	Ensure(ctx context.Context, text string, force bool) (path string, fresh bool, err error)
}

type Upserter interface {
	Upsert(ctx context.Context, t reconcile.Target) (reconcile.Outcome, error)
}

type Summary struct {
	Added       int
	Updated     int
	Unchanged   int
	Skipped     int
	AudioFailed int
	Failed      int
}

func (s Summary) Table() string {
	return report.Counts([][]string{
		{"Added", strconv.Itoa(s.Added)},
		{"Updated", strconv.Itoa(s.Updated)},
		{"Unchanged", strconv.Itoa(s.Unchanged)},
		{"Skipped", strconv.Itoa(s.Skipped)},
		{"Audio failed", strconv.Itoa(s.AudioFailed)},
		{"Failed", strconv.Itoa(s.Failed)},
	})
}

type Options struct {
	Deck       string
	Limit      int
	ForceAudio bool
}

type Builder struct {
	reconciler Upserter
	mapping    Mapping
	audio      Audio
	opts       Options
	logger     *logger.Logger
}

// NewBuilder builds sentence notes for the note type of schema. audio may
// be nil to leave sound out.
func NewBuilder(reconciler Upserter, schema reconcile.Schema, audio Audio, opts Options, logger *logger.Logger) *Builder {
	return &Builder{
		reconciler: reconciler,
		mapping:    MapFields(schema),
		audio:      audio,
		opts:       opts,
		logger:     logger,
	}
}

// Run upserts one note per usable item. Only context cancellation stops it
// early.
func (b *Builder) Run(ctx context.Context, items []Item) (Summary, error) {
	var sum Summary
	processed := 0
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if b.opts.Limit > 0 && processed >= b.opts.Limit {
			break
		}

		text := strings.TrimSpace(it.Text)
		cloze := MakeCloze(text, it.Clozes)
		if text == "" || !HasCloze(cloze) {
			b.logger.Debug("No cloze markers in: %q", text)
			sum.Skipped++
			continue
		}
		processed++

		var media []reconcile.Media
		var audioName string
		if b.audio != nil {
			path, fresh, err := b.audio.Ensure(ctx, text, b.opts.ForceAudio)
			if err != nil {
				if ctx.Err() != nil {
					return sum, ctx.Err()
				}
				b.logger.Warn("Audio generation failed for %q: %v", text, err)
				sum.AudioFailed++
				continue
			}
			audioName = filepath.Base(path)
			media = append(media, reconcile.Media{Filename: audioName, Path: path, Fresh: fresh})
		}

		tags := it.Tags
		if len(tags) == 0 {
			tags = DefaultTags
		}
		outcome, err := b.reconciler.Upsert(ctx, reconcile.Target{
			Deck:   b.opts.Deck,
			Fields: b.mapping.Fields(cloze, text, it.Gloss(), audioName),
			Tags:   tags,
			Media:  media,
		})
		if err != nil {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}
			b.logger.Warn("Failed to sync sentence %q: %v", text, err)
		}
		switch outcome {
		case reconcile.Added:
			sum.Added++
		case reconcile.Updated:
			sum.Updated++
		case reconcile.Unchanged:
			sum.Unchanged++
		default:
			sum.Failed++
		}
	}
	return sum, nil
}

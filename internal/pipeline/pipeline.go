// Package pipeline drives one pass over the vocabulary store: enrich each
// record, gather its media and reconcile it with Anki.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"

	"github.com/markgrovs/anki-spanish/internal/config"
	"github.com/markgrovs/anki-spanish/internal/enrich"
	"github.com/markgrovs/anki-spanish/internal/grammar"
	"github.com/markgrovs/anki-spanish/internal/media"
	"github.com/markgrovs/anki-spanish/internal/reconcile"
	"github.com/markgrovs/anki-spanish/pkg/logger"
	"github.com/markgrovs/anki-spanish/pkg/models"
	"github.com/markgrovs/anki-spanish/pkg/utils"
)

type Enricher interface {
	Enrich(ctx context.Context, rec *models.Record) enrich.Result
	Counts() enrich.Counts
}

type Images interface {
	ImageSources(ctx context.Context, key string) ([]string, error)
	ResolveImage(ctx context.Context, key string) (media.Image, error)
	GenderBadge(g models.Gender) string
	AudioPath(text string) string
}

type Acquirer interface {
	Acquire(ctx context.Context, word, key string) (media.Image, error)
}

type Audio interface {
	Ensure(ctx context.Context, text string, force bool) (path string, fresh bool, err error)
}

type Upserter interface {
	Upsert(ctx context.Context, t reconcile.Target) (reconcile.Outcome, error)
}

type Saver interface {
	Save(records []*models.Record) error
}

// Deps are the collaborators of a Driver. Acquirer may be nil, in which case
// records without an image are skipped.
type Deps struct {
	Enricher   Enricher
	Images     Images
	Acquirer   Acquirer
	Audio      Audio
	Reconciler Upserter
	Store      Saver
}

// Confirm is asked before a record is sent to Anki. Returning false skips
// the record.
type Confirm func(rec *models.Record, fields map[string]string) bool

type Options struct {
	Run     config.Options
	Deck    string
	Tags    []string
	Confirm Confirm
}

type Driver struct {
	deps    Deps
	opts    Options
	logger  *logger.Logger
	stopped atomic.Bool
}

func New(deps Deps, opts Options, logger *logger.Logger) *Driver {
	return &Driver{
		deps:   deps,
		opts:   opts,
		logger: logger,
	}
}

// Stop asks the driver to finish the current record and return.
func (d *Driver) Stop() {
	d.stopped.Store(true)
}

func (d *Driver) Stopped() bool {
	return d.stopped.Load()
}

// Run processes records in order and rewrites the store once at the end.
// Per-record problems are logged and counted; the returned error is set
// only when the store cannot be written or ctx is cancelled.
func (d *Driver) Run(ctx context.Context, records []*models.Record) (Summary, error) {
	sum := newSummary()
	run := d.opts.Run

	d.logger.Info("Processing %d rows... (keep Anki open)", len(records))

	for _, rec := range records {
		if d.Stopped() {
			d.logger.Info("Stop requested, finishing early")
			sum.Stopped = true
			break
		}
		if err := ctx.Err(); err != nil {
			sum.Enriched = d.deps.Enricher.Counts()
			return sum, err
		}
		if run.Limit > 0 && sum.Processed >= run.Limit {
			break
		}
		sum.Scanned++

		processed, err := d.process(ctx, rec, &sum)
		if err != nil {
			sum.Enriched = d.deps.Enricher.Counts()
			return sum, err
		}
		if processed && run.SaveEachRecord && rec.Dirty && !run.DryRun {
			if err := d.deps.Store.Save(records); err != nil {
				sum.Enriched = d.deps.Enricher.Counts()
				return sum, err
			}
		}
	}

	sum.Enriched = d.deps.Enricher.Counts()
	if run.DryRun {
		d.logger.Info("Dry run: store not written")
		return sum, nil
	}
	if err := d.deps.Store.Save(records); err != nil {
		return sum, eris.Wrap(err, "failed to write store")
	}
	return sum, nil
}

// process handles one record. It reports whether the record got past the
// only-missing filter. Only context cancellation is returned as an error.
func (d *Driver) process(ctx context.Context, rec *models.Record, sum *Summary) (bool, error) {
	run := d.opts.Run
	word := rec.Key()
	if word == "" {
		sum.Skipped[SkipBlank]++
		return false, nil
	}
	log := d.logger.With("word", word)

	d.deps.Enricher.Enrich(ctx, rec)
	article := grammar.Article(word, rec.GrammaticalGender(), rec.PartOfSpeech())
	audioText := strings.TrimSpace(article + " " + word)
	key := utils.Slugify(word)

	needs, err := d.needs(ctx, rec, key, audioText)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		log.Warn("Image lookup failed: %v", err)
	}
	if run.OnlyMissing && len(needs) == 0 && !run.Forced() && !run.ForceAudio {
		sum.Skipped[SkipComplete]++
		return false, nil
	}
	sum.Processed++
	if len(needs) > 0 {
		log.Debug("Missing: %s", strings.Join(needs, ", "))
	}

	img, err := d.image(ctx, word, key)
	if err != nil {
		if ctx.Err() != nil {
			return true, ctx.Err()
		}
		log.Warn("Image lookup failed: %v", err)
	}
	if !img.Found() {
		sum.Skipped[SkipNoImage]++
		return true, nil
	}

	audioPath, audioFresh, err := d.audio(ctx, audioText)
	if err != nil {
		if ctx.Err() != nil {
			return true, ctx.Err()
		}
		log.Warn("Audio generation failed: %v", err)
		sum.AudioFailed++
		return true, nil
	}

	target := d.target(rec, article, img, audioPath, audioFresh)
	if d.opts.Confirm != nil && !d.opts.Confirm(rec, target.Fields) {
		sum.Skipped[SkipDeclined]++
		return true, nil
	}

	outcome, err := d.deps.Reconciler.Upsert(ctx, target)
	if err != nil {
		if ctx.Err() != nil {
			return true, ctx.Err()
		}
		log.Warn("Failed to sync note: %v", err)
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
	return true, nil
}

// needs lists what a record is missing: image, audio, gender, ipa. A failed
// image lookup counts as a missing image and is returned alongside.
func (d *Driver) needs(ctx context.Context, rec *models.Record, key, audioText string) ([]string, error) {
	var needs []string
	sources, err := d.deps.Images.ImageSources(ctx, key)
	if len(sources) == 0 {
		needs = append(needs, "image")
	}
	if !exists(d.deps.Images.AudioPath(audioText)) {
		needs = append(needs, "audio")
	}
	if rec.PartOfSpeech() == models.POSNoun && rec.GrammaticalGender() == models.GenderUnknown {
		needs = append(needs, "gender")
	}
	if rec.Transcription() == "" {
		needs = append(needs, "ipa")
	}
	return needs, err
}

func (d *Driver) image(ctx context.Context, word, key string) (media.Image, error) {
	img, err := d.deps.Images.ResolveImage(ctx, key)
	if err != nil || img.Found() {
		return img, err
	}
	run := d.opts.Run
	if d.deps.Acquirer == nil || !run.OpenImageSearch || run.DryRun || !utils.ValidKey(key) {
		return media.Image{}, nil
	}
	return d.deps.Acquirer.Acquire(ctx, word, key)
}

// audio makes sure the spoken file exists. A dry run only names it.
func (d *Driver) audio(ctx context.Context, text string) (string, bool, error) {
	if d.opts.Run.DryRun {
		return d.deps.Images.AudioPath(text), false, nil
	}
	return d.deps.Audio.Ensure(ctx, text, d.opts.Run.ForceAudio)
}

func (d *Driver) target(rec *models.Record, article string, img media.Image, audioPath string, audioFresh bool) reconcile.Target {
	audioName := filepath.Base(audioPath)
	t := reconcile.Target{
		Deck: d.opts.Deck,
		Tags: Tags(d.opts.Tags, rec),
		Media: []reconcile.Media{
			{Filename: img.Name(), Path: img.Path, Fresh: img.Fresh},
			{Filename: audioName, Path: audioPath, Fresh: audioFresh},
		},
	}

	var badgeName string
	if badge := d.deps.Images.GenderBadge(rec.GrammaticalGender()); badge != "" {
		badgeName = filepath.Base(badge)
		t.Media = append(t.Media, reconcile.Media{Filename: badgeName, Path: badge})
	}

	t.Fields = map[string]string{
		"Word":    rec.Key(),
		"Image":   ImageHTML(img.Name(), badgeName),
		"Audio":   SoundTag(audioName),
		"Notes":   NotesText(rec),
		"IPA":     rec.Transcription(),
		"Gender":  genderText(rec),
		"POS":     posText(rec),
		"Article": article,
	}
	return t
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

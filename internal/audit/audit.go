// Package audit reports what the vocabulary store and media folders lack.
package audit

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/markgrovs/anki-spanish/internal/grammar"
	"github.com/markgrovs/anki-spanish/internal/scanner"
	"github.com/markgrovs/anki-spanish/pkg/models"
	"github.com/markgrovs/anki-spanish/pkg/report"
	"github.com/markgrovs/anki-spanish/pkg/utils"
)

type Media interface {
	ImageSources(ctx context.Context, key string) ([]string, error)
	AudioPath(text string) string
}

type Report struct {
	Total          int
	MissingSpanish int
	MissingGender  int
	MissingIPA     int
	MissingImage   int
	MissingAudio   int
	Images         scanner.Stats
}

// Run counts rows missing each attribute. Gender is only expected on nouns;
// image and audio are looked up the way the build does.
func Run(ctx context.Context, records []*models.Record, media Media) (Report, error) {
	r := Report{Total: len(records)}
	for _, rec := range records {
		word := rec.Key()
		if word == "" {
			r.MissingSpanish++
			continue
		}
		if rec.PartOfSpeech() == models.POSNoun && rec.GrammaticalGender() == models.GenderUnknown {
			r.MissingGender++
		}
		if rec.Transcription() == "" {
			r.MissingIPA++
		}

		sources, err := media.ImageSources(ctx, utils.Slugify(word))
		if err != nil {
			return r, err
		}
		if len(sources) == 0 {
			r.MissingImage++
		}

		article := grammar.Article(word, rec.GrammaticalGender(), rec.PartOfSpeech())
		if _, err := os.Stat(media.AudioPath(strings.TrimSpace(article + " " + word))); err != nil {
			r.MissingAudio++
		}
	}
	return r, nil
}

func (r Report) Rows() [][]string {
	return [][]string{
		{"Rows total", strconv.Itoa(r.Total)},
		{"Missing Spanish", strconv.Itoa(r.MissingSpanish)},
		{"Missing gender (nouns)", strconv.Itoa(r.MissingGender)},
		{"Missing IPA", strconv.Itoa(r.MissingIPA)},
		{"Missing image", strconv.Itoa(r.MissingImage)},
		{"Missing audio", strconv.Itoa(r.MissingAudio)},
		{"Image files", strconv.Itoa(r.Images.ImageCount)},
		{"Collages", strconv.Itoa(r.Images.CollageCount)},
		{"Image folders", strconv.Itoa(r.Images.FolderCount)},
	}
}

func (r Report) Table() string {
	return report.Counts(r.Rows())
}

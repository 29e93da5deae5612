// Package media locates, derives and produces the image and audio files
// attached to notes.
package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/markgrovs/anki-spanish/internal/scanner"
	"github.com/markgrovs/anki-spanish/pkg/logger"
	"github.com/markgrovs/anki-spanish/pkg/models"
	"github.com/markgrovs/anki-spanish/pkg/utils"
)

const (
	maxNumbered  = 9
	maxAudioName = 64
)

type Dirs struct {
	Images string
	Audio  string
	Gender string
}

// Image is a resolved image file. Fresh is set when the file was produced
// during this run and has not been uploaded yet.
type Image struct {
	Path  string
	Fresh bool
}

func (i Image) Found() bool {
	return i.Path != ""
}

func (i Image) Name() string {
	return filepath.Base(i.Path)
}

type Resolver struct {
	dirs     Dirs
	scanner  *scanner.DirectoryScanner
	composer Composer
	logger   *logger.Logger
}

// NewResolver builds a Resolver. A nil composer disables collages; multiple
// sources then resolve to the first one.
func NewResolver(dirs Dirs, scanner *scanner.DirectoryScanner, composer Composer, logger *logger.Logger) *Resolver {
	return &Resolver{
		dirs:     dirs,
		scanner:  scanner,
		composer: composer,
		logger:   logger,
	}
}

func (r *Resolver) Dirs() Dirs {
	return r.dirs
}

// EnsureDirs creates the media directories.
func (r *Resolver) EnsureDirs() error {
	for _, dir := range []string{r.dirs.Images, r.dirs.Audio, r.dirs.Gender} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return eris.Wrapf(err, "failed to create directory %s", dir)
		}
	}
	return nil
}

// ImageSources lists the source images for key: key.<ext>, then key-1..9,
// then the files in folder key/ in lexical order, without duplicates.
// File names match regardless of case.
func (r *Resolver) ImageSources(ctx context.Context, key string) ([]string, error) {
	if !utils.ValidKey(key) {
		return nil, nil
	}

	files, err := r.imageFiles()
	if err != nil {
		return nil, err
	}

	var candidates []string
	for _, ext := range scanner.ImageExtensions {
		candidates = append(candidates, key+ext)
	}
	for i := 1; i <= maxNumbered; i++ {
		for _, ext := range scanner.ImageExtensions {
			candidates = append(candidates, fmt.Sprintf("%s-%d%s", key, i, ext))
		}
	}

	var sources []string
	for _, c := range candidates {
		if path, ok := files[strings.ToLower(c)]; ok {
			sources = append(sources, path)
		}
	}

	folder, err := r.scanner.FindImages(ctx, filepath.Join(r.dirs.Images, key))
	if err != nil {
		return nil, err
	}
	sources = append(sources, folder...)

	return dedupe(sources), nil
}

// imageFiles maps the lowercased names of the files in the images root to
// their paths. The first name in lexical order wins.
func (r *Resolver) imageFiles() (map[string]string, error) {
	entries, err := os.ReadDir(r.dirs.Images)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "error reading directory %s", r.dirs.Images)
	}
	files := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		if _, seen := files[name]; !seen {
			files[name] = filepath.Join(r.dirs.Images, e.Name())
		}
	}
	return files, nil
}

func (r *Resolver) CollagePath(key string) string {
	return filepath.Join(r.dirs.Images, key+"_collage.jpg")
}

// ResolveImage picks the single image for key. Several sources are merged
// into a cached collage; without a composer, or when composing fails, the
// first source is used.
func (r *Resolver) ResolveImage(ctx context.Context, key string) (Image, error) {
	sources, err := r.ImageSources(ctx, key)
	if err != nil || len(sources) == 0 {
		return Image{}, err
	}
	if len(sources) == 1 {
		return Image{Path: sources[0]}, nil
	}

	collage := r.CollagePath(key)
	if isFile(collage) {
		return Image{Path: collage}, nil
	}
	if r.composer == nil {
		return Image{Path: sources[0]}, nil
	}
	if err := r.composer.Compose(sources, collage); err != nil {
		r.logger.Warn("Collage for %s failed, using %s: %v", key, filepath.Base(sources[0]), err)
		return Image{Path: sources[0]}, nil
	}
	return Image{Path: collage, Fresh: true}, nil
}

// AudioPath is where the spoken form of text is stored. Long texts such as
// sentences are cut to a bounded file name.
func (r *Resolver) AudioPath(text string) string {
	slug := []rune(utils.Slugify(text))
	if len(slug) > maxAudioName {
		slug = []rune(strings.TrimRight(string(slug[:maxAudioName]), "_-"))
	}
	return filepath.Join(r.dirs.Audio, string(slug)+".mp3")
}

// GenderBadge returns the badge image overlaid on cards of the given gender,
// or "" when there is none.
func (r *Resolver) GenderBadge(g models.Gender) string {
	var base string
	switch g {
	case models.GenderMasculine:
		base = "male"
	case models.GenderFeminine:
		base = "female"
	default:
		return ""
	}
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".webp"} {
		p := filepath.Join(r.dirs.Gender, base+ext)
		if isFile(p) {
			return p
		}
	}
	return ""
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := paths[:0]
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

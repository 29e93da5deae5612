package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/markgrovs/anki-spanish/pkg/logger"
)

// ImageExtensions are the raster formats accepted as image sources.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

const collageSuffix = "_collage.jpg"

type Stats struct {
	ImageCount   int
	CollageCount int
	FolderCount  int
}

type DirectoryScanner struct {
	logger *logger.Logger
}

func New(logger *logger.Logger) *DirectoryScanner {
	return &DirectoryScanner{
		logger: logger,
	}
}

func IsImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range ImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// FindImages lists the image files directly inside dir in lexical order.
// A missing directory yields no images.
func (s *DirectoryScanner) FindImages(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "error reading directory %s", dir)
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() || !IsImage(entry.Name()) {
			continue
		}
		images = append(images, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(images)

	s.logger.Trace("Found %d images in %s", len(images), dir)
	return images, nil
}

// ScanDirectory walks an images root and counts source images, cached
// collages and per-word folders.
func (s *DirectoryScanner) ScanDirectory(ctx context.Context, dir string) (Stats, error) {
	var stats Stats

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return eris.Wrapf(err, "error accessing path %s", path)
		}

		if info.IsDir() {
			if path != dir {
				stats.FolderCount++
				s.logger.Trace("Scanning directory: %s", path)
			}
			return nil
		}

		if !IsImage(path) {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(info.Name()), collageSuffix) {
			stats.CollageCount++
			return nil
		}
		stats.ImageCount++
		return nil
	})

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return stats, context.Canceled
		}
		return stats, err
	}

	s.logger.Debug("Scanned %s: %d images, %d collages, %d folders",
		dir, stats.ImageCount, stats.CollageCount, stats.FolderCount)
	return stats, nil
}

package media

import (
	"context"
	"net/url"
	"runtime"
	"time"

	"github.com/markgrovs/anki-spanish/internal/deps"
	"github.com/markgrovs/anki-spanish/pkg/logger"
)

const imageSearchURL = "https://www.google.com/search?tbm=isch&q="

// Opener shows a URL to the user.
type Opener interface {
	Open(ctx context.Context, target string) error
}

// BrowserOpener opens URLs with the platform's default handler.
type BrowserOpener struct {
	Runner deps.Runner
}

func (b BrowserOpener) Open(ctx context.Context, target string) error {
	switch runtime.GOOS {
	case "darwin":
		_, err := b.Runner.Run(ctx, "open", target)
		return err
	case "windows":
		_, err := b.Runner.Run(ctx, "rundll32", "url.dll,FileProtocolHandler", target)
		return err
	default:
		_, err := b.Runner.Run(ctx, "xdg-open", target)
		return err
	}
}

// Acquirer asks the user to save images for a word and waits for them to
// appear on disk.
type Acquirer struct {
	resolver *Resolver
	opener   Opener
	timeout  time.Duration
	interval time.Duration
	stopped  func() bool
	logger   *logger.Logger
}

type AcquirerOption func(*Acquirer)

func WithPollInterval(d time.Duration) AcquirerOption {
	return func(a *Acquirer) {
		a.interval = d
	}
}

// WithStopCheck makes the wait end early once stopped reports true.
func WithStopCheck(stopped func() bool) AcquirerOption {
	return func(a *Acquirer) {
		a.stopped = stopped
	}
}

func NewAcquirer(resolver *Resolver, opener Opener, timeout time.Duration, logger *logger.Logger, opts ...AcquirerOption) *Acquirer {
	a := &Acquirer{
		resolver: resolver,
		opener:   opener,
		timeout:  timeout,
		interval: time.Second,
		stopped:  func() bool { return false },
		logger:   logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func SearchURL(word string) string {
	return imageSearchURL + url.QueryEscape(word)
}

// Acquire opens an image search for word and polls for a source image under
// key until one resolves, the timeout passes, or a stop is requested. An
// empty Image means nothing was saved.
func (a *Acquirer) Acquire(ctx context.Context, word, key string) (Image, error) {
	target := SearchURL(word)
	a.logger.Info("No base image for '%s'. Opening image search:\n  %s", word, target)
	if err := a.opener.Open(ctx, target); err != nil {
		a.logger.Warn("Could not open browser: %v", err)
	}
	a.logger.Info("Save images as %s/%s.jpg or %s-1.jpg, %s-2.jpg, ... or into folder %s/%s/. Waiting up to %s...",
		a.resolver.dirs.Images, key, key, key, a.resolver.dirs.Images, key, a.timeout)

	deadline := time.NewTimer(a.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return Image{}, ctx.Err()
		case <-deadline.C:
			a.logger.Warn("Skipped: no image saved for '%s'.", word)
			return Image{}, nil
		case <-ticker.C:
			if a.stopped() {
				return Image{}, nil
			}
			img, err := a.resolver.ResolveImage(ctx, key)
			if err != nil {
				return Image{}, err
			}
			if img.Found() {
				img.Fresh = true
				return img, nil
			}
		}
	}
}

package media

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/markgrovs/anki-spanish/pkg/logger"
)

// Synthesizer renders spoken text to an audio file.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outPath string) error
}

type AudioMaker struct {
	resolver *Resolver
	synth    Synthesizer
	logger   *logger.Logger
}

func NewAudioMaker(resolver *Resolver, synth Synthesizer, logger *logger.Logger) *AudioMaker {
	return &AudioMaker{
		resolver: resolver,
		synth:    synth,
		logger:   logger,
	}
}

// Ensure makes sure the audio file for text exists, regenerating it when
// force is set. fresh reports whether the file was written by this call.
func (m *AudioMaker) Ensure(ctx context.Context, text string, force bool) (path string, fresh bool, err error) {
	path = m.resolver.AudioPath(text)
	if force {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return path, false, eris.Wrapf(err, "failed to remove %s", path)
		}
	}
	if isFile(path) {
		return path, false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return path, false, eris.Wrap(err, "failed to create audio directory")
	}
	m.logger.Info("Generating audio: %s", text)
	if err := m.synth.Synthesize(ctx, text, path); err != nil {
		// Existence marks a finished file; drop whatever a failed run left.
		_ = os.Remove(path)
		return path, false, eris.Wrapf(err, "audio generation failed for %q", text)
	}
	return path, true, nil
}

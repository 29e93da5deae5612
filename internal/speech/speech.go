// Package speech turns Spanish text into MP3 files with the system TTS
// voice and ffmpeg.
package speech

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/markgrovs/anki-spanish/internal/deps"
	"github.com/markgrovs/anki-spanish/pkg/logger"
)

const probeText = "prueba"

var DefaultFallbackVoices = []string{"Paulina", "Luciana", "Diego", "Monica", "Jorge"}

type Config struct {
	Command   string
	FFmpeg    string
	Voice     string
	Fallbacks []string
	Rate      int
	// Timeout bounds each external command; zero means no bound.
	Timeout time.Duration
}

// Synthesizer renders text with `say` and encodes it to MP3 with ffmpeg.
// The voice is chosen on first use and kept for the life of the value.
type Synthesizer struct {
	runner deps.Runner
	cfg    Config
	logger *logger.Logger

	once  sync.Once
	voice string
}

func New(runner deps.Runner, cfg Config, logger *logger.Logger) *Synthesizer {
	if cfg.Command == "" {
		cfg.Command = "say"
	}
	if cfg.FFmpeg == "" {
		cfg.FFmpeg = "ffmpeg"
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 150
	}
	if cfg.Fallbacks == nil {
		cfg.Fallbacks = DefaultFallbackVoices
	}
	return &Synthesizer{
		runner: runner,
		cfg:    cfg,
		logger: logger,
	}
}

// Voice returns the voice picked for this process, probing on first call.
// "" means the system default voice.
func (s *Synthesizer) Voice(ctx context.Context, scratchDir string) string {
	s.once.Do(func() {
		s.voice = s.pickVoice(ctx, scratchDir)
	})
	return s.voice
}

func (s *Synthesizer) Synthesize(ctx context.Context, text, outPath string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return eris.New("nothing to say")
	}

	aiff := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".aiff"
	defer os.Remove(aiff)

	voice := s.Voice(ctx, filepath.Dir(outPath))
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	if _, err := s.runner.Run(ctx, s.cfg.Command, s.sayArgs(voice, text, aiff)...); err != nil {
		return eris.Wrap(err, "speech synthesis failed")
	}

	// An interrupted encode must never leave a file at outPath.
	tmp := PartialPath(outPath)
	defer os.Remove(tmp)
	if _, err := s.runner.Run(ctx, s.cfg.FFmpeg, EncodeArgs(aiff, tmp)...); err != nil {
		return eris.Wrap(err, "mp3 encoding failed")
	}
	if err := os.Rename(tmp, outPath); err != nil {
		return eris.Wrapf(err, "failed to move %s into place", outPath)
	}
	return nil
}

func (s *Synthesizer) sayArgs(voice, text, out string) []string {
	var args []string
	if voice != "" {
		args = append(args, "-v", voice)
	}
	return append(args, "-r", strconv.Itoa(s.cfg.Rate), text, "-o", out)
}

// PartialPath is where outPath is encoded before it is renamed into place.
// The extension is kept so ffmpeg picks the same container.
func PartialPath(outPath string) string {
	ext := filepath.Ext(outPath)
	return strings.TrimSuffix(outPath, ext) + ".partial" + ext
}

// EncodeArgs are the ffmpeg arguments that turn the raw recording into a
// mono 44.1kHz MP3 with a short lead-in and tail of silence.
func EncodeArgs(in, out string) []string {
	return []string{
		"-y", "-i", in,
		"-ar", "44100", "-ac", "1",
		"-af", "adelay=120:all=1,apad=pad_dur=0.35",
		"-c:a", "libmp3lame", "-b:a", "160k",
		out,
	}
}

func (s *Synthesizer) pickVoice(ctx context.Context, scratchDir string) string {
	if scratchDir == "" {
		scratchDir = os.TempDir()
	}
	test := filepath.Join(scratchDir, "_voice_test.aiff")

	seen := map[string]bool{}
	for _, v := range append([]string{s.cfg.Voice}, s.cfg.Fallbacks...) {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		if _, err := s.runner.Run(ctx, s.cfg.Command, s.sayArgs(v, probeText, test)...); err != nil {
			s.logger.Debug("Voice %s unavailable: %v", v, err)
			continue
		}
		_ = os.Remove(test)
		s.logger.Info("Using voice: %s", v)
		return v
	}
	s.logger.Info("Using system default voice (no -v).")
	return ""
}

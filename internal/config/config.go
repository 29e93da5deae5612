// internal/config/config.go
package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/markgrovs/anki-spanish/pkg/utils"
)

type Config struct {
	CSVPath       string `yaml:"csv_path"`
	SentencesPath string `yaml:"sentences_path"`

	Anki struct {
		URL            string   `yaml:"url"`
		Deck           string   `yaml:"deck"`
		Model          string   `yaml:"model"`
		SentenceDeck   string   `yaml:"sentence_deck"`
		SentenceModel  string   `yaml:"sentence_model"`
		Tags           []string `yaml:"tags"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
	} `yaml:"anki"`

	Media struct {
		ImagesDir             string `yaml:"images_dir"`
		AudioDir              string `yaml:"audio_dir"`
		GenderDir             string `yaml:"gender_dir"`
		SentencesAudioDir     string `yaml:"sentences_audio_dir"`
		CollageMaxCells       int    `yaml:"collage_max_cells"`
		DisableCollage        bool   `yaml:"disable_collage"`
		OpenImageSearch       bool   `yaml:"open_image_search"`
		AcquireTimeoutSeconds int    `yaml:"acquire_timeout_seconds"`
	} `yaml:"media"`

	Speech struct {
		Command        string   `yaml:"command"`
		FFmpeg         string   `yaml:"ffmpeg"`
		Voice          string   `yaml:"voice"`
		FallbackVoices []string `yaml:"fallback_voices"`
		Rate           int      `yaml:"rate"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
	} `yaml:"speech"`

	Lookup struct {
		Wiktionary        bool     `yaml:"wiktionary"`
		Espeak            bool     `yaml:"espeak"`
		Rules             bool     `yaml:"rules"`
		EspeakCommand     string   `yaml:"espeak_command"`
		EspeakVoice       string   `yaml:"espeak_voice"`
		Languages         []string `yaml:"languages"`
		TimeoutSeconds    int      `yaml:"timeout_seconds"`
		RequestsPerSecond float64  `yaml:"requests_per_second"`
		HintsPath         string   `yaml:"hints_path"`
		GuessVerbs        bool     `yaml:"guess_verbs"`
	} `yaml:"lookup"`
}

// Default returns a Config populated with repository defaults.
func Default() *Config {
	var cfg Config
	cfg.Lookup.Wiktionary = true
	cfg.Lookup.Espeak = true
	cfg.Lookup.Rules = true
	cfg.Media.OpenImageSearch = true
	applyDefaults(&cfg)
	return &cfg
}

// Load reads a YAML config file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(utils.ExpandPath(path))
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "read config %s", path)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, eris.Wrapf(err, "parse config %s", path)
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.CSVPath == "" {
		cfg.CSVPath = "625_structured.es.csv"
	}
	if cfg.SentencesPath == "" {
		cfg.SentencesPath = "data/sentences_generated.json"
	}
	if cfg.Anki.URL == "" {
		cfg.Anki.URL = "http://127.0.0.1:8765"
	}
	if cfg.Anki.Deck == "" {
		cfg.Anki.Deck = "My Spanish Deck::625"
	}
	if cfg.Anki.Model == "" {
		cfg.Anki.Model = "Picture Word"
	}
	if cfg.Anki.SentenceDeck == "" {
		cfg.Anki.SentenceDeck = "My Spanish Deck::Sentences"
	}
	if cfg.Anki.SentenceModel == "" {
		cfg.Anki.SentenceModel = "Cloze"
	}
	if len(cfg.Anki.Tags) == 0 {
		cfg.Anki.Tags = []string{"625:auto"}
	}
	if cfg.Anki.TimeoutSeconds <= 0 {
		cfg.Anki.TimeoutSeconds = 30
	}
	if cfg.Media.ImagesDir == "" {
		cfg.Media.ImagesDir = "media/images"
	}
	if cfg.Media.AudioDir == "" {
		cfg.Media.AudioDir = "media/audio"
	}
	if cfg.Media.GenderDir == "" {
		cfg.Media.GenderDir = "media/gender"
	}
	if cfg.Media.SentencesAudioDir == "" {
		cfg.Media.SentencesAudioDir = "media/sentences_audio"
	}
	if cfg.Media.CollageMaxCells <= 0 {
		cfg.Media.CollageMaxCells = 9
	}
	if cfg.Media.AcquireTimeoutSeconds <= 0 {
		cfg.Media.AcquireTimeoutSeconds = 180
	}
	if cfg.Speech.Command == "" {
		cfg.Speech.Command = "say"
	}
	if cfg.Speech.FFmpeg == "" {
		cfg.Speech.FFmpeg = "ffmpeg"
	}
	if cfg.Speech.Voice == "" {
		cfg.Speech.Voice = "Paulina"
	}
	if len(cfg.Speech.FallbackVoices) == 0 {
		cfg.Speech.FallbackVoices = []string{"Paulina", "Luciana", "Diego", "Monica", "Jorge"}
	}
	if cfg.Speech.Rate <= 0 {
		cfg.Speech.Rate = 150
	}
	if cfg.Speech.TimeoutSeconds <= 0 {
		cfg.Speech.TimeoutSeconds = 60
	}
	if cfg.Lookup.EspeakCommand == "" {
		cfg.Lookup.EspeakCommand = "espeak-ng"
	}
	if cfg.Lookup.EspeakVoice == "" {
		cfg.Lookup.EspeakVoice = "es"
	}
	if len(cfg.Lookup.Languages) == 0 {
		cfg.Lookup.Languages = []string{"es", "en"}
	}
	if cfg.Lookup.TimeoutSeconds <= 0 {
		cfg.Lookup.TimeoutSeconds = 10
	}
	if cfg.Lookup.RequestsPerSecond <= 0 {
		cfg.Lookup.RequestsPerSecond = 5
	}
	if cfg.Lookup.HintsPath == "" {
		cfg.Lookup.HintsPath = "prompts/pos_hints.yaml"
	}
}

func (c *Config) AnkiTimeout() time.Duration {
	return time.Duration(c.Anki.TimeoutSeconds) * time.Second
}

func (c *Config) LookupTimeout() time.Duration {
	return time.Duration(c.Lookup.TimeoutSeconds) * time.Second
}

func (c *Config) SpeechTimeout() time.Duration {
	return time.Duration(c.Speech.TimeoutSeconds) * time.Second
}

func (c *Config) AcquireTimeout() time.Duration {
	return time.Duration(c.Media.AcquireTimeoutSeconds) * time.Second
}

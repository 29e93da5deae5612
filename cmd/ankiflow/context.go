package main

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/markgrovs/anki-spanish/internal/anki"
	"github.com/markgrovs/anki-spanish/internal/config"
	"github.com/markgrovs/anki-spanish/internal/media"
	"github.com/markgrovs/anki-spanish/internal/scanner"
	"github.com/markgrovs/anki-spanish/pkg/logger"
)

type commandContext struct {
	configFlag *string
	verbose    *bool
	debug      *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logOnce sync.Once
	log     *logger.Logger
}

func newCommandContext(configFlag *string, verbose, debug *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
		debug:      debug,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		c.config, c.configErr = config.Load(path)
	})
	return c.config, c.configErr
}

// logger returns the process logger, tagged with a fresh run id.
func (c *commandContext) logger() *logger.Logger {
	c.logOnce.Do(func() {
		log := logger.New(logger.WithPrefix("[ankiflow] "))
		log.SetVerbose(c.verbose != nil && *c.verbose)
		if c.debug != nil && *c.debug {
			log.SetLevel(logger.LevelTrace)
		}
		c.log = log.With("run", uuid.NewString()[:8])
		c.log.Debug("Verbose logging enabled")
	})
	return c.log
}

func (c *commandContext) ankiService(cfg *config.Config) *anki.Service {
	return anki.NewService(c.logger(),
		anki.WithURL(cfg.Anki.URL),
		anki.WithTimeout(cfg.AnkiTimeout()),
	)
}

// resolver builds the media resolver; audioDir overrides the word audio
// folder when set.
func (c *commandContext) resolver(cfg *config.Config, audioDir string) *media.Resolver {
	dirs := media.Dirs{
		Images: cfg.Media.ImagesDir,
		Audio:  cfg.Media.AudioDir,
		Gender: cfg.Media.GenderDir,
	}
	if audioDir != "" {
		dirs.Audio = audioDir
	}
	var composer media.Composer
	if !cfg.Media.DisableCollage {
		composer = media.NewCollage(cfg.Media.CollageMaxCells, c.logger())
	}
	return media.NewResolver(dirs, scanner.New(c.logger()), composer, c.logger())
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

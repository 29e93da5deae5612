package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/markgrovs/anki-spanish/internal/deps"
	"github.com/markgrovs/anki-spanish/internal/media"
	"github.com/markgrovs/anki-spanish/internal/reconcile"
	"github.com/markgrovs/anki-spanish/internal/sentences"
	"github.com/markgrovs/anki-spanish/internal/speech"
	"github.com/markgrovs/anki-spanish/pkg/utils"
)

func newSentencesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sentences",
		Short: "Example sentence helpers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newSentencesBuildCommand(ctx))
	return cmd
}

func newSentencesBuildCommand(ctx *commandContext) *cobra.Command {
	var (
		file       string
		deck       string
		model      string
		limit      int
		regenAudio bool
		noAudio    bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Create or update cloze notes from the generated sentences file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if file != "" {
				cfg.SentencesPath = file
			}
			if deck != "" {
				cfg.Anki.SentenceDeck = deck
			}
			if model != "" {
				cfg.Anki.SentenceModel = model
			}
			log := ctx.logger()

			items, err := sentences.Load(utils.ExpandPath(cfg.SentencesPath))
			if err != nil {
				return err
			}

			runCtx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			svc := ctx.ankiService(cfg)
			if err := svc.CheckConnection(runCtx); err != nil {
				return err
			}
			schema, err := reconcile.ResolveSchema(runCtx, svc, cfg.Anki.SentenceModel, reconcile.ClozePlan)
			if err != nil {
				return err
			}
			if err := svc.CreateDeck(runCtx, cfg.Anki.SentenceDeck); err != nil {
				return eris.Wrapf(err, "create deck %s", cfg.Anki.SentenceDeck)
			}

			var audio sentences.Audio
			if !noAudio {
				resolver := ctx.resolver(cfg, cfg.Media.SentencesAudioDir)
				if err := resolver.EnsureDirs(); err != nil {
					return err
				}
				synth := speech.New(deps.ExecRunner{}, speech.Config{
					Command:   cfg.Speech.Command,
					FFmpeg:    cfg.Speech.FFmpeg,
					Voice:     cfg.Speech.Voice,
					Fallbacks: cfg.Speech.FallbackVoices,
					Rate:      cfg.Speech.Rate,
					Timeout:   cfg.SpeechTimeout(),
				}, log)
				audio = media.NewAudioMaker(resolver, synth, log)
			}

			stopSignals := handleSignals(runCtx, cancel, cancel, log)
			defer stopSignals()

			builder := sentences.NewBuilder(reconcile.New(svc, schema, log), schema, audio, sentences.Options{
				Deck:       cfg.Anki.SentenceDeck,
				Limit:      limit,
				ForceAudio: regenAudio,
			}, log)
			sum, err := builder.Run(runCtx, items)
			printSummary(cmd.OutOrStdout(), sum.Table())
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&file, "file", "", "Sentences JSON file (overrides config)")
	flags.StringVar(&deck, "deck", "", "Target deck (overrides config)")
	flags.StringVar(&model, "model", "", "Cloze note type (overrides config)")
	flags.IntVar(&limit, "limit", 0, "Process at most this many sentences (0 = all)")
	flags.BoolVar(&regenAudio, "regen-audio", false, "Regenerate sentence audio")
	flags.BoolVar(&noAudio, "no-audio", false, "Do not attach audio")
	return cmd
}

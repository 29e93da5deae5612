package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/markgrovs/anki-spanish/internal/config"
	"github.com/markgrovs/anki-spanish/internal/deps"
	"github.com/markgrovs/anki-spanish/internal/enrich"
	"github.com/markgrovs/anki-spanish/internal/media"
	"github.com/markgrovs/anki-spanish/internal/pipeline"
	"github.com/markgrovs/anki-spanish/internal/reconcile"
	"github.com/markgrovs/anki-spanish/internal/speech"
	"github.com/markgrovs/anki-spanish/internal/store"
	"github.com/markgrovs/anki-spanish/pkg/report"
	"github.com/markgrovs/anki-spanish/pkg/utils"
)

type buildFlags struct {
	csv               string
	deck              string
	model             string
	voice             string
	rate              int
	onlyMissing       bool
	regenAudio        bool
	recalcIPA         bool
	recalcGender      bool
	recalcPOS         bool
	enrichPOS         bool
	noOpenImageSearch bool
	limit             int
	noWikt            bool
	noEspeak          bool
	noRules           bool
	dryRun            bool
}

func (f *buildFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.csv, "csv", "", "Vocabulary CSV (overrides config)")
	flags.StringVar(&f.deck, "deck", "", "Target deck (overrides config)")
	flags.StringVar(&f.model, "model", "", "Note type (overrides config)")
	flags.StringVar(&f.voice, "voice", "", "Preferred TTS voice (overrides config)")
	flags.IntVar(&f.rate, "rate", 0, "Speaking rate in words per minute (overrides config)")
	flags.BoolVar(&f.onlyMissing, "only-missing", false, "Only process rows missing an image, audio, gender or IPA")
	flags.BoolVar(&f.regenAudio, "regen-audio", false, "Regenerate audio even when the file exists")
	flags.BoolVar(&f.recalcIPA, "recalc-ipa", false, "Recompute IPA even when present")
	flags.BoolVar(&f.recalcGender, "recalc-gender", false, "Recompute gender even when present")
	flags.BoolVar(&f.recalcPOS, "recalc-pos", false, "Recompute part of speech even when present")
	flags.BoolVar(&f.enrichPOS, "enrich-pos", false, "Fill missing part of speech")
	flags.BoolVar(&f.noOpenImageSearch, "no-open-image-search", false, "Skip rows without images instead of opening a search")
	flags.IntVar(&f.limit, "limit", 0, "Process at most this many rows (0 = all)")
	flags.BoolVar(&f.noWikt, "no-wikt", false, "Do not query Wiktionary")
	flags.BoolVar(&f.noEspeak, "no-espeak", false, "Do not use espeak-ng for IPA")
	flags.BoolVar(&f.noRules, "no-rules", false, "Do not use the built-in IPA rules")
	flags.BoolVar(&f.dryRun, "dry-run", false, "Show what would change without writing to Anki, audio or the CSV")
}

// apply overrides cfg with the flags that were set.
func (f *buildFlags) apply(cfg *config.Config) {
	if f.csv != "" {
		cfg.CSVPath = f.csv
	}
	if f.deck != "" {
		cfg.Anki.Deck = f.deck
	}
	if f.model != "" {
		cfg.Anki.Model = f.model
	}
	if f.voice != "" {
		cfg.Speech.Voice = f.voice
	}
	if f.rate > 0 {
		cfg.Speech.Rate = f.rate
	}
	if f.noWikt {
		cfg.Lookup.Wiktionary = false
	}
	if f.noEspeak {
		cfg.Lookup.Espeak = false
	}
	if f.noRules {
		cfg.Lookup.Rules = false
	}
	if f.noOpenImageSearch {
		cfg.Media.OpenImageSearch = false
	}
}

func (f *buildFlags) options(cfg *config.Config) config.Options {
	return config.Options{
		OnlyMissing:        f.onlyMissing,
		Limit:              f.limit,
		ForceTranscription: f.recalcIPA,
		ForceGender:        f.recalcGender,
		ForcePOS:           f.recalcPOS,
		ForceAudio:         f.regenAudio,
		EnrichPOS:          f.enrichPOS || f.recalcPOS,
		OpenImageSearch:    cfg.Media.OpenImageSearch,
		DryRun:             f.dryRun,
	}
}

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var flags buildFlags
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Enrich the vocabulary CSV and create or update Picture Word notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, ctx, &flags, nil)
		},
	}
	flags.register(cmd)
	return cmd
}

// runBuild checks every precondition, then drives the pipeline. newConfirm,
// when set, makes the run interactive.
func runBuild(cmd *cobra.Command, cc *commandContext, flags *buildFlags, newConfirm func(stop func()) pipeline.Confirm) error {
	cfg, err := cc.ensureConfig()
	if err != nil {
		return err
	}
	flags.apply(cfg)
	opts := flags.options(cfg)
	opts.SaveEachRecord = newConfirm != nil
	log := cc.logger()

	st := store.New(utils.ExpandPath(cfg.CSVPath), log)
	if err := st.Lock(); err != nil {
		return err
	}
	defer st.Unlock()
	records, err := st.Load()
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	svc := cc.ankiService(cfg)
	if err := svc.CheckConnection(runCtx); err != nil {
		return err
	}
	log.Info("Successfully connected to Anki")
	schema, err := reconcile.ResolveSchema(runCtx, svc, cfg.Anki.Model, reconcile.PictureWordPlan)
	if err != nil {
		return err
	}
	if opts.DryRun {
		log.Info("Dry run: nothing will be written to Anki")
	} else if err := svc.CreateDeck(runCtx, cfg.Anki.Deck); err != nil {
		return eris.Wrapf(err, "create deck %s", cfg.Anki.Deck)
	}

	lookups, err := newChains(log, cfg, opts.EnrichPOS)
	if err != nil {
		return err
	}
	resolver := cc.resolver(cfg, "")
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

	var driver *pipeline.Driver
	var acquirer pipeline.Acquirer
	if opts.OpenImageSearch && !opts.DryRun && report.IsTerminal(os.Stdout) {
		acquirer = media.NewAcquirer(resolver, media.BrowserOpener{Runner: deps.ExecRunner{}}, cfg.AcquireTimeout(), log,
			media.WithStopCheck(func() bool { return driver != nil && driver.Stopped() }))
	}

	pipeOpts := pipeline.Options{
		Run:  opts,
		Deck: cfg.Anki.Deck,
		Tags: cfg.Anki.Tags,
	}
	if newConfirm != nil {
		pipeOpts.Confirm = newConfirm(func() { driver.Stop() })
	}
	driver = pipeline.New(pipeline.Deps{
		Enricher:   enrich.New(log, opts, lookups.ipa, lookups.gender, lookups.pos),
		Images:     resolver,
		Acquirer:   acquirer,
		Audio:      media.NewAudioMaker(resolver, synth, log),
		Reconciler: reconcile.New(svc, schema, log, reconcile.WithDryRun(opts.DryRun)),
		Store:      st,
	}, pipeOpts, log)

	stopSignals := handleSignals(runCtx, driver.Stop, cancel, log)
	defer stopSignals()

	sum, err := driver.Run(runCtx, records)
	lookups.logCalls(log)
	printSummary(cmd.OutOrStdout(), sum.Table())
	return err
}

func printSummary(w io.Writer, table string) {
	fmt.Fprintln(w, "\nSummary:")
	fmt.Fprintln(w, table)
}

package main

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/markgrovs/anki-spanish/internal/config"
	"github.com/markgrovs/anki-spanish/internal/enrich"
	"github.com/markgrovs/anki-spanish/internal/store"
	"github.com/markgrovs/anki-spanish/pkg/report"
	"github.com/markgrovs/anki-spanish/pkg/utils"
)

func newEnrichCommand(ctx *commandContext) *cobra.Command {
	var (
		csvPath      string
		pos          bool
		guessVerbs   bool
		recalcIPA    bool
		recalcGender bool
		recalcPOS    bool
		noWikt       bool
		noEspeak     bool
	)

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Fill IPA, gender and optionally part of speech in the CSV without touching Anki",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if csvPath != "" {
				cfg.CSVPath = csvPath
			}
			if guessVerbs {
				cfg.Lookup.GuessVerbs = true
			}
			if noWikt {
				cfg.Lookup.Wiktionary = false
			}
			if noEspeak {
				cfg.Lookup.Espeak = false
			}
			log := ctx.logger()

			st := store.New(utils.ExpandPath(cfg.CSVPath), log)
			if err := st.Lock(); err != nil {
				return err
			}
			defer st.Unlock()
			records, err := st.Load()
			if err != nil {
				return err
			}

			opts := config.Options{
				EnrichPOS:          pos || recalcPOS,
				ForcePOS:           recalcPOS,
				ForceGender:        recalcGender,
				ForceTranscription: recalcIPA,
			}
			lookups, err := newChains(log, cfg, opts.EnrichPOS)
			if err != nil {
				return err
			}

			runCtx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			stopSignals := handleSignals(runCtx, cancel, cancel, log)
			defer stopSignals()

			e := enrich.New(log, opts, lookups.ipa, lookups.gender, lookups.pos)
			changed, runErr := e.EnrichAll(runCtx, records)
			if runErr == nil {
				if err := st.Save(records); err != nil {
					return err
				}
			}
			lookups.logCalls(log)

			counts := e.Counts()
			printSummary(cmd.OutOrStdout(), report.Counts([][]string{
				{"Rows", strconv.Itoa(len(records))},
				{"Rows changed", strconv.Itoa(changed)},
				{"POS filled", strconv.Itoa(counts.POS)},
				{"Gender filled", strconv.Itoa(counts.Gender)},
				{"IPA filled", strconv.Itoa(counts.IPA)},
			}))
			return runErr
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&csvPath, "csv", "", "Vocabulary CSV (overrides config)")
	flags.BoolVar(&pos, "pos", false, "Fill missing part of speech")
	flags.BoolVar(&guessVerbs, "guess-verbs", false, "Treat unknown -ar/-er/-ir words as verbs")
	flags.BoolVar(&recalcIPA, "recalc-ipa", false, "Recompute IPA even when present")
	flags.BoolVar(&recalcGender, "recalc-gender", false, "Recompute gender even when present")
	flags.BoolVar(&recalcPOS, "recalc-pos", false, "Recompute part of speech even when present")
	flags.BoolVar(&noWikt, "no-wikt", false, "Do not query Wiktionary")
	flags.BoolVar(&noEspeak, "no-espeak", false, "Do not use espeak-ng for IPA")
	return cmd
}

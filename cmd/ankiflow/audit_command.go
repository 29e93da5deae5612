package main

import (
	"github.com/spf13/cobra"

	"github.com/markgrovs/anki-spanish/internal/audit"
	"github.com/markgrovs/anki-spanish/internal/scanner"
	"github.com/markgrovs/anki-spanish/internal/store"
	"github.com/markgrovs/anki-spanish/pkg/utils"
)

func newAuditCommand(ctx *commandContext) *cobra.Command {
	var csvPath string
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Report what is missing in the CSV and media folders",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if csvPath != "" {
				cfg.CSVPath = csvPath
			}
			log := ctx.logger()

			records, err := store.New(utils.ExpandPath(cfg.CSVPath), log).Load()
			if err != nil {
				return err
			}

			rep, err := audit.Run(cmd.Context(), records, ctx.resolver(cfg, ""))
			if err != nil {
				return err
			}
			rep.Images, err = scanner.New(log).ScanDirectory(cmd.Context(), cfg.Media.ImagesDir)
			if err != nil {
				log.Warn("Could not scan %s: %v", cfg.Media.ImagesDir, err)
			}

			printSummary(cmd.OutOrStdout(), rep.Table())
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "Vocabulary CSV (overrides config)")
	return cmd
}

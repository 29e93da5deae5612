package main

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/markgrovs/anki-spanish/internal/config"
	"github.com/markgrovs/anki-spanish/internal/deps"
	"github.com/markgrovs/anki-spanish/internal/reconcile"
	"github.com/markgrovs/anki-spanish/pkg/report"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external programs, AnkiConnect and note types",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(requirements(cfg))
			rows := make([][]string, 0, len(statuses)+3)
			for _, s := range statuses {
				rows = append(rows, []string{s.Name, statusText(s.Available, s.Optional), firstNonEmpty(s.Detail, s.Description)})
			}
			rows = append(rows, ankiChecks(cmd.Context(), ctx, cfg)...)

			fmt.Fprintln(cmd.OutOrStdout(), report.Table([]string{"Check", "Status", "Detail"}, rows, nil))

			if missing := deps.Missing(statuses); len(missing) > 0 {
				return eris.Errorf("missing required programs: %s", strings.Join(missing, ", "))
			}
			return nil
		},
	}
}

func requirements(cfg *config.Config) []deps.Requirement {
	opener := "xdg-open"
	switch runtime.GOOS {
	case "darwin":
		opener = "open"
	case "windows":
		opener = "rundll32"
	}
	return []deps.Requirement{
		{Name: "say", Command: cfg.Speech.Command, Description: "Required for audio"},
		{Name: "ffmpeg", Command: cfg.Speech.FFmpeg, Description: "Required for audio"},
		{Name: "espeak-ng", Command: cfg.Lookup.EspeakCommand, Description: "IPA fallback", Optional: true},
		{Name: "browser opener", Command: opener, Description: "Opens image searches", Optional: true},
	}
}

func ankiChecks(parent context.Context, cc *commandContext, cfg *config.Config) [][]string {
	checkCtx, cancel := context.WithTimeout(parent, 10*time.Second)
	defer cancel()

	svc := cc.ankiService(cfg)
	if err := svc.CheckConnection(checkCtx); err != nil {
		return [][]string{{"AnkiConnect", "fail", cfg.Anki.URL}}
	}
	rows := [][]string{{"AnkiConnect", "ok", cfg.Anki.URL}}

	for _, m := range []struct {
		model string
		plan  reconcile.Plan
	}{
		{cfg.Anki.Model, reconcile.PictureWordPlan},
		{cfg.Anki.SentenceModel, reconcile.ClozePlan},
	} {
		schema, err := reconcile.ResolveSchema(checkCtx, svc, m.model, m.plan)
		if err != nil {
			rows = append(rows, []string{"Note type " + m.model, "fail", err.Error()})
			continue
		}
		rows = append(rows, []string{"Note type " + m.model, "ok", "identity field " + schema.Identity})
	}
	return rows
}

func statusText(available, optional bool) string {
	switch {
	case available:
		return "ok"
	case optional:
		return "missing (optional)"
	default:
		return "missing"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

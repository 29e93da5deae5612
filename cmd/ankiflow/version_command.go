package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/markgrovs/anki-spanish/pkg/updater"
	"github.com/markgrovs/anki-spanish/pkg/version"
)

func newVersionCommand(ctx *commandContext) *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprint(out, version.GetDetailedVersionInfo())
			if !check {
				return nil
			}

			info, err := updater.NewChecker(ctx.logger()).CheckForUpdates(cmd.Context())
			if err != nil {
				return err
			}
			if !info.IsAvailable {
				fmt.Fprintln(out, "You are running the latest version.")
				return nil
			}
			fmt.Fprintf(out, "A new version is available: %s\n", info.LatestVersion)
			if info.DownloadURL != "" {
				fmt.Fprintf(out, "Download: %s\n", info.DownloadURL)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Check GitHub for a newer release")
	return cmd
}

package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/markgrovs/anki-spanish/internal/pipeline"
	"github.com/markgrovs/anki-spanish/pkg/models"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	var flags buildFlags
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Like build, but confirm each note and save the CSV after every row",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			return runBuild(cmd, ctx, &flags, func(stop func()) pipeline.Confirm {
				return promptConfirm(in, out, stop)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

// promptConfirm shows the fields of each note and reads y/n/q. q declines
// the row and stops the run after it.
func promptConfirm(in *bufio.Reader, out io.Writer, stop func()) pipeline.Confirm {
	return func(rec *models.Record, fields map[string]string) bool {
		fmt.Fprintf(out, "\n%s\n", rec.Key())
		for _, name := range []string{"Article", "POS", "Gender", "IPA", "Notes"} {
			if v := fields[name]; v != "" {
				fmt.Fprintf(out, "  %-8s %s\n", name+":", v)
			}
		}
		for {
			fmt.Fprint(out, "Send to Anki? [Y/n/q] ")
			line, err := in.ReadString('\n')
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "", "y", "yes":
				if err != nil && line == "" {
					stop()
					return false
				}
				return true
			case "n", "no":
				return false
			case "q", "quit":
				stop()
				return false
			}
			if err != nil {
				stop()
				return false
			}
		}
	}
}

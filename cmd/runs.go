package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/foodwatch-nsw/offences-cli/internal/store"
)

// pipelineCommands is the display order for runs output.
var pipelineCommands = []string{"fetch", "parse", "geocode", "group"}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show the last recorded run of each pipeline command",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		var runs []*store.Run
		for _, command := range pipelineCommands {
			run, err := st.LastRun(ctx, command)
			if err != nil {
				return err
			}
			if run != nil {
				runs = append(runs, run)
			}
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs recorded.")
			return nil
		}

		formatRuns(os.Stdout, runs)
		return nil
	},
}

func formatRuns(w io.Writer, runs []*store.Run) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COMMAND\tSTARTED\tDURATION\tSTATS")
	for _, run := range runs {
		duration := "-"
		if run.FinishedAt != nil {
			duration = run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()
		}
		stats := "-"
		if run.Stats != nil {
			if data, err := json.Marshal(run.Stats); err == nil {
				stats = string(data)
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			run.Command,
			run.StartedAt.Format(time.RFC3339),
			duration,
			stats,
		)
	}
	tw.Flush() //nolint:errcheck
}

func init() {
	rootCmd.AddCommand(runsCmd)
}

package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/foodwatch-nsw/offences-cli/internal/dataset"
	"github.com/foodwatch-nsw/offences-cli/internal/parse"
	"github.com/foodwatch-nsw/offences-cli/internal/store"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse the scrape mirror into the notices dataset",
	Long:  "Walks the scrape mirror, parses every penalty notice and prosecution page, and merges the results into the notices file.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.StartRun(ctx, "parse")
		if err != nil {
			return err
		}

		res, err := parse.Mirror(ctx, cfg.Data.ScrapeDir, cfg.Fetch.ParseWorkers)
		if err != nil {
			return err
		}

		notices, err := dataset.LoadNoticesOrEmpty(cfg.Data.NoticesFile)
		if err != nil {
			return err
		}

		merge := dataset.Merge(notices, res.Notices)
		if err := dataset.SaveNotices(cfg.Data.NoticesFile, notices); err != nil {
			return err
		}

		stats := store.RunStats{
			Processed: res.Penalties + res.Prosecutions,
			Failed:    res.Errors,
			Added:     merge.Added,
			Updated:   merge.Updated,
		}
		if err := st.FinishRun(ctx, run.ID, stats); err != nil {
			return err
		}

		zap.L().Info("parse complete",
			zap.Int("penalties", res.Penalties),
			zap.Int("prosecutions", res.Prosecutions),
			zap.Int("unparseable", res.Errors),
			zap.Int("added", merge.Added),
			zap.Int("updated", merge.Updated),
			zap.Int("unchanged", merge.Unchanged),
			zap.Int("total", len(notices)),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/foodwatch-nsw/offences-cli/internal/dataset"
	"github.com/foodwatch-nsw/offences-cli/internal/grouper"
	"github.com/foodwatch-nsw/offences-cli/internal/store"
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Group geocoded notices by premises",
	Long:  "Clusters geocoded notices into location groups by coordinates and name similarity, and writes the grouped locations file the map renders.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		notices, err := dataset.LoadNotices(cfg.Data.NoticesFile)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.StartRun(ctx, "group")
		if err != nil {
			return err
		}

		res := grouper.Group(notices)
		if err := dataset.SaveGroups(cfg.Data.GroupsFile, res.Groups); err != nil {
			return err
		}

		stats := store.RunStats{
			Processed: len(notices),
			Groups:    len(res.Groups),
			Skipped:   res.Skipped,
		}
		if err := st.FinishRun(ctx, run.ID, stats); err != nil {
			return err
		}

		zap.L().Info("group complete",
			zap.Int("notices", len(notices)),
			zap.Int("groups", len(res.Groups)),
			zap.Int("ungeocoded", res.Skipped),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(groupCmd)
}

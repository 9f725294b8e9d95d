package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/foodwatch-nsw/offences-cli/internal/dataset"
)

var previewOldFile string

var previewCmd = &cobra.Command{
	Use:   "preview [old.json [new.json]]",
	Short: "Show how the dataset changed since a previous snapshot",
	Long:  "Diffs the current notices file against an earlier snapshot and lists added, removed and changed notices, for review before publishing.",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		oldFile := previewOldFile
		if oldFile == "" {
			oldFile = cfg.Data.NoticesFile + ".bak"
		}
		newFile := cfg.Data.NoticesFile
		if len(args) > 0 {
			oldFile = args[0]
		}
		if len(args) > 1 {
			newFile = args[1]
		}

		old, err := dataset.LoadNoticesOrEmpty(oldFile)
		if err != nil {
			return err
		}
		current, err := dataset.LoadNotices(newFile)
		if err != nil {
			return err
		}

		diff := dataset.DiffNotices(old, current)

		fmt.Printf("added: %d, removed: %d, changed: %d\n",
			len(diff.Added), len(diff.Removed), len(diff.Changed))
		for _, id := range diff.Added {
			fmt.Printf("  + %s: %s\n", id, current[id].Name)
		}
		for _, id := range diff.Removed {
			fmt.Printf("  - %s: %s\n", id, old[id].Name)
		}
		for _, id := range diff.Changed {
			fields := dataset.ChangedFields(old[id], current[id])
			fmt.Printf("  ~ %s: %s (%s)\n", id, current[id].Name, strings.Join(fields, ", "))
		}
		return nil
	},
}

func init() {
	previewCmd.Flags().StringVar(&previewOldFile, "old", "", "snapshot to diff against (default <notices_file>.bak)")
	rootCmd.AddCommand(previewCmd)
}

package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/foodwatch-nsw/offences-cli/internal/dataset"
	"github.com/foodwatch-nsw/offences-cli/internal/export"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export pipeline output in other formats",
}

var exportGeoJSONCmd = &cobra.Command{
	Use:   "geojson",
	Short: "Write the grouped locations as GeoJSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		groups, err := dataset.LoadGroups(cfg.Data.GroupsFile)
		if err != nil {
			return err
		}

		out := exportOutput
		if out == "" {
			out = "grouped_locations.geojson"
		}
		if err := export.WriteGroupsGeoJSON(out, groups); err != nil {
			return err
		}
		zap.L().Info("geojson written", zap.String("file", out), zap.Int("groups", len(groups)))
		return nil
	},
}

var exportXLSXCmd = &cobra.Command{
	Use:   "xlsx",
	Short: "Write the failed-geocoding report as a spreadsheet",
	RunE: func(cmd *cobra.Command, _ []string) error {
		failed, err := dataset.LoadFailed(cfg.Data.FailedFile)
		if err != nil {
			return err
		}

		out := exportOutput
		if out == "" {
			out = "failed_geocoding.xlsx"
		}
		if err := export.WriteFailedXLSX(out, failed); err != nil {
			return err
		}
		zap.L().Info("xlsx written", zap.String("file", out), zap.Int("rows", len(failed)))
		return nil
	},
}

func init() {
	exportCmd.PersistentFlags().StringVarP(&exportOutput, "output", "o", "", "output file (default depends on format)")
	exportCmd.AddCommand(exportGeoJSONCmd)
	exportCmd.AddCommand(exportXLSXCmd)
	rootCmd.AddCommand(exportCmd)
}

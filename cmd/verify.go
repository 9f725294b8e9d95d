package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/foodwatch-nsw/offences-cli/internal/address"
	"github.com/foodwatch-nsw/offences-cli/internal/dataset"
	"github.com/foodwatch-nsw/offences-cli/internal/verify"
)

var verifyStrict bool

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the grouped output for inconsistencies",
	Long:  "Cross-checks the notices dataset against the grouped locations: missing notices, duplicate coordinates, suspected group splits, and duplicated members.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		notices, err := dataset.LoadNotices(cfg.Data.NoticesFile)
		if err != nil {
			return err
		}
		groups, err := dataset.LoadGroups(cfg.Data.GroupsFile)
		if err != nil {
			return err
		}

		expander := address.NewExpander()
		if cfg.Data.AbbreviationsFile != "" {
			if expander, err = address.LoadExpander(cfg.Data.AbbreviationsFile); err != nil {
				return err
			}
		}

		report := verify.Run(notices, groups, expander)

		fmt.Printf("notices: %d (%d geocoded)\n", report.Notices, report.Geocoded)
		fmt.Printf("groups: %d (%d members)\n", report.Groups, report.GroupMembers)

		if report.OK() {
			fmt.Println("all checks passed")
			return nil
		}

		for _, issue := range report.Issues {
			fmt.Printf("[%s] %s\n", issue.Check, issue.Message)
		}
		if verifyStrict {
			return eris.Errorf("verification found %d issues", len(report.Issues))
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyStrict, "strict", false, "exit non-zero when issues are found")
	rootCmd.AddCommand(verifyCmd)
}

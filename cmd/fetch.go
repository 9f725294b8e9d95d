package main

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/foodwatch-nsw/offences-cli/internal/dataset"
	"github.com/foodwatch-nsw/offences-cli/internal/fetch"
	"github.com/foodwatch-nsw/offences-cli/internal/model"
	"github.com/foodwatch-nsw/offences-cli/internal/parse"
	"github.com/foodwatch-nsw/offences-cli/internal/resilience"
	"github.com/foodwatch-nsw/offences-cli/internal/store"
)

var (
	fetchLimit  int
	fetchDryRun bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download this week's penalty notice pages into the scrape mirror",
	Long:  "Fetches the weekly listing page, follows every penalty notice link, and saves each page under the scrape mirror. Pages already mirrored are skipped; new pages are parsed and merged into the notices dataset.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		client := fetch.NewClient(
			fetch.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Fetch.TimeoutSecs) * time.Second}),
			fetch.WithUserAgent(cfg.Fetch.UserAgent),
			fetch.WithMinInterval(time.Duration(cfg.Fetch.MinIntervalMs)*time.Millisecond),
			fetch.WithRetry(resilience.FromRetryConfig(cfg.Fetch.RetryAttempts, cfg.Fetch.RetryStepMs, 0)),
		)

		weeklyURL := cfg.Fetch.BaseURL + cfg.Fetch.WeeklyPath
		zap.L().Info("fetching weekly listing", zap.String("url", weeklyURL))
		page, err := client.Get(ctx, weeklyURL)
		if err != nil {
			return err
		}

		links, err := fetch.NoticeLinks(page, cfg.Fetch.BaseURL)
		if err != nil {
			return err
		}
		if fetchLimit > 0 && len(links) > fetchLimit {
			links = links[:fetchLimit]
		}
		zap.L().Info("weekly listing parsed", zap.Int("links", len(links)))

		if fetchDryRun {
			for _, link := range links {
				fmt.Println(link)
			}
			return nil
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.StartRun(ctx, "fetch")
		if err != nil {
			return err
		}

		var stats store.RunStats
		var parsed []*model.Notice
		for _, link := range links {
			dst := parse.PenaltyPagePath(cfg.Data.ScrapeDir, path.Base(link))
			if _, err := os.Stat(dst); err == nil {
				stats.Skipped++
				continue
			}

			body, err := client.Get(ctx, link)
			if err != nil {
				if ctx.Err() != nil {
					return err
				}
				zap.L().Warn("page download failed", zap.String("url", link), zap.Error(err))
				stats.Failed++
				continue
			}

			if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
				return eris.Wrapf(err, "fetch: create mirror dir for %s", dst)
			}
			if err := os.WriteFile(dst, body, 0o644); err != nil {
				return eris.Wrapf(err, "fetch: write %s", dst)
			}
			stats.Processed++

			n, err := parse.PenaltyNotice(body)
			if err != nil {
				zap.L().Warn("downloaded page did not parse", zap.String("url", link), zap.Error(err))
				stats.Failed++
				continue
			}
			parsed = append(parsed, n)
		}

		if len(parsed) > 0 {
			notices, err := dataset.LoadNoticesOrEmpty(cfg.Data.NoticesFile)
			if err != nil {
				return err
			}
			merge := dataset.Merge(notices, parsed)
			if err := dataset.SaveNotices(cfg.Data.NoticesFile, notices); err != nil {
				return err
			}
			stats.Added = merge.Added
			stats.Updated = merge.Updated
		}

		if err := st.FinishRun(ctx, run.ID, stats); err != nil {
			return err
		}

		zap.L().Info("fetch complete",
			zap.Int("downloaded", stats.Processed),
			zap.Int("already_mirrored", stats.Skipped),
			zap.Int("failed", stats.Failed),
			zap.Int("added", stats.Added),
			zap.Int("updated", stats.Updated),
		)
		return nil
	},
}

func init() {
	fetchCmd.Flags().IntVar(&fetchLimit, "limit", 0, "download at most N pages (0 = all)")
	fetchCmd.Flags().BoolVar(&fetchDryRun, "dry-run", false, "list the notice URLs without downloading")
	rootCmd.AddCommand(fetchCmd)
}

package main

import (
	"context"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/foodwatch-nsw/offences-cli/internal/dataset"
	"github.com/foodwatch-nsw/offences-cli/internal/geocode"
	"github.com/foodwatch-nsw/offences-cli/internal/model"
	"github.com/foodwatch-nsw/offences-cli/internal/resilience"
	"github.com/foodwatch-nsw/offences-cli/internal/store"
	"github.com/foodwatch-nsw/offences-cli/pkg/nominatim"
)

var geocodeLimit int

var geocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Resolve coordinates for ungeocoded notices",
	Long:  "Fills in coordinates for every notice in the dataset, cache first and then Nominatim, and writes the failed-geocoding report for addresses no variant could resolve.",
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

		run, err := st.StartRun(ctx, "geocode")
		if err != nil {
			return err
		}

		cache := geocode.NewCache()
		persisted, err := st.LoadCache(ctx)
		if err != nil {
			return err
		}
		cache.Warm(persisted)
		warmed := cache.WarmFromNotices(notices)
		zap.L().Info("cache warmed",
			zap.Int("persisted", len(persisted)),
			zap.Int("from_notices", warmed),
			zap.Int("total", cache.Len()),
		)

		client := nominatim.NewClient(
			nominatim.WithBaseURL(cfg.Nominatim.BaseURL),
			nominatim.WithUserAgent(cfg.Nominatim.UserAgent),
			nominatim.WithEmail(cfg.Nominatim.Email),
			nominatim.WithMinInterval(time.Duration(cfg.Nominatim.MinIntervalMs)*time.Millisecond),
		)
		breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			OnStateChange: func(from, to resilience.CircuitState) {
				zap.L().Warn("nominatim circuit state changed",
					zap.Stringer("from", from),
					zap.Stringer("to", to),
				)
			},
		})
		resolver := geocode.NewResolver(client, cache,
			geocode.WithCacheStore(st),
			geocode.WithRetry(resilience.FromRetryConfig(cfg.Nominatim.RetryAttempts, cfg.Nominatim.RetryStepMs, 0)),
			geocode.WithBreaker(breaker),
		)

		stats, failed, resolveErr := geocodeNotices(ctx, resolver, notices, geocodeLimit)

		// Coordinates resolved before a cancellation still get persisted,
		// so an interrupted run is not wasted work.
		if err := dataset.SaveNotices(cfg.Data.NoticesFile, notices); err != nil {
			return err
		}
		if err := dataset.SaveFailed(cfg.Data.FailedFile, failed); err != nil {
			return err
		}
		if err := st.FinishRun(context.WithoutCancel(ctx), run.ID, stats); err != nil {
			return err
		}
		if resolveErr != nil {
			return resolveErr
		}

		zap.L().Info("geocode complete",
			zap.Int("processed", stats.Processed),
			zap.Int("already_geocoded", stats.Already),
			zap.Int("cache_hits", stats.CacheHits),
			zap.Int("resolved", stats.Resolved),
			zap.Int("failed", stats.Failed),
			zap.Int("no_address", stats.Skipped),
		)
		return nil
	},
}

// geocodeNotices resolves each notice in id order, stopping after limit
// provider lookups when limit is positive. On a resolver error (context
// cancellation) it stops early and returns the stats and failures collected
// so far alongside the error.
func geocodeNotices(ctx context.Context, resolver *geocode.Resolver, notices map[string]*model.Notice, limit int) (store.RunStats, []model.FailedGeocode, error) {
	ids := make([]string, 0, len(notices))
	for id := range notices {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var stats store.RunStats
	var failed []model.FailedGeocode
	lookups := 0
	for _, id := range ids {
		n := notices[id]
		if limit > 0 && lookups >= limit {
			break
		}
		stats.Processed++

		res, err := resolver.Resolve(ctx, n)
		if err != nil {
			return stats, failed, err
		}
		switch res.Outcome {
		case geocode.OutcomeNoAddress:
			stats.Skipped++
		case geocode.OutcomeAlreadyGeocoded:
			stats.Already++
		case geocode.OutcomeCacheHit:
			stats.CacheHits++
		case geocode.OutcomeResolved:
			stats.Resolved++
			lookups++
		case geocode.OutcomeFailed:
			stats.Failed++
			lookups++
			failed = append(failed, model.FailedGeocode{
				PenaltyNoticeNumber: n.PenaltyNoticeNumber,
				Name:                n.Name,
				Address:             n.Address.Full,
				VariantsTried:       res.Variants,
			})
			zap.L().Warn("geocoding failed",
				zap.String("id", n.PenaltyNoticeNumber),
				zap.String("address", n.Address.Full),
				zap.Int("variants", len(res.Variants)),
			)
		}
	}
	return stats, failed, nil
}

func init() {
	geocodeCmd.Flags().IntVar(&geocodeLimit, "limit", 0, "stop after N provider lookups (0 = unlimited)")
	rootCmd.AddCommand(geocodeCmd)
}

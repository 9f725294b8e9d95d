// Package store persists the geocode cache and run bookkeeping across
// weekly pipeline runs, behind SQLite (default) or Postgres.
package store

import (
	"context"
	"time"

	"github.com/foodwatch-nsw/offences-cli/internal/geocode"
)

// RunStats counts what a pipeline command did. Commands fill the fields
// that apply to them and leave the rest zero.
type RunStats struct {
	Processed int `json:"processed,omitempty"`
	Already   int `json:"already_geocoded,omitempty"`
	CacheHits int `json:"cache_hits,omitempty"`
	Resolved  int `json:"resolved,omitempty"`
	Failed    int `json:"failed,omitempty"`
	Skipped   int `json:"skipped,omitempty"`
	Added     int `json:"added,omitempty"`
	Updated   int `json:"updated,omitempty"`
	Groups    int `json:"groups,omitempty"`
}

// Run is one recorded invocation of a pipeline command.
type Run struct {
	ID         string
	Command    string
	Stats      *RunStats
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Store defines the persistence interface for the offence pipeline. The
// geocode cache is append-only: PutCache never overwrites an existing key,
// so the first resolution of an address wins across runs.
type Store interface {
	// Geocode cache
	LoadCache(ctx context.Context) (map[string]geocode.Coord, error)
	PutCache(ctx context.Context, key string, lat, lon float64) error
	CacheLen(ctx context.Context) (int, error)

	// Run bookkeeping
	StartRun(ctx context.Context, command string) (*Run, error)
	FinishRun(ctx context.Context, runID string, stats RunStats) error
	LastRun(ctx context.Context, command string) (*Run, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/foodwatch-nsw/offences-cli/internal/geocode"
)

// MemoryStore keeps the cache and run log in memory only. Used when
// store.driver=none: the pipeline still works, nothing survives the
// process.
type MemoryStore struct {
	mu    sync.Mutex
	cache map[string]geocode.Coord
	runs  []*Run
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{cache: make(map[string]geocode.Coord)}
}

func (s *MemoryStore) LoadCache(_ context.Context) (map[string]geocode.Coord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]geocode.Coord, len(s.cache))
	for k, v := range s.cache {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) PutCache(_ context.Context, key string, lat, lon float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cache[key]; ok {
		return nil
	}
	s.cache[key] = geocode.Coord{Lat: lat, Lon: lon}
	return nil
}

func (s *MemoryStore) CacheLen(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache), nil
}

func (s *MemoryStore) StartRun(_ context.Context, command string) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := &Run{
		ID:        uuid.NewString(),
		Command:   command,
		StartedAt: time.Now().UTC(),
	}
	s.runs = append(s.runs, run)
	return run, nil
}

func (s *MemoryStore) FinishRun(_ context.Context, runID string, stats RunStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, run := range s.runs {
		if run.ID == runID {
			now := time.Now().UTC()
			run.FinishedAt = &now
			run.Stats = &stats
			return nil
		}
	}
	return eris.Errorf("store: run %s not found", runID)
}

func (s *MemoryStore) LastRun(_ context.Context, command string) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.runs) - 1; i >= 0; i-- {
		if s.runs[i].Command == command {
			return s.runs[i], nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) Migrate(_ context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

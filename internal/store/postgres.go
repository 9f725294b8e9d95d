package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/foodwatch-nsw/offences-cli/internal/geocode"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 5
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	address     TEXT PRIMARY KEY,
	lat         DOUBLE PRECISION NOT NULL,
	lon         DOUBLE PRECISION NOT NULL,
	resolved_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS runs (
	id          UUID PRIMARY KEY,
	command     TEXT NOT NULL,
	stats       JSONB,
	started_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_runs_command ON runs(command, started_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) LoadCache(ctx context.Context) (map[string]geocode.Coord, error) {
	rows, err := s.pool.Query(ctx, `SELECT address, lat, lon FROM geocode_cache`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load cache")
	}
	defer rows.Close()

	entries := make(map[string]geocode.Coord)
	for rows.Next() {
		var addr string
		var c geocode.Coord
		if err := rows.Scan(&addr, &c.Lat, &c.Lon); err != nil {
			return nil, eris.Wrap(err, "postgres: scan cache entry")
		}
		entries[addr] = c
	}
	return entries, eris.Wrap(rows.Err(), "postgres: load cache iterate")
}

// PutCache records a resolved address. An already-cached address keeps its
// original coordinates.
func (s *PostgresStore) PutCache(ctx context.Context, key string, lat, lon float64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO geocode_cache (address, lat, lon) VALUES ($1, $2, $3)
		 ON CONFLICT (address) DO NOTHING`,
		key, lat, lon,
	)
	return eris.Wrapf(err, "postgres: put cache %s", key)
}

func (s *PostgresStore) CacheLen(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM geocode_cache`).Scan(&n)
	return n, eris.Wrap(err, "postgres: cache len")
}

func (s *PostgresStore) StartRun(ctx context.Context, command string) (*Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, command, started_at) VALUES ($1, $2, $3)`,
		id, command, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert run for %s", command)
	}

	return &Run{ID: id, Command: command, StartedAt: now}, nil
}

func (s *PostgresStore) FinishRun(ctx context.Context, runID string, stats RunStats) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal stats")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET stats = $1, finished_at = $2 WHERE id = $3`,
		statsJSON, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: finish run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

// LastRun returns the most recently started run of a command, or nil when
// the command has never run.
func (s *PostgresStore) LastRun(ctx context.Context, command string) (*Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, command, stats, started_at, finished_at FROM runs
		 WHERE command = $1 ORDER BY started_at DESC LIMIT 1`,
		command,
	)

	var r Run
	var statsJSON []byte
	err := row.Scan(&r.ID, &r.Command, &statsJSON, &r.StartedAt, &r.FinishedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: last run for %s", command)
	}

	if len(statsJSON) > 0 {
		r.Stats = &RunStats{}
		if err := json.Unmarshal(statsJSON, r.Stats); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal stats")
		}
	}
	return &r, nil
}

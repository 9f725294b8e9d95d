package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/foodwatch-nsw/offences-cli/internal/geocode"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	address     TEXT PRIMARY KEY,
	lat         REAL NOT NULL,
	lon         REAL NOT NULL,
	resolved_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	command     TEXT NOT NULL,
	stats       TEXT,
	started_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	finished_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_runs_command ON runs(command, started_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) LoadCache(ctx context.Context) (map[string]geocode.Coord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT address, lat, lon FROM geocode_cache`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load cache")
	}
	defer rows.Close()

	entries := make(map[string]geocode.Coord)
	for rows.Next() {
		var addr string
		var c geocode.Coord
		if err := rows.Scan(&addr, &c.Lat, &c.Lon); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan cache entry")
		}
		entries[addr] = c
	}
	return entries, eris.Wrap(rows.Err(), "sqlite: load cache iterate")
}

// PutCache records a resolved address. An already-cached address keeps its
// original coordinates.
func (s *SQLiteStore) PutCache(ctx context.Context, key string, lat, lon float64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO geocode_cache (address, lat, lon) VALUES (?, ?, ?)
		 ON CONFLICT(address) DO NOTHING`,
		key, lat, lon,
	)
	return eris.Wrapf(err, "sqlite: put cache %s", key)
}

func (s *SQLiteStore) CacheLen(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM geocode_cache`).Scan(&n)
	return n, eris.Wrap(err, "sqlite: cache len")
}

func (s *SQLiteStore) StartRun(ctx context.Context, command string) (*Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, command, started_at) VALUES (?, ?, ?)`,
		id, command, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert run for %s", command)
	}

	return &Run{ID: id, Command: command, StartedAt: now}, nil
}

func (s *SQLiteStore) FinishRun(ctx context.Context, runID string, stats RunStats) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal stats")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET stats = ?, finished_at = ? WHERE id = ?`,
		string(statsJSON), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: finish run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

// LastRun returns the most recently started run of a command, or nil when
// the command has never run.
func (s *SQLiteStore) LastRun(ctx context.Context, command string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, command, stats, started_at, finished_at FROM runs
		 WHERE command = ? ORDER BY started_at DESC LIMIT 1`,
		command,
	)

	var r Run
	var statsJSON sql.NullString
	var finishedAt sql.NullTime
	err := row.Scan(&r.ID, &r.Command, &statsJSON, &r.StartedAt, &finishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: last run for %s", command)
	}

	if statsJSON.Valid {
		r.Stats = &RunStats{}
		if err := json.Unmarshal([]byte(statsJSON.String), r.Stats); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal stats")
		}
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		r.FinishedAt = &t
	}
	return &r, nil
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

// Package store provides SQLite-based caching of fetched news and statistics
// snapshots, so the UI can be served without hitting upstream APIs on every
// request.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Schema is the SQLite schema for the snapshot cache.
const Schema = `
CREATE TABLE IF NOT EXISTS news_snapshots (
    country_code TEXT PRIMARY KEY,
    payload      TEXT NOT NULL,
    fetched_at   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS stats_snapshots (
    iso3         TEXT PRIMARY KEY,
    payload      TEXT NOT NULL,
    fetched_at   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_news_fetched ON news_snapshots(fetched_at);
CREATE INDEX IF NOT EXISTS idx_stats_fetched ON stats_snapshots(fetched_at);
`

// Store persists serialized fetch results keyed by country code.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates a Store at the given path and initializes the schema.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL keeps concurrent reads cheap while the fetch loop writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// GetNews returns the cached news payload for a country when it is younger
// than maxAge. The second return value reports a fresh hit.
func (s *Store) GetNews(ctx context.Context, countryCode string, maxAge time.Duration) ([]byte, bool, error) {
	return s.get(ctx, "SELECT payload, fetched_at FROM news_snapshots WHERE country_code = ?", countryCode, maxAge)
}

// PutNews stores a news payload for a country, replacing any previous one.
func (s *Store) PutNews(ctx context.Context, countryCode string, payload []byte) error {
	return s.put(ctx, "INSERT OR REPLACE INTO news_snapshots (country_code, payload, fetched_at) VALUES (?, ?, ?)", countryCode, payload)
}

// GetStats returns the cached stats payload for an ISO-3 code when it is
// younger than maxAge.
func (s *Store) GetStats(ctx context.Context, iso3 string, maxAge time.Duration) ([]byte, bool, error) {
	return s.get(ctx, "SELECT payload, fetched_at FROM stats_snapshots WHERE iso3 = ?", iso3, maxAge)
}

// PutStats stores a stats payload for an ISO-3 code.
func (s *Store) PutStats(ctx context.Context, iso3 string, payload []byte) error {
	return s.put(ctx, "INSERT OR REPLACE INTO stats_snapshots (iso3, payload, fetched_at) VALUES (?, ?, ?)", iso3, payload)
}

func (s *Store) get(ctx context.Context, query, key string, maxAge time.Duration) ([]byte, bool, error) {
	var payload []byte
	var fetchedAt int64
	err := s.db.QueryRowContext(ctx, query, key).Scan(&payload, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if s.now().Sub(time.Unix(fetchedAt, 0)) >= maxAge {
		return nil, false, nil
	}
	return payload, true, nil
}

func (s *Store) put(ctx context.Context, query, key string, payload []byte) error {
	_, err := s.db.ExecContext(ctx, query, key, payload, s.now().Unix())
	return err
}

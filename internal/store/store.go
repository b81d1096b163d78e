// Package store persists fetched bars in SQLite so repeated analyses avoid
// refetching from providers.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure Go driver, no CGO

	"tascope/internal/market"
)

// Store is a SQLite-backed bar cache keyed by (symbol, interval, ts).
type Store struct {
	db *sql.DB
}

// Open creates the database file (and parent directory) if needed and runs
// migrations. WAL and busy_timeout avoid lock errors under concurrent reads.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS bars (
		symbol TEXT NOT NULL,
		interval TEXT NOT NULL,
		ts INTEGER NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume REAL NOT NULL,
		fetched_at INTEGER NOT NULL,
		PRIMARY KEY (symbol, interval, ts)
	);

	CREATE INDEX IF NOT EXISTS idx_bars_symbol_ts ON bars(symbol, interval, ts);

	CREATE TABLE IF NOT EXISTS fetches (
		symbol TEXT NOT NULL,
		interval TEXT NOT NULL,
		range_start INTEGER NOT NULL,
		fetched_at INTEGER NOT NULL,
		PRIMARY KEY (symbol, interval)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Put upserts every bar of the series in one transaction and records the
// window the fetch covered. rangeStart is the start of the requested period;
// zero means unbounded. Repeated puts only ever widen the recorded coverage.
func (s *Store) Put(ctx context.Context, series *market.Series, rangeStart time.Time) error {
	if series == nil || series.Len() == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO bars (symbol, interval, ts, open, high, low, close, volume, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(symbol, interval, ts) DO UPDATE SET
		open = excluded.open, high = excluded.high, low = excluded.low,
		close = excluded.close, volume = excluded.volume, fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Unix()
	for _, b := range series.Bars {
		if _, err := stmt.ExecContext(ctx, series.Symbol, series.Interval, b.Ts.UTC().Unix(),
			b.Open, b.High, b.Low, b.Close, b.Volume, now); err != nil {
			return fmt.Errorf("upsert bar: %w", err)
		}
	}

	start := int64(0)
	if !rangeStart.IsZero() {
		start = rangeStart.UTC().Unix()
	}
	if _, err := tx.ExecContext(ctx, `
	INSERT INTO fetches (symbol, interval, range_start, fetched_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(symbol, interval) DO UPDATE SET
		range_start = MIN(fetches.range_start, excluded.range_start),
		fetched_at = excluded.fetched_at
	`, series.Symbol, series.Interval, start, now); err != nil {
		return fmt.Errorf("record fetch: %w", err)
	}
	return tx.Commit()
}

// Get returns cached bars for the symbol/interval inside [from, to], ascending.
// A zero `from` means unbounded.
func (s *Store) Get(ctx context.Context, symbol, interval string, from, to time.Time) (*market.Series, error) {
	query := `
	SELECT ts, open, high, low, close, volume
	FROM bars
	WHERE symbol = ? AND interval = ? AND ts >= ? AND ts <= ?
	ORDER BY ts
	`
	lo := int64(0)
	if !from.IsZero() {
		lo = from.UTC().Unix()
	}
	rows, err := s.db.QueryContext(ctx, query, symbol, interval, lo, to.UTC().Unix())
	if err != nil {
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer func() { _ = rows.Close() }()

	series := &market.Series{Symbol: symbol, Interval: interval}
	for rows.Next() {
		var ts int64
		var b market.Bar
		if err := rows.Scan(&ts, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		b.Symbol = symbol
		b.Ts = time.Unix(ts, 0).UTC()
		series.Bars = append(series.Bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bars: %w", err)
	}
	return series, nil
}

// Coverage reports the start of the widest window ever fetched for the
// symbol/interval and when it was last refreshed. A zero fetchedAt means
// nothing is cached; a zero rangeStart means an unbounded fetch was cached.
func (s *Store) Coverage(ctx context.Context, symbol, interval string) (rangeStart, fetchedAt time.Time, err error) {
	var start, fetched int64
	err = s.db.QueryRowContext(ctx,
		`SELECT range_start, fetched_at FROM fetches WHERE symbol = ? AND interval = ?`,
		symbol, interval).Scan(&start, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("query coverage: %w", err)
	}
	if start > 0 {
		rangeStart = time.Unix(start, 0).UTC()
	}
	return rangeStart, time.Unix(fetched, 0).UTC(), nil
}

// Count returns the number of cached bars for the symbol/interval.
func (s *Store) Count(ctx context.Context, symbol, interval string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bars WHERE symbol = ? AND interval = ?`,
		symbol, interval).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count bars: %w", err)
	}
	return n, nil
}

// Package store provides SQL persistence for reelfind's search counters.
//
// Two drivers are supported: "sqlite" (modernc.org/sqlite, a file path or
// ":memory:") and "postgres" (lib/pq, a connection string).
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store handles SQL persistence. NOT an interface - concrete type.
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type Store struct {
	db     *sql.DB
	driver string
	mu     sync.RWMutex
}

// SearchCount is one counter row: how often a normalized term was searched,
// plus the representative movie recorded for it.
type SearchCount struct {
	Term      string
	Count     int
	MovieID   int64
	Title     string
	PosterURL string
	UpdatedAt time.Time
}

// Open connects to the database and creates tables if they don't exist.
// File-backed SQLite uses WAL mode.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case "", "sqlite3":
		driver = DriverSQLite
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("open database: unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// An in-memory SQLite database exists per connection; pin the pool to one
	// so every query sees the same tables.
	if driver == DriverSQLite && dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if driver == DriverSQLite && dsn != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db, driver: driver}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

// Driver returns the database driver name.
func (s *Store) Driver() string {
	return s.driver
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS search_counts (
		term TEXT PRIMARY KEY,
		count INTEGER NOT NULL DEFAULT 0,
		movie_id BIGINT NOT NULL DEFAULT 0,
		title TEXT NOT NULL DEFAULT '',
		poster_url TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMP NOT NULL
	)`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	if _, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_search_counts_count ON search_counts(count DESC)`); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Close closes the database connection.
// Acquires the write lock so no operation is in flight.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// IncrementSearch upserts the counter row for rec.Term: inserts it with
// count 1, or bumps count and refreshes the representative movie.
// rec.Count and rec.UpdatedAt are ignored.
func (s *Store) IncrementSearch(ctx context.Context, rec SearchCount) error {
	if rec.Term == "" {
		return errors.New("increment search: empty term")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO search_counts (term, count, movie_id, title, poster_url, updated_at)
		VALUES (?, 1, ?, ?, ?, ?)
		ON CONFLICT(term) DO UPDATE SET
			count = search_counts.count + 1,
			movie_id = excluded.movie_id,
			title = excluded.title,
			poster_url = excluded.poster_url,
			updated_at = excluded.updated_at
	`), rec.Term, rec.MovieID, rec.Title, rec.PosterURL, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("increment search %q: %w", rec.Term, err)
	}
	return nil
}

// TopSearches returns up to limit rows ordered by count descending, most
// recently updated first among equal counts.
func (s *Store) TopSearches(ctx context.Context, limit int) ([]SearchCount, error) {
	if limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT term, count, movie_id, title, poster_url, updated_at
		FROM search_counts
		ORDER BY count DESC, updated_at DESC, term ASC
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, fmt.Errorf("top searches: %w", err)
	}
	defer rows.Close()

	var out []SearchCount
	for rows.Next() {
		var rec SearchCount
		if err := rows.Scan(&rec.Term, &rec.Count, &rec.MovieID, &rec.Title, &rec.PosterURL, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("top searches: scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top searches: %w", err)
	}
	return out, nil
}

// GetSearch returns the counter row for term. ok is false when absent.
func (s *Store) GetSearch(ctx context.Context, term string) (rec SearchCount, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	err = s.db.QueryRowContext(ctx, s.rebind(`
		SELECT term, count, movie_id, title, poster_url, updated_at
		FROM search_counts
		WHERE term = ?
	`), term).Scan(&rec.Term, &rec.Count, &rec.MovieID, &rec.Title, &rec.PosterURL, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return SearchCount{}, false, nil
	}
	if err != nil {
		return SearchCount{}, false, fmt.Errorf("get search %q: %w", term, err)
	}
	return rec, true, nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

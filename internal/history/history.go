// Package history persists a record of completed extractions in a local
// sqlite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one completed extraction.
type Entry struct {
	ID         int64
	VideoURL   string
	Title      string
	Format     string
	Extension  string
	Actor      string
	Transcoded bool
	CreatedAt  time.Time
}

// Store wraps the history database.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path, creating
// parent directories as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS extractions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	video_url TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	format TEXT NOT NULL DEFAULT '',
	extension TEXT NOT NULL DEFAULT '',
	actor TEXT NOT NULL DEFAULT '',
	transcoded INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_extractions_created_at ON extractions(created_at DESC);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Record inserts an entry. The entry's CreatedAt is used when set, otherwise
// the current time.
func (s *Store) Record(ctx context.Context, e Entry) error {
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO extractions (video_url, title, format, extension, actor, transcoded, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.VideoURL, e.Title, e.Format, e.Extension, e.Actor, boolToInt(e.Transcoded),
		created.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("recording extraction: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, video_url, title, format, extension, actor, transcoded, created_at
		 FROM extractions ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var transcoded int
		var created string
		if err := rows.Scan(&e.ID, &e.VideoURL, &e.Title, &e.Format, &e.Extension, &e.Actor, &transcoded, &created); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.Transcoded = transcoded != 0
		if ts, parseErr := time.Parse(time.RFC3339Nano, created); parseErr == nil {
			e.CreatedAt = ts
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history rows: %w", err)
	}
	return entries, nil
}

// Prune deletes all but the newest keep entries and returns the number
// removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM extractions WHERE id NOT IN
		 (SELECT id FROM extractions ORDER BY created_at DESC, id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruning history: %w", err)
	}
	return n, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

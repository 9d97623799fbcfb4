package auditlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteSink stores entries in a local SQLite database
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path
func OpenSQLite(path string) (*SQLiteSink, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("auditlog: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("auditlog: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("auditlog: init schema: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS requests (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		id         TEXT NOT NULL,
		platform   TEXT NOT NULL,
		url        TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`)
	return err
}

func (s *SQLiteSink) Record(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO requests (id, platform, url, created_at) VALUES (?, ?, ?, ?)`,
		e.ID, e.Platform, e.URL, e.Time.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("auditlog: insert: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first
func (s *SQLiteSink) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 || n > 1000 {
		n = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, platform, url, created_at FROM requests ORDER BY seq DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("auditlog: query: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var created string
		if err := rows.Scan(&e.ID, &e.Platform, &e.URL, &created); err != nil {
			return nil, fmt.Errorf("auditlog: scan: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			e.Time = t.Local()
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

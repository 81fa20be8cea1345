// Package history keeps a small SQLite ledger of past builds in the scratch
// directory, one row per completed pipeline run.
package history

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one completed build.
type Entry struct {
	ID            int64
	BuiltAt       time.Time
	Input         string
	Profile       string
	Methods       []string
	ArtifactSize int64

	// OptimizedSize is zero when no wasm-opt pass ran.
	OptimizedSize int64
	Output        string
	Duration      time.Duration
}

// Ledger wraps the builds database.
type Ledger struct {
	db *sql.DB
}

// Open opens (creating if needed) the ledger at path.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening build history: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		built_at TEXT NOT NULL,
		input TEXT NOT NULL,
		profile TEXT NOT NULL,
		methods TEXT NOT NULL,
		artifact_size INTEGER NOT NULL,
		optimized_size INTEGER NOT NULL,
		output TEXT NOT NULL,
		duration_ms INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating builds table: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record appends one build to the ledger.
func (l *Ledger) Record(e Entry) error {
	_, err := l.db.Exec(
		`INSERT INTO builds (built_at, input, profile, methods, artifact_size, optimized_size, output, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.BuiltAt.UTC().Format(time.RFC3339),
		e.Input,
		e.Profile,
		strings.Join(e.Methods, ","),
		e.ArtifactSize,
		e.OptimizedSize,
		e.Output,
		e.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("recording build: %w", err)
	}
	return nil
}

// Recent returns up to n builds, newest first.
func (l *Ledger) Recent(n int) ([]Entry, error) {
	rows, err := l.db.Query(
		`SELECT id, built_at, input, profile, methods, artifact_size, optimized_size, output, duration_ms
		 FROM builds ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying builds: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var builtAt, methods string
		var durationMS int64
		if err := rows.Scan(&e.ID, &builtAt, &e.Input, &e.Profile, &methods,
			&e.ArtifactSize, &e.OptimizedSize, &e.Output, &durationMS); err != nil {
			return nil, fmt.Errorf("scanning build row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, builtAt); err == nil {
			e.BuiltAt = t
		}
		if methods != "" {
			e.Methods = strings.Split(methods, ",")
		}
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

// Package history keeps a local journal of questions asked through this
// client. Everything stays on disk next to the config; nothing here ever
// leaves the machine. The journal feeds the "ragterm stats" command.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ragterm/ragterm/internal/api"
)

const schema = `
CREATE TABLE IF NOT EXISTS asks (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	thread_id   INTEGER NOT NULL,
	mode        TEXT    NOT NULL,
	ok          INTEGER NOT NULL,
	latency_ms  INTEGER NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_asks_created ON asks(created_at);
CREATE INDEX IF NOT EXISTS idx_asks_thread ON asks(thread_id);
`

// Journal records question outcomes in a local SQLite database.
type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal database at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("configure journal: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record journals one question outcome.
func (j *Journal) Record(threadID int64, mode api.Mode, ok bool, latency time.Duration) error {
	okInt := 0
	if ok {
		okInt = 1
	}
	_, err := j.db.Exec(
		`INSERT INTO asks (thread_id, mode, ok, latency_ms, created_at) VALUES (?, ?, ?, ?, ?)`,
		threadID, string(mode), okInt, latency.Milliseconds(), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("record ask: %w", err)
	}
	return nil
}

// Stats summarizes the journal.
type Stats struct {
	TotalAsks    int64
	Failed       int64
	ByMode       map[api.Mode]int64
	AvgLatency   time.Duration
	BusiestID    int64 // thread with the most asks, 0 when empty
	BusiestCount int64
	Since        time.Time // oldest journaled ask, zero when empty
}

// Summarize computes aggregate statistics over the whole journal.
func (j *Journal) Summarize() (*Stats, error) {
	s := &Stats{ByMode: make(map[api.Mode]int64)}

	row := j.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN ok = 0 THEN 1 ELSE 0 END), 0),
		       COALESCE(AVG(latency_ms), 0),
		       COALESCE(MIN(created_at), 0)
		FROM asks`)
	var avgMs float64
	var oldest int64
	if err := row.Scan(&s.TotalAsks, &s.Failed, &avgMs, &oldest); err != nil {
		return nil, fmt.Errorf("summarize journal: %w", err)
	}
	s.AvgLatency = time.Duration(avgMs) * time.Millisecond
	if oldest > 0 {
		s.Since = time.Unix(oldest, 0)
	}

	rows, err := j.db.Query(`SELECT mode, COUNT(*) FROM asks GROUP BY mode`)
	if err != nil {
		return nil, fmt.Errorf("summarize journal: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var mode string
		var n int64
		if err := rows.Scan(&mode, &n); err != nil {
			return nil, fmt.Errorf("summarize journal: %w", err)
		}
		s.ByMode[api.Mode(mode)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("summarize journal: %w", err)
	}

	row = j.db.QueryRow(`
		SELECT thread_id, COUNT(*) AS n FROM asks
		GROUP BY thread_id ORDER BY n DESC, thread_id ASC LIMIT 1`)
	if err := row.Scan(&s.BusiestID, &s.BusiestCount); err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("summarize journal: %w", err)
	}

	return s, nil
}

// Prune deletes journal entries older than the cutoff and returns how
// many were removed.
func (j *Journal) Prune(olderThan time.Time) (int64, error) {
	res, err := j.db.Exec(`DELETE FROM asks WHERE created_at < ?`, olderThan.Unix())
	if err != nil {
		return 0, fmt.Errorf("prune journal: %w", err)
	}
	return res.RowsAffected()
}

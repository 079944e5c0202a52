// Package archive keeps a SQLite history of tasks that left the ledger through
// delete, merge or clear, so `ptt report` can still total them.
package archive

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harrisonrobin/ptt/pkg/duration"
	"github.com/harrisonrobin/ptt/pkg/model"
)

//go:embed schema.sql
var schemaSQL string

// File is the archive database name inside the data directory.
const File = "archive.db"

// Reasons recorded alongside archived rows.
const (
	ReasonDelete = "delete"
	ReasonMerge  = "merge"
	ReasonClear  = "clear"
)

// Archive handles SQLite operations for removed tasks.
type Archive struct {
	db *sql.DB
}

// Entry is one archived task.
type Entry struct {
	Task       model.Task
	Reason     string
	ArchivedAt time.Time
}

// Total is the accumulated duration of one description.
type Total struct {
	Description string
	Duration    duration.Duration
	Count       int
}

// Open creates the database and its schema if needed.
func Open(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize archive schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Record stores tasks removed from the ledger in one transaction.
func (a *Archive) Record(reason string, tasks []model.Task, at time.Time) error {
	if len(tasks) == 0 {
		return nil
	}
	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin archive transaction: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO archived_tasks (task_id, reason, started_at, duration_seconds, description, archived_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare archive insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range tasks {
		if _, err := stmt.Exec(t.ID, reason, t.StartedAt.Unix(), t.Duration.Seconds(), t.Description, at.Unix()); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to archive task %q: %w", t.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit archive: %w", err)
	}
	return nil
}

// Entries lists archived tasks started at or after since, oldest first.
func (a *Archive) Entries(since time.Time) ([]Entry, error) {
	rows, err := a.db.Query(`
		SELECT task_id, reason, started_at, duration_seconds, description, archived_at
		FROM archived_tasks
		WHERE started_at >= ?
		ORDER BY started_at, id`, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("archive query failed: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                 Entry
			started, archived int64
			seconds           int64
		)
		if err := rows.Scan(&e.Task.ID, &e.Reason, &started, &seconds, &e.Task.Description, &archived); err != nil {
			return nil, fmt.Errorf("failed to scan archived task: %w", err)
		}
		e.Task.StartedAt = time.Unix(started, 0)
		e.Task.Duration = duration.Seconds(seconds)
		e.ArchivedAt = time.Unix(archived, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Totals sums archived durations per description, largest first. Rows absorbed
// by a merge are skipped: their time is carried by the surviving task.
func (a *Archive) Totals(since time.Time) ([]Total, error) {
	rows, err := a.db.Query(`
		SELECT description, SUM(duration_seconds), COUNT(*)
		FROM archived_tasks
		WHERE started_at >= ? AND reason != ?
		GROUP BY description
		ORDER BY SUM(duration_seconds) DESC, description`, since.Unix(), ReasonMerge)
	if err != nil {
		return nil, fmt.Errorf("archive totals query failed: %w", err)
	}
	defer rows.Close()

	var totals []Total
	for rows.Next() {
		var (
			t       Total
			seconds int64
		)
		if err := rows.Scan(&t.Description, &seconds, &t.Count); err != nil {
			return nil, fmt.Errorf("failed to scan archive total: %w", err)
		}
		t.Duration = duration.Seconds(seconds)
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

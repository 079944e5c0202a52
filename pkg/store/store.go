// Package store reads and writes the task file.
//
// The file keeps the ledger in display order:
//
//	{ "tasks": [ { "started_on": "17/12/2019 09:00", "duration": "01:30", "description": "..." } ] }
//
// Durations are stored at minute precision, seconds are dropped on save.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrisonrobin/ptt/pkg/clock"
	"github.com/harrisonrobin/ptt/pkg/duration"
	"github.com/harrisonrobin/ptt/pkg/model"
	"github.com/harrisonrobin/ptt/pkg/util"
)

const (
	TasksFile  = "my_tasks.json"
	BackupFile = "my_tasks.backup"
	LeaseFile  = "my_tasks.lock"

	// StartedOnLayout is dd/MM/yyyy hh:mm.
	StartedOnLayout = "02/01/2006 15:04"
)

type record struct {
	ID          string `json:"id,omitempty"`
	StartedOn   string `json:"started_on"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

type document struct {
	Tasks []record `json:"tasks"`
}

// Store is the task file gateway.
type Store struct {
	Path       string
	BackupPath string
	clock      clock.Clock
}

// New returns a Store for the task file in dataDir.
func New(dataDir string, clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Store{
		Path:       filepath.Join(dataDir, TasksFile),
		BackupPath: filepath.Join(dataDir, BackupFile),
		clock:      clk,
	}
}

// Backup copies the task file to its .backup sibling. A missing task file is
// not an error, there is nothing to protect yet.
func (s *Store) Backup() error {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s for backup: %w", s.Path, err)
	}
	if err := os.WriteFile(s.BackupPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write backup %s: %w", s.BackupPath, err)
	}
	return nil
}

// Load reads the task file. A missing file is an empty ledger.
func (s *Store) Load() ([]model.Task, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", s.Path, err)
	}
	defer f.Close()

	tasks, err := Decode(f, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", s.Path, err)
	}
	return tasks, nil
}

// Save replaces the task file with tasks.
func (s *Store) Save(tasks []model.Task) error {
	var buf bytes.Buffer
	if err := Encode(&buf, tasks); err != nil {
		return err
	}
	return util.WriteFileAtomic(s.Path, buf.Bytes(), 0600)
}

// Encode writes tasks as an indented task document.
func Encode(w io.Writer, tasks []model.Task) error {
	doc := document{Tasks: make([]record, 0, len(tasks))}
	for _, t := range tasks {
		doc.Tasks = append(doc.Tasks, record{
			ID:          t.ID,
			StartedOn:   t.StartedAt.Format(StartedOnLayout),
			Duration:    t.Duration.Format(duration.FormatHHMM),
			Description: t.Description,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}
	return nil
}

// Decode reads a task document. A malformed duration becomes zero and a
// malformed start time becomes now; both are logged. Only an unreadable
// document is an error.
func Decode(r io.Reader, now time.Time) ([]model.Task, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode task document: %w", err)
	}

	tasks := make([]model.Task, 0, len(doc.Tasks))
	for i, rec := range doc.Tasks {
		d, err := duration.FromString(rec.Duration, duration.FormatHHMM)
		if err != nil {
			log.Printf("Warning: task %d: %v, using 00:00", i, err)
			d = duration.Zero()
		}

		started, err := time.ParseInLocation(StartedOnLayout, strings.TrimSpace(rec.StartedOn), time.Local)
		if err != nil {
			log.Printf("Warning: task %d: invalid start %q, using current time", i, rec.StartedOn)
			started = now
		}

		tasks = append(tasks, model.Task{
			ID:          rec.ID,
			StartedAt:   started,
			Duration:    d,
			Description: rec.Description,
		})
	}
	return tasks, nil
}

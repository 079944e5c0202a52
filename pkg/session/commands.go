package session

import (
	"fmt"
	"time"

	"github.com/harrisonrobin/ptt/pkg/archive"
	"github.com/harrisonrobin/ptt/pkg/duration"
	"github.com/harrisonrobin/ptt/pkg/ledger"
	"github.com/harrisonrobin/ptt/pkg/metrics"
	"github.com/harrisonrobin/ptt/pkg/model"
	"github.com/harrisonrobin/ptt/pkg/ticker"
)

// Command is an operation on the ledger.
type Command interface {
	apply(s *Session) (Result, error)
	mutates() bool
}

// Result carries what a command produced. Tasks is always the ledger after
// the command.
type Result struct {
	Tasks []model.Task
	// Ignored is set when Add received an empty description.
	Ignored bool
	Merge   ledger.MergeResult
	Removed []model.Task
}

// Add inserts a task at the top and makes it active.
type Add struct {
	Description string
}

func (c Add) mutates() bool { return true }

func (c Add) apply(s *Session) (Result, error) {
	_, ok := s.ledger.AddTask(c.Description)
	return Result{Ignored: !ok}, nil
}

// Activate moves a row to the top.
type Activate struct {
	Index int
}

func (c Activate) mutates() bool { return true }

func (c Activate) apply(s *Session) (Result, error) {
	return Result{}, s.ledger.Activate(c.Index)
}

// Edit overwrites the fields that are set. The duration is clamped to
// [0, ceiling].
type Edit struct {
	Index       int
	StartedAt   *time.Time
	Duration    *duration.Duration
	Description *string
}

func (c Edit) mutates() bool { return true }

func (c Edit) apply(s *Session) (Result, error) {
	row, err := s.ledger.GetRow(c.Index)
	if err != nil {
		return Result{}, err
	}
	if c.StartedAt != nil {
		row.StartedAt = *c.StartedAt
	}
	if c.Duration != nil {
		row.Duration = clamp(*c.Duration, s.ledger.MaxDuration())
	}
	if c.Description != nil {
		row.Description = *c.Description
	}
	return Result{}, s.ledger.SetRow(c.Index, row.StartedAt, row.Duration, row.Description)
}

func clamp(d, max duration.Duration) duration.Duration {
	if d < 0 {
		return 0
	}
	if d > max {
		return max
	}
	return d
}

// Merge folds rows into the lowest selected one. A merge past the ceiling
// returns ledger.ErrCapExceeded with the computed total in Result.Merge.
type Merge struct {
	Indices []int
}

func (c Merge) mutates() bool { return true }

func (c Merge) apply(s *Session) (Result, error) {
	res, err := s.ledger.Merge(c.Indices)
	if err != nil {
		return Result{}, err
	}
	metrics.RecordMerge(res.Merged)
	if !res.Merged {
		return Result{Merge: res}, fmt.Errorf("total %s: %w", res.Total.Format(duration.FormatHHMM), ledger.ErrCapExceeded)
	}
	s.record(archive.ReasonMerge, res.Removed)
	return Result{Merge: res, Removed: res.Removed}, nil
}

// Delete removes rows.
type Delete struct {
	Indices []int
}

func (c Delete) mutates() bool { return true }

func (c Delete) apply(s *Session) (Result, error) {
	removed, err := s.ledger.Delete(c.Indices)
	s.record(archive.ReasonDelete, removed)
	return Result{Removed: removed}, err
}

// Clear removes every row.
type Clear struct{}

func (Clear) mutates() bool { return true }

func (Clear) apply(s *Session) (Result, error) {
	removed := s.ledger.Clear()
	s.record(archive.ReasonClear, removed)
	return Result{Removed: removed}, nil
}

// List reads the ledger.
type List struct{}

func (List) mutates() bool { return false }

func (List) apply(*Session) (Result, error) { return Result{}, nil }

// Tick credits one increment to the active task, creating the default task
// when the ledger is empty.
type Tick struct{}

func (Tick) mutates() bool { return true }

func (Tick) apply(s *Session) (Result, error) {
	if err := ticker.Tick(s.ledger, s.cfg.Increment, s.messages.DefaultTaskName); err != nil {
		return Result{}, err
	}
	metrics.RecordTick()
	s.debugf("tick: %s", s.ledger.Tasks()[0].Duration)
	return Result{}, nil
}

// Record adds a finished task from another tracker: a new active row started
// at StartedAt, credited with Seconds in one call. Time past the ceiling goes
// to continuation rows dated one ceiling apart.
type Record struct {
	Description string
	StartedAt   time.Time
	Seconds     int64
}

func (c Record) mutates() bool { return true }

func (c Record) apply(s *Session) (Result, error) {
	if c.Seconds < 0 {
		return Result{}, ledger.ErrNegativeIncrement
	}
	description := c.Description
	if description == "" {
		description = s.messages.DefaultTaskName
	}
	if _, ok := s.ledger.AddTask(description); !ok {
		return Result{Ignored: true}, nil
	}
	if err := s.ledger.SetRow(0, c.StartedAt, 0, description); err != nil {
		return Result{}, err
	}

	before := s.ledger.Len()
	if err := s.ledger.Accrue(0, c.Seconds); err != nil {
		return Result{}, err
	}
	// Rows 0..n-1 are continuations, row n is the recorded task.
	n := s.ledger.Len() - before
	step := s.ledger.MaxDuration().Std()
	for j := 0; j < n; j++ {
		row, err := s.ledger.GetRow(j)
		if err != nil {
			return Result{}, err
		}
		started := c.StartedAt.Add(time.Duration(n-j) * step)
		if err := s.ledger.SetRow(j, started, row.Duration, row.Description); err != nil {
			return Result{}, err
		}
	}
	return Result{}, nil
}

// Package ledger keeps the ordered list of tracked tasks.
//
// Row 0 is always the active task, the only one credited by the ticker. Rows
// are in display order, not creation order: activating a row moves it to the
// top and shifts the rows above it down by one.
//
// A Ledger is not safe for concurrent use. The session event loop is its only
// owner and serializes every call.
package ledger

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harrisonrobin/ptt/pkg/clock"
	"github.com/harrisonrobin/ptt/pkg/duration"
	"github.com/harrisonrobin/ptt/pkg/model"
)

// DefaultMaxDuration is the ceiling of a single task (8h).
const DefaultMaxDuration = duration.Duration(28800)

// mergeSeparator joins the descriptions of merged tasks.
const mergeSeparator = "\n+ "

var (
	// ErrIndex is matched by every IndexError.
	ErrIndex = errors.New("ledger row out of range")
	// ErrDuplicateIndex is returned when a row selection names a row twice.
	ErrDuplicateIndex = errors.New("row selected more than once")
	// ErrEmptySelection is returned by Merge when no row is selected.
	ErrEmptySelection = errors.New("no row selected")
	// ErrNegativeIncrement is returned by Accrue for a negative amount.
	ErrNegativeIncrement = errors.New("negative increment")
	// ErrCapExceeded reports a merge rejected because the summed duration
	// passes the ceiling. Merge itself signals this with MergeResult.Merged.
	ErrCapExceeded = errors.New("merged duration exceeds the task ceiling")
)

// IndexError reports an operation on a row that does not exist.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("row %d out of range (ledger has %d rows)", e.Index, e.Len)
}

func (e *IndexError) Is(target error) bool { return target == ErrIndex }

// ChangeKind tells listeners why the active task changed.
type ChangeKind int

const (
	// Activated is sent by Activate, including the Activate(0) no-op.
	Activated ChangeKind = iota
	// Added is sent when AddTask inserts a new row 0.
	Added
	// Split is sent when Accrue starts a continuation task past the ceiling.
	Split
)

// Change describes an update of row 0.
type Change struct {
	Kind ChangeKind
	// From is the row the new active task came from. It is 0 for the
	// Activate(0) no-op and -1 for a freshly inserted task.
	From int
}

// IdentityChanged reports whether row 0 now holds a different task.
func (c Change) IdentityChanged() bool {
	return c.Kind != Activated || c.From > 0
}

// MergeResult is the outcome of Merge. A rejected merge leaves the ledger untouched.
type MergeResult struct {
	Merged bool
	// Total is the summed duration of the selected rows, reported in both cases.
	Total duration.Duration
	// Removed holds the tasks folded into the survivor.
	Removed []model.Task
}

// Ledger is the ordered task list.
type Ledger struct {
	tasks     []model.Task
	max       duration.Duration
	clock     clock.Clock
	listeners []func(Change)
}

// New returns an empty ledger with the given per-task ceiling. A nil clock
// uses the wall clock.
func New(max duration.Duration, clk clock.Clock) *Ledger {
	if max <= 0 {
		max = DefaultMaxDuration
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Ledger{max: max, clock: clk}
}

// Subscribe registers fn for every change of the active task.
func (l *Ledger) Subscribe(fn func(Change)) {
	l.listeners = append(l.listeners, fn)
}

func (l *Ledger) notify(c Change) {
	for _, fn := range l.listeners {
		fn(c)
	}
}

func (l *Ledger) MaxDuration() duration.Duration { return l.max }

func (l *Ledger) Len() int { return len(l.tasks) }

// Tasks returns a copy of the rows in display order.
func (l *Ledger) Tasks() []model.Task {
	out := make([]model.Task, len(l.tasks))
	copy(out, l.tasks)
	return out
}

// Load replaces the ledger content with tasks read from storage. Tasks
// without an ID get one. No change is sent.
func (l *Ledger) Load(tasks []model.Task) {
	l.tasks = make([]model.Task, len(tasks))
	copy(l.tasks, tasks)
	for i := range l.tasks {
		if l.tasks[i].ID == "" {
			l.tasks[i].ID = uuid.NewString()
		}
	}
}

func (l *Ledger) check(i int) error {
	if i < 0 || i >= len(l.tasks) {
		return &IndexError{Index: i, Len: len(l.tasks)}
	}
	return nil
}

// AddTask inserts a new task at row 0 and makes it active. An empty
// description is ignored and reported with ok == false.
func (l *Ledger) AddTask(description string) (index int, ok bool) {
	if description == "" {
		return 0, false
	}
	l.insert(description)
	l.notify(Change{Kind: Added, From: -1})
	return 0, true
}

func (l *Ledger) insert(description string) {
	t := model.Task{
		ID:          uuid.NewString(),
		StartedAt:   l.clock.Now(),
		Description: description,
	}
	l.tasks = append(l.tasks, model.Task{})
	copy(l.tasks[1:], l.tasks[:len(l.tasks)-1])
	l.tasks[0] = t
}

// GetRow returns a copy of row i.
func (l *Ledger) GetRow(i int) (model.Task, error) {
	if err := l.check(i); err != nil {
		return model.Task{}, err
	}
	return l.tasks[i], nil
}

// SetRow overwrites the fields of row i as given. No ceiling is applied, the
// edit surface bounds the duration.
func (l *Ledger) SetRow(i int, startedAt time.Time, d duration.Duration, description string) error {
	if err := l.check(i); err != nil {
		return err
	}
	l.tasks[i].StartedAt = startedAt
	l.tasks[i].Duration = d
	l.tasks[i].Description = description
	return nil
}

// Activate moves row i to row 0. Rows 0..i-1 shift down by one, rows after i
// keep their position. Activate(0) changes nothing but still notifies.
func (l *Ledger) Activate(i int) error {
	if err := l.check(i); err != nil {
		return err
	}
	if i > 0 {
		t := l.tasks[i]
		copy(l.tasks[1:i+1], l.tasks[:i])
		l.tasks[0] = t
	}
	l.notify(Change{Kind: Activated, From: i})
	return nil
}

// Accrue adds seconds to row i. When the row would pass the ceiling it is
// filled up to it and the rest goes to a new row 0 with the same description,
// repeating until the remainder fits. A row already at the ceiling gets a
// continuation task straight away. Accrue on an empty ledger does nothing.
func (l *Ledger) Accrue(i int, seconds int64) error {
	if len(l.tasks) == 0 {
		return nil
	}
	if err := l.check(i); err != nil {
		return err
	}
	if seconds < 0 {
		return ErrNegativeIncrement
	}
	if seconds == 0 {
		return nil
	}

	remaining := seconds
	for {
		cur := l.tasks[i].Duration
		description := l.tasks[i].Description

		switch {
		case cur >= l.max:
			// already full
		case cur.AddSeconds(remaining) > l.max:
			filler := int64(l.max - cur)
			l.tasks[i].Duration = cur.AddSeconds(filler)
			remaining -= filler
		default:
			l.tasks[i].Duration = cur.AddSeconds(remaining)
			return nil
		}

		// Split rows keep the description even when it is blank, AddTask would
		// drop them and leave the remainder nowhere to go.
		l.insert(description)
		l.notify(Change{Kind: Split, From: -1})
		i = 0
	}
}

// Merge folds the selected rows into the one with the lowest index. The
// survivor gets the summed duration and the non-blank descriptions of all
// selected rows in ascending order, then becomes active. If the sum is above
// the ceiling nothing changes and Merged is false.
func (l *Ledger) Merge(indices []int) (MergeResult, error) {
	rows, err := l.selection(indices)
	if err != nil {
		return MergeResult{}, err
	}
	if len(rows) == 0 {
		return MergeResult{}, ErrEmptySelection
	}

	var total duration.Duration
	for _, r := range rows {
		total += l.tasks[r].Duration
	}
	if total > l.max {
		return MergeResult{Merged: false, Total: total}, nil
	}

	// rows is descending; the survivor is processed last.
	survivor := rows[len(rows)-1]
	descriptions := make([]string, 0, len(rows))
	for k := len(rows) - 1; k >= 0; k-- {
		if d := l.tasks[rows[k]].Description; strings.TrimSpace(d) != "" {
			descriptions = append(descriptions, d)
		}
	}

	removed := make([]model.Task, 0, len(rows)-1)
	for _, r := range rows[:len(rows)-1] {
		removed = append(removed, l.tasks[r])
		l.remove(r)
	}
	l.tasks[survivor].Duration = total
	l.tasks[survivor].Description = strings.Join(descriptions, mergeSeparator)

	if err := l.Activate(survivor); err != nil {
		return MergeResult{}, err
	}
	return MergeResult{Merged: true, Total: total, Removed: removed}, nil
}

// Delete removes the selected rows and re-activates row 0 if any row is
// left. The removed tasks are returned in descending row order.
func (l *Ledger) Delete(indices []int) ([]model.Task, error) {
	rows, err := l.selection(indices)
	if err != nil {
		return nil, err
	}
	removed := make([]model.Task, 0, len(rows))
	for _, r := range rows {
		removed = append(removed, l.tasks[r])
		l.remove(r)
	}
	if len(l.tasks) > 0 {
		if err := l.Activate(0); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// Clear empties the ledger and returns what it held. No change is sent.
func (l *Ledger) Clear() []model.Task {
	removed := l.tasks
	l.tasks = nil
	return removed
}

func (l *Ledger) remove(i int) {
	l.tasks = append(l.tasks[:i], l.tasks[i+1:]...)
}

// selection validates a row selection and returns it sorted descending, so
// removing rows in that order never shifts a row still to be processed.
func (l *Ledger) selection(indices []int) ([]int, error) {
	seen := make(map[int]bool, len(indices))
	rows := make([]int, 0, len(indices))
	for _, i := range indices {
		if err := l.check(i); err != nil {
			return nil, err
		}
		if seen[i] {
			return nil, fmt.Errorf("row %d: %w", i, ErrDuplicateIndex)
		}
		seen[i] = true
		rows = append(rows, i)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(rows)))
	return rows, nil
}

package model

import (
	"strings"
	"time"

	"github.com/harrisonrobin/ptt/pkg/duration"
)

// Task is one row of the ledger: a start time, the time accrued on it and a
// free-text description.
type Task struct {
	// ID is stable across saves and only used to match exported calendar events.
	ID          string
	StartedAt   time.Time
	Duration    duration.Duration
	Description string
}

// Title returns the first line of the description, merged tasks carry several.
func (t Task) Title() string {
	title, _, _ := strings.Cut(t.Description, "\n")
	return strings.TrimSpace(title)
}

// End is the instant the task would have finished if it ran without pause.
func (t Task) End() time.Time {
	return t.StartedAt.Add(t.Duration.Std())
}

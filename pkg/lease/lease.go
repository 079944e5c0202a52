// Package lease keeps two ptt processes from tracking time into the same data
// file at once.
//
// The lease is a plain text file holding the last heartbeat as YYYYMMDDHHMMSS.
// It is not an OS lock: a process takes the lease when the stored heartbeat is
// missing, unreadable or older than the staleness threshold, and keeps it by
// rewriting the timestamp more often than that threshold. Two processes
// starting within the same second can both see a stale lease and both take it.
package lease

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/harrisonrobin/ptt/pkg/clock"
	"github.com/harrisonrobin/ptt/pkg/util"
)

// TimestampLayout is the lease file content layout (YYYYMMDDHHMMSS, local time).
const TimestampLayout = "20060102150405"

const (
	DefaultStaleAfter      = 60 * time.Second
	DefaultRefreshInterval = 30 * time.Second
)

// State is the local view of the lease.
type State int

const (
	Unowned State = iota
	Owned
)

func (s State) String() string {
	if s == Owned {
		return "owned"
	}
	return "unowned"
}

// Result is the outcome of TryAcquire.
type Result int

const (
	Denied Result = iota
	Acquired
)

func (r Result) String() string {
	if r == Acquired {
		return "acquired"
	}
	return "denied"
}

type Lease struct {
	path       string
	staleAfter time.Duration
	clock      clock.Clock
	state      State
}

// New returns an unowned lease on path. A zero staleAfter uses DefaultStaleAfter.
func New(path string, staleAfter time.Duration, clk clock.Clock) *Lease {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Lease{path: path, staleAfter: staleAfter, clock: clk}
}

func (l *Lease) Path() string { return l.path }

func (l *Lease) State() State { return l.state }

// ReadTimestamp returns the heartbeat stored in the lease file.
func ReadTimestamp(path string) (time.Time, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return time.Time{}, err
	}
	ts, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(string(b)), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse lease timestamp in %s: %w", path, err)
	}
	return ts, nil
}

// IsStale reports whether a heartbeat stored at stored no longer protects the
// lease at now. A heartbeat from the future counts as stale so a skewed or
// corrupted clock can never pin the lease.
func IsStale(now, stored time.Time, staleAfter time.Duration) bool {
	diff := now.Sub(stored)
	return diff < 0 || diff >= staleAfter
}

// TryAcquire takes the lease unless another process holds a fresh heartbeat.
// A missing or unreadable lease file is stale. Writing the heartbeat is the
// acquisition itself; if that write fails the lease is still granted and the
// error is returned for logging.
func (l *Lease) TryAcquire() (Result, error) {
	now := l.clock.Now()
	stored, err := ReadTimestamp(l.path)
	if err == nil && !IsStale(now, stored, l.staleAfter) {
		return Denied, nil
	}

	l.state = Owned
	if err := l.write(now); err != nil {
		return Acquired, err
	}
	return Acquired, nil
}

// Heartbeat rewrites the timestamp. It is a no-op when the lease is not owned.
func (l *Lease) Heartbeat() error {
	if l.state != Owned {
		return nil
	}
	return l.write(l.clock.Now())
}

// Release removes the lease file. Releasing an unowned lease leaves the file
// alone, it may belong to another process.
func (l *Lease) Release() error {
	if l.state != Owned {
		return nil
	}
	l.state = Unowned
	err := os.Remove(l.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lease file %s: %w", l.path, err)
	}
	return nil
}

func (l *Lease) write(now time.Time) error {
	return util.WriteFileAtomic(l.path, []byte(now.Format(TimestampLayout)+"\n"), 0600)
}

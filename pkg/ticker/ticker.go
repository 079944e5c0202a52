// Package ticker credits elapsed time to the active task on a fixed period.
package ticker

import (
	"fmt"
	"time"

	"github.com/harrisonrobin/ptt/pkg/ledger"
)

const (
	DefaultInterval  = 60 * time.Second
	DefaultIncrement = 60 * time.Second
)

// Ticker wraps a time.Ticker that can be restarted when the active task changes.
type Ticker struct {
	interval time.Duration
	t        *time.Ticker
	restarts int
}

func New(interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Ticker{interval: interval, t: time.NewTicker(interval)}
}

// C delivers the ticks.
func (t *Ticker) C() <-chan time.Time { return t.t.C }

func (t *Ticker) Interval() time.Duration { return t.interval }

// Restart starts a full interval from now.
func (t *Ticker) Restart() {
	t.t.Reset(t.interval)
	t.restarts++
}

// Restarts reports how many times the interval was restarted.
func (t *Ticker) Restarts() int { return t.restarts }

func (t *Ticker) Stop() { t.t.Stop() }

// OnChange restarts the interval when row 0 holds a different task. The
// Activate(0) no-op keeps the running interval.
func (t *Ticker) OnChange(c ledger.Change) {
	if c.IdentityChanged() {
		t.Restart()
	}
}

// Tick credits increment to the active task, creating a task named
// defaultName first when the ledger is empty so no time is lost.
func Tick(l *ledger.Ledger, increment time.Duration, defaultName string) error {
	if l.Len() == 0 {
		if _, ok := l.AddTask(defaultName); !ok {
			return fmt.Errorf("no default task name to track time on")
		}
	}
	return l.Accrue(0, int64(increment/time.Second))
}

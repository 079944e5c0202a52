// Package session ties the ledger to its file, its lease and its timers.
//
// A Session is the single owner of a Ledger. Commands either run directly
// through Do, for one-shot CLI invocations, or are submitted to the Run loop,
// which also serves the tick and the lease heartbeat. Both paths execute every
// command on one goroutine at a time.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/harrisonrobin/ptt/pkg/clock"
	"github.com/harrisonrobin/ptt/pkg/config"
	"github.com/harrisonrobin/ptt/pkg/duration"
	"github.com/harrisonrobin/ptt/pkg/ledger"
	"github.com/harrisonrobin/ptt/pkg/lease"
	"github.com/harrisonrobin/ptt/pkg/locale"
	"github.com/harrisonrobin/ptt/pkg/metrics"
	"github.com/harrisonrobin/ptt/pkg/model"
	"github.com/harrisonrobin/ptt/pkg/store"
	"github.com/harrisonrobin/ptt/pkg/ticker"
)

var (
	// ErrAlreadyRunning is returned by Open when another process holds a
	// fresh lease on the data directory.
	ErrAlreadyRunning = errors.New("ptt is already running")
	// ErrClosed is returned by Submit once the Run loop has stopped.
	ErrClosed = errors.New("session closed")
)

// Archiver receives the tasks that leave the ledger.
type Archiver interface {
	Record(reason string, tasks []model.Task, at time.Time) error
}

type Options struct {
	Config *config.Config
	// Clock defaults to the wall clock.
	Clock clock.Clock
	// Archive is optional.
	Archive Archiver
	// Verbose logs every tick and heartbeat.
	Verbose bool
}

type request struct {
	cmd   Command
	reply chan reply
}

type reply struct {
	result Result
	err    error
}

type Session struct {
	cfg      *config.Config
	clock    clock.Clock
	ledger   *ledger.Ledger
	store    *store.Store
	lease    *lease.Lease
	ticker   *ticker.Ticker
	archive  Archiver
	messages locale.Messages
	verbose  bool

	requests chan request
	done     chan struct{}
	closed   bool
}

// Open takes the lease on the configured data directory, backs up the task
// file and loads it. The active task, if any, is re-activated so listeners
// see it.
func Open(opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", cfg.DataDir, err)
	}

	ls := lease.New(filepath.Join(cfg.DataDir, store.LeaseFile), cfg.LeaseStaleAfter, clk)
	result, err := ls.TryAcquire()
	if result == lease.Denied {
		return nil, ErrAlreadyRunning
	}
	if err != nil {
		log.Printf("Warning: failed to write lease: %v", err)
	}

	st := store.New(cfg.DataDir, clk)
	if err := st.Backup(); err != nil {
		log.Printf("Warning: %v", err)
	}
	tasks, err := st.Load()
	if err != nil {
		log.Printf("Warning: %v, starting with an empty task list", err)
		tasks = nil
	}

	s := &Session{
		cfg:      cfg,
		clock:    clk,
		ledger:   ledger.New(duration.FromStd(cfg.MaxTaskDuration), clk),
		store:    st,
		lease:    ls,
		ticker:   ticker.New(cfg.TickInterval),
		archive:  opts.Archive,
		messages: locale.For(cfg.Language),
		verbose:  opts.Verbose,
		requests: make(chan request),
		done:     make(chan struct{}),
	}
	s.ledger.Load(tasks)
	s.ledger.Subscribe(s.ticker.OnChange)
	s.ledger.Subscribe(s.onChange)
	if s.ledger.Len() > 0 {
		if err := s.ledger.Activate(0); err != nil {
			return nil, err
		}
	}
	metrics.SetTasks(s.ledger.Len())
	return s, nil
}

// Messages returns the texts of the configured language.
func (s *Session) Messages() locale.Messages { return s.messages }

// MaxDuration is the per-task ceiling.
func (s *Session) MaxDuration() duration.Duration { return s.ledger.MaxDuration() }

// Ticker exposes the tick timer so callers can watch its restarts.
func (s *Session) Ticker() *ticker.Ticker { return s.ticker }

func (s *Session) onChange(c ledger.Change) {
	if c.Kind == ledger.Split {
		metrics.RecordSplit()
	}
	s.debugf("active task changed (kind %d, from row %d)", c.Kind, c.From)
}

// Do runs cmd on the calling goroutine and saves the ledger if cmd changes
// it. It must not be called concurrently with Run.
func (s *Session) Do(cmd Command) (Result, error) {
	res, err := cmd.apply(s)
	if cmd.mutates() {
		s.save()
	}
	metrics.SetTasks(s.ledger.Len())
	res.Tasks = s.ledger.Tasks()
	return res, err
}

// Run serves submitted commands, ticks and lease heartbeats until ctx is
// done. It returns nil on cancellation.
func (s *Session) Run(ctx context.Context) error {
	heartbeat := time.NewTicker(s.cfg.LeaseRefreshInterval)
	defer heartbeat.Stop()
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-s.requests:
			res, err := s.Do(req.cmd)
			req.reply <- reply{result: res, err: err}
		case <-s.ticker.C():
			if _, err := s.Do(Tick{}); err != nil {
				log.Printf("Warning: tick failed: %v", err)
			}
		case <-heartbeat.C:
			s.heartbeat()
		}
	}
}

// Submit hands cmd to the Run loop and waits for its result.
func (s *Session) Submit(ctx context.Context, cmd Command) (Result, error) {
	req := request{cmd: cmd, reply: make(chan reply, 1)}
	select {
	case s.requests <- req:
	case <-s.done:
		return Result{}, ErrClosed
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	select {
	case r := <-req.reply:
		return r.result, r.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (s *Session) heartbeat() {
	err := s.lease.Heartbeat()
	if err != nil {
		log.Printf("Warning: lease heartbeat failed: %v", err)
	} else {
		s.debugf("lease heartbeat")
	}
	metrics.RecordHeartbeat(s.clock.Now(), err)
}

// Close stops the timers, writes the ledger a last time and releases the
// lease. It is safe to call twice.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.ticker.Stop()
	s.save()
	return s.lease.Release()
}

// save writes the ledger. Failures are logged, the in-memory ledger stays
// authoritative and the next save retries.
func (s *Session) save() {
	err := s.store.Save(s.ledger.Tasks())
	metrics.RecordSave(err)
	if err != nil {
		log.Printf("Warning: failed to save tasks: %v", err)
	}
}

func (s *Session) record(reason string, tasks []model.Task) {
	if s.archive == nil || len(tasks) == 0 {
		return
	}
	if err := s.archive.Record(reason, tasks, s.clock.Now()); err != nil {
		log.Printf("Warning: failed to archive %d task(s): %v", len(tasks), err)
	}
}

func (s *Session) debugf(format string, args ...interface{}) {
	if s.verbose {
		log.Printf(format, args...)
	}
}

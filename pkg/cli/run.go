package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/ptt/pkg/duration"
	"github.com/harrisonrobin/ptt/pkg/ledger"
	"github.com/harrisonrobin/ptt/pkg/locale"
	"github.com/harrisonrobin/ptt/pkg/metrics"
	"github.com/harrisonrobin/ptt/pkg/session"
)

func (a *app) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Track time on the active task until interrupted",
		Long: `run keeps ptt in the foreground: every tick credits the active task and the
lease on the data directory is refreshed. Commands typed on stdin edit the
task list; type help to list them. Ctrl-C or quit stops tracking.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.withSession(func(s *session.Session) error {
				return a.serve(ctx, s, cmd.InOrStdin(), cmd.OutOrStdout())
			})
		},
	}
}

// serve runs the session loop, the optional metrics endpoint and the prompt
// until ctx is done or the user quits.
func (a *app) serve(ctx context.Context, s *session.Session, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		srv := &http.Server{Addr: a.cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("Warning: metrics server: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
	}

	loopErr := make(chan error, 1)
	go func() { loopErr <- s.Run(ctx) }()

	if res, err := s.Submit(ctx, session.List{}); err == nil {
		printTasks(out, res.Tasks)
	}

	a.prompt(ctx, s, in, out)
	cancel()
	return <-loopErr
}

// prompt reads commands until quit or ctx is done. At end of input it keeps
// waiting so a detached `ptt run` goes on tracking.
func (a *app) prompt(ctx context.Context, s *session.Session, in io.Reader, out io.Writer) {
	msgs := s.Messages()
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	next := func() (string, bool) {
		select {
		case line, ok := <-lines:
			return line, ok
		case <-ctx.Done():
			return "", false
		}
	}

	for {
		line, ok := next()
		if !ok {
			if ctx.Err() == nil {
				<-ctx.Done()
			}
			return
		}
		if line == "help" || line == "?" {
			fmt.Fprintln(out, replHelp)
			continue
		}

		cmd, err := parseCommand(line)
		if errors.Is(err, errQuit) {
			return
		}
		if err != nil {
			fmt.Fprintln(out, "Error:", err)
			continue
		}
		if cmd == nil {
			continue
		}

		if question := confirmationFor(msgs, cmd); question != "" {
			fmt.Fprintf(out, "%s [%s/%s] ", question, msgs.Yes, strings.ToUpper(msgs.No))
			answer, ok := next()
			if !ok {
				return
			}
			if !isYes(msgs, answer) {
				continue
			}
		}

		res, err := s.Submit(ctx, cmd)
		switch {
		case errors.Is(err, ledger.ErrCapExceeded):
			fmt.Fprintln(out, msgs.FormatMergeRejected(res.Merge.Total.Format(duration.FormatHHMM), s.MaxDuration().Std()))
		case err != nil:
			fmt.Fprintln(out, "Error:", err)
		default:
			printTasks(out, res.Tasks)
		}
	}
}

func confirmationFor(msgs locale.Messages, cmd session.Command) string {
	switch cmd.(type) {
	case session.Merge:
		return msgs.ConfirmMerge
	case session.Delete:
		return msgs.ConfirmDelete
	case session.Clear:
		return msgs.ConfirmClear
	}
	return ""
}

package cli

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/ptt/pkg/archive"
	"github.com/harrisonrobin/ptt/pkg/duration"
	"github.com/harrisonrobin/ptt/pkg/model"
	"github.com/harrisonrobin/ptt/pkg/store"
)

func (a *app) reportCmd() *cobra.Command {
	var since time.Duration
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Total tracked time per description, current and archived tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var from time.Time
			if since > 0 {
				from = time.Now().Add(-since)
			}

			tasks, err := store.New(a.cfg.DataDir, nil).Load()
			if err != nil {
				return err
			}
			arch, err := archive.Open(filepath.Join(a.cfg.DataDir, archive.File))
			if err != nil {
				return err
			}
			defer arch.Close()
			archived, err := arch.Totals(from)
			if err != nil {
				return err
			}

			totals := summarize(tasks, archived, from)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "DURATION\tTASKS\tDESCRIPTION")
			var sum duration.Duration
			for _, t := range totals {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", t.Duration.Format(duration.FormatHHMM), t.Count,
					strings.ReplaceAll(t.Description, "\n", " "))
				sum += t.Duration
			}
			fmt.Fprintf(tw, "%s\t\tTOTAL\n", sum.Format(duration.FormatHHMM))
			return tw.Flush()
		},
	}
	cmd.Flags().DurationVar(&since, "since", 0, "only tasks started within this period, e.g. 168h")
	return cmd
}

// summarize adds the live tasks started at or after from to the archived
// totals, largest first.
func summarize(tasks []model.Task, archived []archive.Total, from time.Time) []archive.Total {
	byDescription := make(map[string]*archive.Total)
	for i := range archived {
		t := archived[i]
		byDescription[t.Description] = &t
	}
	for _, task := range tasks {
		if task.StartedAt.Before(from) {
			continue
		}
		t, ok := byDescription[task.Description]
		if !ok {
			t = &archive.Total{Description: task.Description}
			byDescription[task.Description] = t
		}
		t.Duration += task.Duration
		t.Count++
	}

	out := make([]archive.Total, 0, len(byDescription))
	for _, t := range byDescription {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Duration != out[j].Duration {
			return out[i].Duration > out[j].Duration
		}
		return out[i].Description < out[j].Description
	})
	return out
}

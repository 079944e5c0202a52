package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/ptt/pkg/orgmode"
	"github.com/harrisonrobin/ptt/pkg/session"
	"github.com/harrisonrobin/ptt/pkg/taskwarrior"
)

func (a *app) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import tracked time from another tool",
	}
	cmd.AddCommand(a.importTaskwarriorCmd(), a.importOrgCmd())
	return cmd
}

func (a *app) importOrgCmd() *cobra.Command {
	var tag string
	cmd := &cobra.Command{
		Use:   "org <file.org>...",
		Short: "Import the closed CLOCK entries of Org-mode files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clocks, err := orgmode.ParseFiles(args)
			if err != nil {
				return err
			}
			if tag != "" {
				clocks = orgmode.FilterClocks(clocks, tag)
			}

			return a.withSession(func(s *session.Session) error {
				for _, c := range clocks {
					rec := session.Record{
						Description: c.Heading,
						StartedAt:   c.Start,
						Seconds:     int64(c.Duration / time.Second),
					}
					if _, err := s.Do(rec); err != nil {
						return fmt.Errorf("failed to import %q: %w", c.Heading, err)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d clock(s) imported\n", len(clocks))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "only headings carrying this tag")
	return cmd
}

func (a *app) importTaskwarriorCmd() *cobra.Command {
	var fromTask bool
	var filter []string
	cmd := &cobra.Command{
		Use:   "taskwarrior [export.json]",
		Short: "Import Taskwarrior tasks that have a start and an end or act duration",
		Long: `Reads a Taskwarrior JSON export from the file, from stdin when the file is
omitted or "-", or from "task export" itself with --task. Each task becomes a
ledger row; tasks longer than the task ceiling are split.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := taskwarrior.NewClient()

			var tasks []taskwarrior.Task
			var err error
			switch {
			case fromTask:
				tasks, err = client.GetTasks(filter)
			case len(args) == 0 || args[0] == "-":
				tasks, err = client.ParseTasks(cmd.InOrStdin())
			default:
				tasks, err = parseFile(client, args[0])
			}
			if err != nil {
				return err
			}

			entries := taskwarrior.ToEntries(tasks)
			return a.withSession(func(s *session.Session) error {
				for _, e := range entries {
					rec := session.Record{
						Description: e.Description,
						StartedAt:   e.StartedAt,
						Seconds:     int64(e.Duration / time.Second),
					}
					if _, err := s.Do(rec); err != nil {
						return fmt.Errorf("failed to import %q: %w", e.Description, err)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d task(s) imported, %d skipped\n", len(entries), len(tasks)-len(entries))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&fromTask, "task", false, "run `task export` instead of reading a file")
	cmd.Flags().StringSliceVar(&filter, "filter", nil, "Taskwarrior filter used with --task")
	return cmd
}

func parseFile(client *taskwarrior.Client, path string) ([]taskwarrior.Task, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return client.ParseTasks(f)
}

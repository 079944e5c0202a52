package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/ptt/pkg/duration"
	"github.com/harrisonrobin/ptt/pkg/ledger"
	"github.com/harrisonrobin/ptt/pkg/session"
	"github.com/harrisonrobin/ptt/pkg/store"
)

func (a *app) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <description>",
		Short: "Add a task and make it active",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(s *session.Session) error {
				res, err := s.Do(session.Add{Description: strings.Join(args, " ")})
				if err != nil {
					return err
				}
				if res.Ignored {
					return errors.New("empty description, nothing added")
				}
				printTasks(cmd.OutOrStdout(), res.Tasks)
				return nil
			})
		},
	}
}

// listCmd reads the task file without taking the lease, so it works while
// `ptt run` is up.
func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the tasks, active one first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := store.New(a.cfg.DataDir, nil).Load()
			if err != nil {
				return err
			}
			printTasks(cmd.OutOrStdout(), tasks)
			return nil
		},
	}
}

func (a *app) activateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activate <row>",
		Short: "Move a task to the top and track time on it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := parseRows(args)
			if err != nil {
				return err
			}
			return a.withSession(func(s *session.Session) error {
				res, err := s.Do(session.Activate{Index: rows[0]})
				if err != nil {
					return err
				}
				printTasks(cmd.OutOrStdout(), res.Tasks)
				return nil
			})
		},
	}
}

func (a *app) editCmd() *cobra.Command {
	var started, length, description string
	cmd := &cobra.Command{
		Use:   "edit <row>",
		Short: "Change the start, duration or description of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := parseRows(args)
			if err != nil {
				return err
			}
			edit := session.Edit{Index: rows[0]}
			if cmd.Flags().Changed("started") {
				t, err := time.ParseInLocation(store.StartedOnLayout, started, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --started %q, expected dd/mm/yyyy hh:mm", started)
				}
				edit.StartedAt = &t
			}
			if cmd.Flags().Changed("duration") {
				d, err := duration.FromString(length, duration.FormatHHMM)
				if err != nil {
					return err
				}
				edit.Duration = &d
			}
			if cmd.Flags().Changed("description") {
				edit.Description = &description
			}
			if edit.StartedAt == nil && edit.Duration == nil && edit.Description == nil {
				return errors.New("nothing to change, use --started, --duration or --description")
			}

			return a.withSession(func(s *session.Session) error {
				res, err := s.Do(edit)
				if err != nil {
					return err
				}
				printTasks(cmd.OutOrStdout(), res.Tasks)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&started, "started", "", "start time, dd/mm/yyyy hh:mm")
	cmd.Flags().StringVar(&length, "duration", "", "tracked time, hh:mm (capped at the task ceiling)")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	return cmd
}

func (a *app) mergeCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "merge <row> <row>...",
		Short: "Fold several tasks into the topmost selected one",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := parseRows(args)
			if err != nil {
				return err
			}
			msgs := a.messages()
			if !yes && !confirm(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(), msgs, msgs.ConfirmMerge) {
				return nil
			}
			return a.withSession(func(s *session.Session) error {
				res, err := s.Do(session.Merge{Indices: rows})
				if errors.Is(err, ledger.ErrCapExceeded) {
					return errors.New(msgs.FormatMergeRejected(res.Merge.Total.Format(duration.FormatHHMM), s.MaxDuration().Std()))
				}
				if err != nil {
					return err
				}
				printTasks(cmd.OutOrStdout(), res.Tasks)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <row>...",
		Aliases: []string{"rm"},
		Short:   "Remove tasks",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := parseRows(args)
			if err != nil {
				return err
			}
			msgs := a.messages()
			if !yes && !confirm(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(), msgs, msgs.ConfirmDelete) {
				return nil
			}
			return a.withSession(func(s *session.Session) error {
				res, err := s.Do(session.Delete{Indices: rows})
				if err != nil {
					return err
				}
				printTasks(cmd.OutOrStdout(), res.Tasks)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (a *app) clearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			msgs := a.messages()
			if !yes && !confirm(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(), msgs, msgs.ConfirmClear) {
				return nil
			}
			return a.withSession(func(s *session.Session) error {
				res, err := s.Do(session.Clear{})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d task(s) removed\n", len(res.Removed))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

package cli

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/ptt/pkg/colors"
	"github.com/harrisonrobin/ptt/pkg/config"
	"github.com/harrisonrobin/ptt/pkg/google"
	"github.com/harrisonrobin/ptt/pkg/index"
	"github.com/harrisonrobin/ptt/pkg/store"
)

func (a *app) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tracked tasks",
	}
	cmd.AddCommand(a.exportCalendarCmd())
	return cmd
}

func (a *app) exportCalendarCmd() *cobra.Command {
	var calendarName string
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Mirror every task into Google Calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if calendarName == "" {
				calendarName = a.cfg.Calendar
			}
			tasks, err := store.New(a.cfg.DataDir, nil).Load()
			if err != nil {
				return err
			}

			dir, err := config.Dir()
			if err != nil {
				return err
			}
			idx, err := index.NewEventIndex(filepath.Join(dir, index.EventsFile))
			if err != nil {
				return fmt.Errorf("failed to load event index: %w", err)
			}
			cache, err := colors.NewColorCache(filepath.Join(dir, colors.CacheFile), nil)
			if err != nil {
				log.Printf("Warning: failed to load color cache: %v", err)
				cache = nil
			}

			client, err := google.NewClient(cmd.Context(), calendarName, idx, cache)
			if err != nil {
				return err
			}
			stats := client.SyncTasks(cmd.Context(), tasks)

			if err := idx.Save(); err != nil {
				log.Printf("Warning: failed to save event index: %v", err)
			}
			if cache != nil {
				if err := cache.Save(); err != nil {
					log.Printf("Warning: failed to save color cache: %v", err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d created, %d updated, %d unchanged, %d failed\n",
				calendarName, stats.Created, stats.Updated, stats.Unchanged, stats.Failed)
			return nil
		},
	}
	cmd.Flags().StringVar(&calendarName, "calendar", "", "Google Calendar name (overrides config)")
	return cmd
}

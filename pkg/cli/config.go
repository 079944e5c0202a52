package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harrisonrobin/ptt/pkg/config"
)

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := yaml.Marshal(a.cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting and save the config file",
		Long: `Keys: language, data_dir, calendar, metrics_addr, tick_interval, increment,
max_task_duration, lease_refresh_interval, lease_stale_after. Durations use
Go syntax (90s, 5m, 8h).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *a.cfg
			if err := setField(&cfg, args[0], args[1]); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.Save(&cfg, a.configPath); err != nil {
				return err
			}
			a.cfg = &cfg
			fmt.Fprintf(cmd.OutOrStdout(), "%s set to %s\n", args[0], args[1])
			return nil
		},
	})
	return cmd
}

func setField(cfg *config.Config, key, value string) error {
	parse := func(target *time.Duration) error {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %w", key, err)
		}
		*target = d
		return nil
	}

	switch strings.ToLower(key) {
	case "language":
		cfg.Language = value
	case "data_dir":
		cfg.DataDir = value
	case "calendar":
		cfg.Calendar = value
	case "metrics_addr":
		cfg.MetricsAddr = value
	case "tick_interval":
		return parse(&cfg.TickInterval)
	case "increment":
		return parse(&cfg.Increment)
	case "max_task_duration":
		return parse(&cfg.MaxTaskDuration)
	case "lease_refresh_interval":
		return parse(&cfg.LeaseRefreshInterval)
	case "lease_stale_after":
		return parse(&cfg.LeaseStaleAfter)
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/ptt/pkg/auth"
	"github.com/harrisonrobin/ptt/pkg/config"
)

func (a *app) authCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize ptt to write to Google Calendar",
		Long: `auth discards the cached token and runs the browser authorization flow.
credentials.json must be in ~/.config/ptt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.Dir()
			if err != nil {
				return fmt.Errorf("could not find path to configuration file: %w", err)
			}

			tokenFile := filepath.Join(dir, auth.TokenFile)
			if err := os.Remove(tokenFile); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("could not delete token file '%s': %w. Please delete it manually", tokenFile, err)
			}

			if _, err := auth.GetClient(cmd.Context(), auth.Scopes); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Authentication successful! Token saved to %s\n", tokenFile)
			return nil
		},
	}
}

// Package cli is the ptt command tree.
package cli

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/ptt/pkg/archive"
	"github.com/harrisonrobin/ptt/pkg/config"
	"github.com/harrisonrobin/ptt/pkg/locale"
	"github.com/harrisonrobin/ptt/pkg/session"
)

type app struct {
	configPath string
	verbose    bool
	version    string
	cfg        *config.Config
}

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	a := &app{version: version}

	root := &cobra.Command{
		Use:   "ptt",
		Short: "ptt - personal time tracker",
		Long: `ptt credits elapsed time to the task you are working on.

The task at the top of the list is the active one. "ptt run" keeps ticking
it every minute; the other commands edit the list.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.config/ptt/config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output")

	root.AddCommand(
		a.runCmd(),
		a.addCmd(),
		a.listCmd(),
		a.activateCmd(),
		a.editCmd(),
		a.mergeCmd(),
		a.deleteCmd(),
		a.clearCmd(),
		a.importCmd(),
		a.exportCmd(),
		a.reportCmd(),
		a.configCmd(),
		a.authCmd(),
		a.versionCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute(version string) error {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func (a *app) messages() locale.Messages {
	return locale.For(a.cfg.Language)
}

// withSession opens the data directory for a one-shot command. The archive is
// optional: if it cannot be opened the command still runs.
func (a *app) withSession(fn func(s *session.Session) error) error {
	opts := session.Options{Config: a.cfg, Verbose: a.verbose}

	arch, err := archive.Open(filepath.Join(a.cfg.DataDir, archive.File))
	if err != nil {
		log.Printf("Warning: archive disabled: %v", err)
	} else {
		defer arch.Close()
		opts.Archive = arch
	}

	s, err := session.Open(opts)
	if errors.Is(err, session.ErrAlreadyRunning) {
		return errors.New(a.messages().AlreadyRunning)
	}
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Printf("Warning: %v", err)
		}
	}()
	return fn(s)
}

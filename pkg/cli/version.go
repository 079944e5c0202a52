package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

func (a *app) versionCmd() *cobra.Command {
	var deps bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ptt %s\n", a.version)
			if !deps {
				return nil
			}
			info, ok := debug.ReadBuildInfo()
			if !ok {
				return nil
			}
			fmt.Fprintf(out, "built with %s\n", info.GoVersion)
			for _, dep := range info.Deps {
				fmt.Fprintf(out, "  %s %s\n", dep.Path, dep.Version)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&deps, "deps", false, "list the modules ptt was built with")
	return cmd
}

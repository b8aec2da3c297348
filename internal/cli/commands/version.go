package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version, buildDate, gitCommit string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display surfacegen version and build information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "surfacegen v%s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Built %s from commit %s\n", buildDate, gitCommit)
		},
	}
}

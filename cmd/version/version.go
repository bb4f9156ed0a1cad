// Package version provides the version command for canthus-deploy.
package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build-time variables (set via -ldflags)
var (
	Version = "dev" // Version of the canthus-deploy binary
)

// NewCmdVersion creates the version command
func NewCmdVersion() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version information for canthus-deploy.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd)
		},
	}

	return cmd
}

func runVersion(cmd *cobra.Command) error {
	_, err := fmt.Fprintln(cmd.OutOrStdout(), Version)
	return err
}

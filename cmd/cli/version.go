package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/svasthya/svasthya/internal/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Get()

			fmt.Fprintf(cmd.OutOrStdout(), "svasthya %s\n", version.GetShortVersion())
			if info.BuildDate != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "  built:    %s\n", info.BuildDate)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  go:       %s\n", info.GoVersion)
			fmt.Fprintf(cmd.OutOrStdout(), "  platform: %s\n", info.Platform)
		},
	}
}

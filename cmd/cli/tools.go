package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/svasthya/svasthya/pkg/ai-sdk/types"
	"github.com/svasthya/svasthya/pkg/integrations/health_tools"
)

func NewToolsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Print the function manifest advertised to the model",
		RunE: func(cmd *cobra.Command, args []string) error {
			definitions := health_tools.Definitions()

			manifest := make([]types.Tool, 0, len(definitions))
			for _, definition := range definitions {
				manifest = append(manifest, definition.ToTypesTool())
			}

			data, err := json.MarshalIndent(manifest, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode tool manifest: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	return cmd
}

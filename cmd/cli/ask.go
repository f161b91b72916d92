package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/svasthya/svasthya/pkg/integrations/health_agent"
)

func NewAskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <query>",
		Short: "Ask the health assistant a single question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, strings.Join(args, " "))
		},
	}

	return cmd
}

func runAsk(cmd *cobra.Command, query string) error {
	ctx := context.Background()

	container, err := buildContainer(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeContainer(container)

	outcome := container.HealthAgent.Run(ctx, health_agent.Query{Text: query})

	event := log.Debug().Str("state", string(outcome.State)).Int("ignored_calls", outcome.IgnoredCalls)
	if outcome.ToolCall != nil {
		event = event.Str("tool", outcome.ToolCall.Name)
	}
	event.Msg("Query finished")

	fmt.Fprintln(cmd.OutOrStdout(), health_agent.ResponseFor(outcome).Text)
	return nil
}

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/svasthya/svasthya/internal/server"
	"github.com/svasthya/svasthya/internal/version"
)

func NewStartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the HTTP server",
		Long:  `Start the health assistant HTTP server exposing /health, /api/agent/chat and /api/agent/analyze-report.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(cmd)
		},
	}

	return cmd
}

func runStart(cmd *cobra.Command) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	container, err := buildContainer(ctx, cmd)
	if err != nil {
		return err
	}

	defer closeContainer(container)

	app := server.NewHTTPServer(server.HTTPServerDependencies{
		AgentController: container.AgentController,
	})

	log.Info().
		Str("address", container.Config.HTTPAddress).
		Str("version", version.GetShortVersion()).
		Msg("Starting Svasthya backend")

	if err := app.Listen(container.Config.HTTPAddress, fiber.ListenConfig{
		GracefulContext:       ctx,
		DisableStartupMessage: true,
	}); err != nil {
		log.Error().Err(err).Msg("HTTP server failed")
		return err
	}

	log.Info().Msg("Svasthya backend stopped")
	return nil
}

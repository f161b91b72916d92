package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/svasthya/svasthya/internal/initialization"
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "svasthya",
		Short: "Svasthya health assistant backend",
		Long: `Svasthya is a conversational health assistant. It answers health questions, books
appointments, sets medication reminders and analyzes medical reports using a large language model.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				level = zerolog.DebugLevel
			}
			zerolog.SetGlobalLevel(level)
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (default: ./svasthya.yaml)")

	rootCmd.AddCommand(NewStartCommand())
	rootCmd.AddCommand(NewAskCommand())
	rootCmd.AddCommand(NewAnalyzeCommand())
	rootCmd.AddCommand(NewToolsCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func buildContainer(ctx context.Context, cmd *cobra.Command) (*initialization.Container, error) {
	configFile, _ := cmd.Flags().GetString("config")

	config, err := initialization.LoadConfig(initialization.LoadConfigOptions{ConfigFile: configFile})
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return initialization.NewContainer(ctx, config)
}

type closer interface {
	Close(ctx context.Context) error
}

// closeContainer releases the health store, logging instead of failing the command
func closeContainer(container closer) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := container.Close(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to close health store")
	}
}

package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func NewAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <report-file>",
		Short: "Analyze a medical report file (use - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0])
		},
	}

	return cmd
}

func runAnalyze(cmd *cobra.Command, path string) error {
	reportText, err := readReport(cmd, path)
	if err != nil {
		return err
	}

	ctx := context.Background()

	container, err := buildContainer(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeContainer(container)

	analysis, err := container.ReportAnalyzer.Analyze(ctx, reportText)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), analysis)
	return nil
}

func readReport(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read report from stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read report: %w", err)
	}

	return string(data), nil
}

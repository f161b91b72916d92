package health_agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/svasthya/svasthya/pkg/ai-sdk/agent"
	"github.com/svasthya/svasthya/pkg/ai-sdk/provider"
	"github.com/svasthya/svasthya/pkg/ai-sdk/types"
)

const reportAnalysisPrompt = "Analyze the following medical report and extract key findings, diagnosis, and recommended actions.\nReport: %s"

var (
	ErrEmptyReport          = errors.New("report text is required")
	ErrReportAnalysisFailed = errors.New("report analysis failed")
)

// ReportAnalyzer turns a medical report into a written analysis with a single
// generation call. Unlike the chat path, failures are returned to the caller.
type ReportAnalyzer struct {
	model provider.LanguageModel
}

func NewReportAnalyzer(model provider.LanguageModel) (*ReportAnalyzer, error) {
	if model == nil {
		return nil, types.ErrProviderNotSet
	}

	return &ReportAnalyzer{model: model}, nil
}

func (r *ReportAnalyzer) Analyze(ctx context.Context, reportText string) (string, error) {
	if strings.TrimSpace(reportText) == "" {
		return "", ErrEmptyReport
	}

	log.Debug().Int("report_length", len(reportText)).Msg("Analyzing medical report")

	analysis, err := agent.GenerateText(ctx, r.model, fmt.Sprintf(reportAnalysisPrompt, reportText))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReportAnalysisFailed, err)
	}

	if strings.TrimSpace(analysis) == "" {
		return "", fmt.Errorf("%w: %w", ErrReportAnalysisFailed, types.ErrEmptyResponse)
	}

	return analysis, nil
}

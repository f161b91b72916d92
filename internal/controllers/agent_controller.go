package controllers

import (
	"context"
	"strings"

	"github.com/svasthya/svasthya/pkg/integrations/health_agent"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
)

type ChatAgent interface {
	ProcessQuery(ctx context.Context, query health_agent.Query) health_agent.Response
}

type ReportAnalyzer interface {
	Analyze(ctx context.Context, reportText string) (string, error)
}

type ChatRequest struct {
	Query   string         `json:"query"`
	Context map[string]any `json:"context,omitempty"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type AnalyzeReportRequest struct {
	ReportText string `json:"reportText"`
}

type AnalyzeReportResponse struct {
	Analysis string `json:"analysis"`
}

// AgentController serves the chat and report analysis endpoints
type AgentController struct {
	agent          ChatAgent
	reportAnalyzer ReportAnalyzer
}

type AgentControllerDependencies struct {
	Agent          ChatAgent
	ReportAnalyzer ReportAnalyzer
}

func NewAgentController(deps AgentControllerDependencies) *AgentController {
	return &AgentController{
		agent:          deps.Agent,
		reportAnalyzer: deps.ReportAnalyzer,
	}
}

// Chat answers a natural-language query. Model and tool failures still
// produce a 200 carrying the apology text.
func (c *AgentController) Chat(ctx fiber.Ctx) error {
	var req ChatRequest

	if err := ctx.Bind().Body(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if strings.TrimSpace(req.Query) == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Query is required"})
	}

	// An in-flight model call runs to completion even if the client goes away.
	requestCtx := context.WithoutCancel(ctx.RequestCtx())

	response := c.agent.ProcessQuery(requestCtx, health_agent.Query{
		Text:    req.Query,
		Context: req.Context,
	})

	return ctx.Status(fiber.StatusOK).JSON(ChatResponse{Response: response.Text})
}

// AnalyzeReport returns a model-written analysis of a medical report
func (c *AgentController) AnalyzeReport(ctx fiber.Ctx) error {
	var req AnalyzeReportRequest

	if err := ctx.Bind().Body(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if strings.TrimSpace(req.ReportText) == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Report text is required"})
	}

	requestCtx := context.WithoutCancel(ctx.RequestCtx())

	analysis, err := c.reportAnalyzer.Analyze(requestCtx, req.ReportText)
	if err != nil {
		log.Error().Err(err).Str("kind", health_agent.ErrorKind(err)).Msg("Report analysis failed")
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	return ctx.Status(fiber.StatusOK).JSON(AnalyzeReportResponse{Analysis: analysis})
}

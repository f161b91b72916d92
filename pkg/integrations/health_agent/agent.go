package health_agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/svasthya/svasthya/pkg/ai-sdk/agent"
	"github.com/svasthya/svasthya/pkg/ai-sdk/provider"
	"github.com/svasthya/svasthya/pkg/ai-sdk/tool"
	"github.com/svasthya/svasthya/pkg/ai-sdk/types"
)

// ApologyMessage is returned to the user whenever a chat request fails.
const ApologyMessage = "I'm sorry, I encountered an issue processing that request. Please try again."

const DefaultSystemPrompt = `You are Svasthya, a health assistant. Answer health questions clearly and kindly.
Use the available tools to book appointments, set medication reminders and look up the patient's records.
You are not a replacement for a doctor; recommend professional care for anything serious.`

var ErrInvalidQuery = errors.New("query is required")

type State string

const (
	StateAwaitingQuery     State = "awaiting_query"
	StateModelRequested    State = "model_requested"
	StateToolCallDetected  State = "tool_call_detected"
	StateToolExecuted      State = "tool_executed"
	StateFollowupRequested State = "followup_requested"
	StateResponded         State = "responded"
	StateFailed            State = "failed"
)

type Query struct {
	Text string
	// Context is accepted from callers but not consulted by tool dispatch yet.
	Context map[string]any
}

type Response struct {
	Text string
}

// Outcome is the explicit result of one orchestrator run.
type Outcome struct {
	Text  string
	State State

	// ToolCall is the call that was acted upon, if any.
	ToolCall     *types.ToolCall
	ToolResult   tool.Result
	IgnoredCalls int

	Err error
}

func (o Outcome) Failed() bool {
	return o.State == StateFailed
}

type ToolCatalog interface {
	Tools() []types.Tool
	Lookup(name string) (tool.Func, bool)
}

type ToolExecutor interface {
	Execute(ctx context.Context, name string, args tool.Arguments) (tool.Result, error)
}

type HealthAgentDependencies struct {
	Model    provider.LanguageModel
	Catalog  ToolCatalog
	Executor ToolExecutor

	SystemPrompt string
	MaxTokens    int
	Temperature  float32
}

// HealthAgent mediates between the language model and the health tools. It
// holds no per-request state; every Run opens its own session.
type HealthAgent struct {
	model    provider.LanguageModel
	catalog  ToolCatalog
	executor ToolExecutor

	systemPrompt string
	maxTokens    int
	temperature  float32
}

func NewHealthAgent(deps HealthAgentDependencies) (*HealthAgent, error) {
	if deps.Model == nil {
		return nil, types.ErrProviderNotSet
	}
	if deps.Catalog == nil || deps.Executor == nil {
		return nil, fmt.Errorf("tool catalog and executor are required")
	}

	systemPrompt := deps.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	return &HealthAgent{
		model:        deps.Model,
		catalog:      deps.Catalog,
		executor:     deps.Executor,
		systemPrompt: systemPrompt,
		maxTokens:    deps.MaxTokens,
		temperature:  deps.Temperature,
	}, nil
}

// ProcessQuery answers a chat query. Every failure is logged and replaced by
// ApologyMessage, so the caller always gets text back.
func (a *HealthAgent) ProcessQuery(ctx context.Context, query Query) Response {
	return ResponseFor(a.Run(ctx, query))
}

// ResponseFor turns a finished run into the text shown to the user, logging
// the failure and substituting ApologyMessage when the run failed.
func ResponseFor(outcome Outcome) Response {
	if outcome.Err != nil {
		event := log.Error().Err(outcome.Err).Str("kind", ErrorKind(outcome.Err))
		if outcome.ToolCall != nil {
			event = event.Str("tool", outcome.ToolCall.Name)
		}
		event.Msg("Chat request failed, responding with apology")

		return Response{Text: ApologyMessage}
	}

	return Response{Text: outcome.Text}
}

// Run drives one query through the state machine and reports where it ended.
func (a *HealthAgent) Run(ctx context.Context, query Query) Outcome {
	r := &run{logger: log.With().Str("component", "health_agent").Logger(), state: StateAwaitingQuery}

	if strings.TrimSpace(query.Text) == "" {
		return r.fail(ErrInvalidQuery)
	}

	r.logger.Debug().Int("context_keys", len(query.Context)).Msg("Processing query")

	session, err := agent.NewSession(a.model,
		agent.WithSystemPrompt(a.systemPrompt),
		agent.WithTools(a.catalog.Tools()...),
		agent.WithMaxTokens(a.maxTokens),
		agent.WithTemperature(a.temperature),
	)
	if err != nil {
		return r.fail(err)
	}

	r.transition(StateModelRequested)

	first, err := session.SendMessage(ctx, query.Text)
	if err != nil {
		return r.fail(err)
	}

	if !first.HasToolCalls() {
		return r.respond(first.Text)
	}

	call := first.ToolCalls[0]
	r.outcome.ToolCall = &call
	r.outcome.IgnoredCalls = len(first.ToolCalls) - 1

	r.transition(StateToolCallDetected)

	if r.outcome.IgnoredCalls > 0 {
		r.logger.Warn().
			Str("tool", call.Name).
			Int("ignored_calls", r.outcome.IgnoredCalls).
			Msg("Model requested several tools, only the first is executed")
	}

	if _, ok := a.catalog.Lookup(call.Name); !ok {
		r.logger.Warn().Str("tool", call.Name).Msg("Model requested an unknown tool, answering with its text")
		return r.respond(first.Text)
	}

	result, err := a.executor.Execute(ctx, call.Name, tool.Arguments(call.Arguments))
	if err != nil {
		return r.fail(err)
	}
	r.outcome.ToolResult = result

	r.transition(StateToolExecuted)

	second, err := session.SendToolResult(ctx, call, result)
	if err != nil {
		return r.fail(err)
	}

	r.transition(StateFollowupRequested)

	return r.respond(second.Text)
}

type run struct {
	logger  zerolog.Logger
	state   State
	outcome Outcome
}

func (r *run) transition(next State) {
	r.logger.Debug().Str("from", string(r.state)).Str("to", string(next)).Msg("State transition")
	r.state = next
}

func (r *run) respond(text string) Outcome {
	r.transition(StateResponded)

	r.outcome.State = StateResponded
	r.outcome.Text = text

	return r.outcome
}

func (r *run) fail(err error) Outcome {
	r.logger.Debug().Str("from", string(r.state)).Err(err).Msg("Run failed")
	r.state = StateFailed

	r.outcome.State = StateFailed
	r.outcome.Err = err

	return r.outcome
}

// ErrorKind names the failure class of err for logs.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidQuery), errors.Is(err, ErrEmptyReport):
		return "invalid_request"
	case errors.Is(err, tool.ErrUnknownTool):
		return "unknown_tool"
	case errors.Is(err, tool.ErrInvalidArguments):
		return "invalid_tool_arguments"
	case errors.Is(err, tool.ErrExecutionFailed):
		return "tool_execution_failed"
	case errors.Is(err, types.ErrModelTimeout):
		return "model_timeout"
	case errors.Is(err, types.ErrEmptyResponse):
		return "model_empty_response"
	case errors.Is(err, types.ErrModelTransportFailed):
		return "model_transport_failed"
	default:
		return "internal"
	}
}

package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/svasthya/svasthya/pkg/ai-sdk/provider"
	"github.com/svasthya/svasthya/pkg/ai-sdk/types"
)

// Session is a single multi-turn exchange with a language model. It keeps the
// turn history needed for a coherent follow-up and is not safe for concurrent
// use; create one per request.
type Session struct {
	model        provider.LanguageModel
	systemPrompt string
	tools        []types.Tool
	maxTokens    int
	temperature  float32

	history []types.Message
	usage   types.Usage

	hooks Hooks
}

type Hooks struct {
	OnBeforeGenerate   func(ctx context.Context, req *provider.GenerateRequest)
	OnGenerationFailed func(ctx context.Context, req *provider.GenerateRequest, err error)
	OnTurn             func(ctx context.Context, turn Turn)
}

// Turn is one model reply: free text, function calls, or both.
type Turn struct {
	Text         string
	ToolCalls    []types.ToolCall
	FinishReason string
	Usage        types.Usage
}

// HasToolCalls reports whether the model requested at least one function call
func (t Turn) HasToolCalls() bool {
	return len(t.ToolCalls) > 0
}

func NewSession(model provider.LanguageModel, opts ...Option) (*Session, error) {
	if model == nil {
		return nil, types.ErrProviderNotSet
	}

	s := &Session{model: model}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// SendMessage submits a user turn and returns the model's reply
func (s *Session) SendMessage(ctx context.Context, text string) (Turn, error) {
	if text == "" {
		return Turn{}, fmt.Errorf("%w: empty user message", types.ErrInvalidMessage)
	}

	return s.send(ctx, types.NewUserMessage(text))
}

// SendToolResult submits the result of call as a function-response turn and
// returns the model's reply
func (s *Session) SendToolResult(ctx context.Context, call types.ToolCall, result map[string]any) (Turn, error) {
	content, err := json.Marshal(result)
	if err != nil {
		return Turn{}, fmt.Errorf("failed to marshal tool result: %w", err)
	}

	return s.send(ctx, types.Message{
		Role: types.RoleTool,
		ToolResults: []types.ToolResult{
			{
				ToolCallID: call.ID,
				ToolName:   call.Name,
				Content:    string(content),
				Data:       result,
			},
		},
		Timestamp: time.Now(),
	})
}

// History returns a copy of the turns exchanged so far
func (s *Session) History() []types.Message {
	return append([]types.Message(nil), s.history...)
}

// Usage returns the token usage accumulated by the session
func (s *Session) Usage() types.Usage {
	return s.usage
}

func (s *Session) send(ctx context.Context, msg types.Message) (Turn, error) {
	messages := append(s.History(), msg)

	req := provider.GenerateRequest{
		Messages:    messages,
		System:      s.systemPrompt,
		Tools:       s.tools,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	}

	if s.hooks.OnBeforeGenerate != nil {
		s.hooks.OnBeforeGenerate(ctx, &req)
	}

	resp, err := s.model.Generate(ctx, req)
	if err == nil && resp == nil {
		err = types.ErrEmptyResponse
	}
	if err == nil && resp.Blocked() {
		err = fmt.Errorf("%w: reply withheld by content filter", types.ErrEmptyResponse)
	}
	if err != nil {
		err = ClassifyError(err)
		if s.hooks.OnGenerationFailed != nil {
			s.hooks.OnGenerationFailed(ctx, &req, err)
		}
		return Turn{}, err
	}

	turn := Turn{
		Text:         resp.Content,
		ToolCalls:    resp.ToolCalls,
		FinishReason: resp.FinishReason,
		Usage:        resp.Usage,
	}

	s.history = append(messages, types.Message{
		Role:      types.RoleAssistant,
		Content:   resp.Content,
		ToolCalls: resp.ToolCalls,
		Timestamp: time.Now(),
	})
	s.usage = s.usage.Add(resp.Usage)

	if s.hooks.OnTurn != nil {
		s.hooks.OnTurn(ctx, turn)
	}

	return turn, nil
}

// GenerateText issues a single prompt-in/text-out call with no history and no tools
func GenerateText(ctx context.Context, model provider.LanguageModel, prompt string) (string, error) {
	if model == nil {
		return "", types.ErrProviderNotSet
	}

	resp, err := model.Generate(ctx, provider.GenerateRequest{
		Messages: []types.Message{types.NewUserMessage(prompt)},
	})
	if err == nil && resp == nil {
		err = types.ErrEmptyResponse
	}
	if err == nil && resp.Blocked() {
		err = fmt.Errorf("%w: reply withheld by content filter", types.ErrEmptyResponse)
	}
	if err != nil {
		return "", ClassifyError(err)
	}

	return resp.Content, nil
}

// ClassifyError tags a provider error as a timeout or a generic transport failure
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, types.ErrModelTimeout) || errors.Is(err, types.ErrModelTransportFailed) {
		return err
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w", types.ErrModelTimeout, err)
	}

	return fmt.Errorf("%w: %w", types.ErrModelTransportFailed, err)
}

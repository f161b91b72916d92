// Package providertest provides a scripted LanguageModel for tests.
package providertest

import (
	"context"
	"sync"

	"github.com/svasthya/svasthya/pkg/ai-sdk/provider"
	"github.com/svasthya/svasthya/pkg/ai-sdk/types"
)

// RespondFunc decides the model's reply for a request.
type RespondFunc func(ctx context.Context, req provider.GenerateRequest) (*types.GenerateResponse, error)

// ScriptedModel is a LanguageModel whose replies come from a RespondFunc.
// It is safe for concurrent use and records every request it receives.
type ScriptedModel struct {
	respond RespondFunc

	mu       sync.Mutex
	requests []provider.GenerateRequest
}

func New(respond RespondFunc) *ScriptedModel {
	return &ScriptedModel{respond: respond}
}

// Sequence replies with the given responses in order, one per call,
// repeating the last one once exhausted.
func Sequence(responses ...*types.GenerateResponse) *ScriptedModel {
	var (
		mu    sync.Mutex
		index int
	)

	return New(func(_ context.Context, _ provider.GenerateRequest) (*types.GenerateResponse, error) {
		mu.Lock()
		defer mu.Unlock()

		if len(responses) == 0 {
			return nil, types.ErrEmptyResponse
		}

		resp := responses[min(index, len(responses)-1)]
		index++

		return resp, nil
	})
}

// Failing always returns err.
func Failing(err error) *ScriptedModel {
	return New(func(_ context.Context, _ provider.GenerateRequest) (*types.GenerateResponse, error) {
		return nil, err
	})
}

func (m *ScriptedModel) Generate(ctx context.Context, req provider.GenerateRequest) (*types.GenerateResponse, error) {
	recorded := req
	recorded.Messages = append([]types.Message(nil), req.Messages...)

	m.mu.Lock()
	m.requests = append(m.requests, recorded)
	m.mu.Unlock()

	return m.respond(ctx, req)
}

func (m *ScriptedModel) ID() string {
	return "scripted:test"
}

// Requests returns a copy of every request received so far.
func (m *ScriptedModel) Requests() []provider.GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]provider.GenerateRequest(nil), m.requests...)
}

// Calls returns the number of Generate calls.
func (m *ScriptedModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.requests)
}

// Text builds a plain-text response.
func Text(content string) *types.GenerateResponse {
	return &types.GenerateResponse{
		Content:      content,
		FinishReason: types.FinishReasonStop,
		Model:        "scripted",
	}
}

// Call builds a response carrying the given tool calls.
func Call(content string, calls ...types.ToolCall) *types.GenerateResponse {
	return &types.GenerateResponse{
		Content:      content,
		ToolCalls:    calls,
		FinishReason: types.FinishReasonToolCalls,
		Model:        "scripted",
	}
}

// Blocked builds a response withheld by the provider's content filter.
func Blocked() *types.GenerateResponse {
	return &types.GenerateResponse{
		FinishReason: types.FinishReasonContentFilter,
		Model:        "scripted",
	}
}

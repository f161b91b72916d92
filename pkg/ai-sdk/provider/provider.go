// Package provider defines the contract between the assistant and a language
// model vendor. Adapters live in the sub-packages.
package provider

import (
	"context"

	"github.com/svasthya/svasthya/pkg/ai-sdk/types"
)

// LanguageModel is a blocking, function-calling capable chat model.
// Implementations must be safe for concurrent use.
type LanguageModel interface {
	Generate(ctx context.Context, req GenerateRequest) (*types.GenerateResponse, error)

	// ID is "<vendor>:<model>", used in logs
	ID() string
}

// GenerateRequest is one round-trip to the model. Messages carries the whole
// exchange so far; adapters keep no state between calls.
type GenerateRequest struct {
	Messages []types.Message `json:"messages"`
	System   string          `json:"system,omitempty"`
	Tools    []types.Tool    `json:"tools,omitempty"`

	// Zero values fall back to the adapter's configured defaults
	Temperature float32 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

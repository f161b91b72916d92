package initialization

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/svasthya/svasthya/pkg/ai-sdk/provider"
	"github.com/svasthya/svasthya/pkg/ai-sdk/provider/anthropic"
	"github.com/svasthya/svasthya/pkg/ai-sdk/provider/gemini"
	"github.com/svasthya/svasthya/pkg/ai-sdk/provider/openai"
)

// NewLanguageModel builds the configured provider. Every provider shares an
// HTTP client whose timeout bounds a single model round-trip.
func NewLanguageModel(ctx context.Context, config Config) (provider.LanguageModel, error) {
	httpClient := newModelHTTPClient(config.ModelTimeout)

	switch config.LLMProvider {
	case ProviderGemini:
		return gemini.New(ctx, gemini.Config{
			APIKey:          config.GeminiAPIKey,
			Model:           config.LLMModel,
			MaxOutputTokens: int32(config.MaxOutputTokens),
			HTTPClient:      httpClient,
		})
	case ProviderOpenAI:
		return openai.New(openai.Config{
			APIKey:     config.OpenAIAPIKey,
			Model:      config.LLMModel,
			MaxTokens:  config.MaxOutputTokens,
			HTTPClient: httpClient,
		}), nil
	case ProviderAnthropic:
		return anthropic.New(anthropic.Config{
			APIKey:     config.AnthropicAPIKey,
			Model:      config.LLMModel,
			MaxTokens:  config.MaxOutputTokens,
			HTTPClient: httpClient,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", config.LLMProvider)
	}
}

func newModelHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

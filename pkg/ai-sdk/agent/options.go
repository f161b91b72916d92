package agent

import (
	"github.com/svasthya/svasthya/pkg/ai-sdk/types"
)

type Option func(*Session)

func WithSystemPrompt(prompt string) Option {
	return func(s *Session) {
		s.systemPrompt = prompt
	}
}

func WithTools(tools ...types.Tool) Option {
	return func(s *Session) {
		s.tools = append(s.tools, tools...)
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(s *Session) {
		s.maxTokens = maxTokens
	}
}

func WithTemperature(temperature float32) Option {
	return func(s *Session) {
		s.temperature = temperature
	}
}

func WithHooks(hooks Hooks) Option {
	return func(s *Session) {
		s.hooks = hooks
	}
}

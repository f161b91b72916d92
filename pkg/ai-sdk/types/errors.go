package types

import "errors"

var (
	// ErrProviderNotSet is returned when a provider is not configured
	ErrProviderNotSet = errors.New("provider not set")

	// ErrInvalidMessage is returned when a message is invalid
	ErrInvalidMessage = errors.New("invalid message")

	// ErrEmptyResponse is returned when the provider returns an empty response
	ErrEmptyResponse = errors.New("empty response from provider")

	// ErrModelTransportFailed wraps any network or provider error from a generation call
	ErrModelTransportFailed = errors.New("model transport failed")

	// ErrModelTimeout is returned when the model transport gives up waiting for a response
	ErrModelTimeout = errors.New("model request timed out")
)

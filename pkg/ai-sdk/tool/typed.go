package tool

import (
	"context"
	"encoding/json"
	"fmt"
)

// Typed adapts a function over a concrete argument struct and result struct
// into a Func. Arguments are decoded through their JSON tags; a decoding
// failure is reported as an *InvalidArgumentsError.
func Typed[Args any, Out any](name string, fn func(ctx context.Context, args Args) (Out, error)) Func {
	return func(ctx context.Context, raw Arguments) (Result, error) {
		args, err := Decode[Args](raw)
		if err != nil {
			return nil, &InvalidArgumentsError{Tool: name, Cause: err}
		}

		out, err := fn(ctx, args)
		if err != nil {
			return nil, err
		}

		return Encode(out)
	}
}

// Decode converts an argument bag into a typed struct
func Decode[T any](raw Arguments) (T, error) {
	var out T

	data, err := json.Marshal(raw)
	if err != nil {
		return out, fmt.Errorf("failed to marshal arguments: %w", err)
	}

	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to decode arguments: %w", err)
	}

	return out, nil
}

// Encode flattens a typed result into a Result mapping
func Encode(v any) (Result, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}

	result := Result{}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("tool result is not an object: %w", err)
	}

	return result, nil
}

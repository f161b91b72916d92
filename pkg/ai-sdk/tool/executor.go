package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Executor validates arguments and dispatches calls to registered tools.
// It owns validation and dispatch only; failures of the collaborator behind a
// tool come back as *ExecutionError.
type Executor struct {
	registry *Registry
}

func NewExecutor(registry *Registry) *Executor {
	return &Executor{registry: registry}
}

// Execute runs the tool registered under name
func (e *Executor) Execute(ctx context.Context, name string, args Arguments) (Result, error) {
	def, ok := e.registry.Definition(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	if err := e.validate(def, args); err != nil {
		return nil, err
	}

	fn, _ := e.registry.Lookup(name)

	log.Debug().Str("tool", name).Int("args", len(args)).Msg("Executing tool")

	result, err := fn(ctx, args)
	if err != nil {
		var invalid *InvalidArgumentsError
		if errors.As(err, &invalid) {
			return nil, err
		}
		return nil, &ExecutionError{Tool: name, Err: err}
	}

	if result == nil {
		result = Result{}
	}

	return result, nil
}

func (e *Executor) validate(def Definition, args Arguments) error {
	var missing []string
	for _, name := range def.RequiredParameters() {
		if isEmpty(args[name]) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &InvalidArgumentsError{Tool: def.Name, Missing: missing}
	}

	schema := e.registry.schema(def.Name)
	if schema == nil {
		return nil
	}

	normalized, err := normalize(args)
	if err != nil {
		return &InvalidArgumentsError{Tool: def.Name, Cause: err}
	}

	if err := schema.Validate(normalized); err != nil {
		return &InvalidArgumentsError{Tool: def.Name, Cause: err}
	}

	return nil
}

// normalize round-trips the argument bag through JSON so the validator only
// sees JSON value types
func normalize(args Arguments) (any, error) {
	if args == nil {
		args = Arguments{}
	}

	data, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("arguments are not valid JSON: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("arguments are not valid JSON: %w", err)
	}

	return v, nil
}

func isEmpty(v any) bool {
	switch value := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(value) == ""
	case []any:
		return len(value) == 0
	case map[string]any:
		return len(value) == 0
	default:
		return false
	}
}

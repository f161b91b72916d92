package tool

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownTool is returned when a tool name is not registered
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidArguments matches every *InvalidArgumentsError
	ErrInvalidArguments = errors.New("invalid tool arguments")

	// ErrExecutionFailed matches every *ExecutionError
	ErrExecutionFailed = errors.New("tool execution failed")
)

// InvalidArgumentsError reports arguments that do not satisfy a tool's schema
type InvalidArgumentsError struct {
	Tool    string
	Missing []string
	Cause   error
}

func (e *InvalidArgumentsError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid arguments for tool %s", e.Tool)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": missing required parameters: %s", strings.Join(e.Missing, ", "))
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *InvalidArgumentsError) Unwrap() error {
	return e.Cause
}

func (e *InvalidArgumentsError) Is(target error) bool {
	return target == ErrInvalidArguments
}

// ExecutionError wraps a failure of the collaborator behind a tool
type ExecutionError struct {
	Tool string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

func (e *ExecutionError) Is(target error) bool {
	return target == ErrExecutionFailed
}

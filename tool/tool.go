// Package tool implements the function / tool calling subsystem that lets the
// agent invoke structured capabilities (APIs, computations, side-effects) with
// schema validated arguments and consistent error handling.
package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/ragmesh/internal/util"
)

// Tool defines a capability the model can request via a tool call.
//
// Tool implementations should:
//   - Provide clear, descriptive names and descriptions
//   - Define proper JSON schema for parameters
//   - Be safe for concurrent use; the registry is shared by all sessions
type Tool interface {
	// Name returns the unique identifier for this tool (snake_case recommended).
	Name() string

	// Description returns a human-readable description provided to the model
	// so it understands when and how to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool with already-validated arguments.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// Error codes distinguishing the tool failure classes. All three surface into
// the transcript as tool-role messages so the model can react.
const (
	// CodeUnknownTool means no handler is registered under the requested name.
	CodeUnknownTool = "UNKNOWN_TOOL"
	// CodeValidationError means required parameters were missing or mistyped.
	CodeValidationError = "VALIDATION_ERROR"
	// CodeExecutionError wraps a handler-reported failure.
	CodeExecutionError = "EXECUTION_ERROR"
)

// ToolError represents errors that occur during tool resolution or execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}

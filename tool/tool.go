package tool

import (
	"fmt"

	"github.com/aeropilot-ai/aeropilot/core"
	"github.com/aeropilot-ai/aeropilot/internal/util"
)

// Tool defines the interface for extending agent capabilities with external
// functions.
//
// Tool implementations should:
//   - Provide clear, descriptive names and descriptions (snake_case names)
//   - Define a proper JSON schema for parameters
//   - Handle errors gracefully
//   - Be safe for concurrent use; calls requested in one model turn may
//     execute in parallel
type Tool interface {
	// Name returns the unique identifier for this tool within one agent.
	Name() string

	// Description returns a human-readable description of what this tool
	// does. It is provided to the model to guide tool selection.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool with decoded arguments and a ToolContext giving
	// access to shared run state and logging.
	Call(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// Error codes attached to ToolError.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeExecution  = "EXECUTION_ERROR"
)

// ToolError represents a tool invocation failure. It is the error surfaced
// to the caller when a tool (or the external service behind it) fails.
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
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}

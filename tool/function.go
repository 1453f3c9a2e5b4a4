package tool

import (
	"fmt"
	"time"

	"github.com/aeropilot-ai/aeropilot/core"
	"github.com/aeropilot-ai/aeropilot/internal/util"
)

// FunctionTool is a generic adapter that exposes a plain Go function as a
// tool.
//
// Responsibilities:
//   - Holds a lightweight JSON-Schema-like parameter specification
//   - Validates model supplied arguments against that schema before execution
//   - Invokes the wrapped function with a *core.ToolContext giving access to
//     shared run state, logging and the originating function call id
//   - Normalizes error handling so callers receive *ToolError with consistent
//     codes: VALIDATION_ERROR for schema mismatch, EXECUTION_ERROR for an
//     underlying failure (custom codes preserved if the function returns
//     *ToolError directly)
//
// A FunctionTool has no internal mutable state after construction and is safe
// for concurrent use by multiple goroutines.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// NewFunctionTool constructs a FunctionTool from an explicit schema and function.
//
// Example:
//
//	sumTool := NewFunctionTool(
//	  "calculate_sum",
//	  "Calculate the sum of two numbers",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "a": map[string]any{"type": "number"},
//	      "b": map[string]any{"type": "number"},
//	    },
//	    "required": []string{"a", "b"},
//	  },
//	  func(tc *core.ToolContext, args map[string]any) (any, error) {
//	    return args["a"].(float64) + args["b"].(float64), nil
//	  },
//	)
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(toolCtx *core.ToolContext, args map[string]any) (any, error),
) *FunctionTool {
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewFunctionToolFromStruct derives the parameter schema from a struct using
// reflection. It is a convenience for simple argument containers.
//
// Example:
//
//	type TakeoffArgs struct {
//	  Altitude float64 `json:"altitude" description:"Target altitude in meters"`
//	}
//
//	takeoff := NewFunctionToolFromStruct(
//	  "takeoff",
//	  "Command the vehicle to take off",
//	  TakeoffArgs{},
//	  func(tc *core.ToolContext, args map[string]any) (any, error) { ... },
//	)
func NewFunctionToolFromStruct(
	name, description string,
	structType any,
	fn func(toolCtx *core.ToolContext, args map[string]any) (any, error),
) *FunctionTool {
	schema := util.CreateSchema(structType)
	return NewFunctionTool(name, description, schema, fn)
}

// Name returns the unique tool name used in function call declarations and routing.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the short natural language description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the (minimal) JSON schema describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates the provided args against the declared schema then invokes
// the underlying function. Validation or execution failures are wrapped (or
// passed through) as *ToolError for uniform downstream handling.
func (t *FunctionTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	logger := toolCtx.Logger()
	start := time.Now()

	logger.Debug("tool.call.start", "tool", t.name, "fc_id", toolCtx.FunctionCallID())

	if err := util.ValidateParameters(args, t.parameters); err != nil {
		logger.Warn("tool.call.validation_failed", "tool", t.name, "error", err.Error())

		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    CodeValidation,
			Details: err,
		}
	}

	result, err := t.fn(toolCtx, args)
	if err != nil {
		if toolErr, ok := err.(*ToolError); ok { // Already a ToolError -> just log and forward
			logger.Error("tool.call.error", "tool", t.name, "error", toolErr.Message)

			return nil, toolErr
		}

		logger.Error("tool.call.error", "tool", t.name, "error", err.Error())

		return nil, &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    CodeExecution,
		}
	}

	logger.Info("tool.call.success", "tool", t.name, "duration_ms", time.Since(start).Milliseconds())

	return result, nil
}

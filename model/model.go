package model

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aeropilot-ai/aeropilot/core"
)

// TransferFunctionName is the synthetic function exposed to providers so a
// model can declare a handoff. Adapters translate a call to this function
// into a core.HandoffPart; it never reaches the tool invoker.
const TransferFunctionName = "transfer_to_agent"

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

// HandoffDefinition exposes a delegation target to the model.
type HandoffDefinition struct {
	Target      string `json:"target"`
	Description string `json:"description,omitempty"`
}

// Settings carries provider parameters passed opaquely through the loop.
type Settings struct {
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int64   `json:"max_tokens,omitempty"`
}

// Request captures the normalized model input produced by the runner for one
// reasoning turn.
type Request struct {
	AgentName    string              `json:"agent_name"`   // Issuing agent identity (logging, test determinism)
	Instructions string              `json:"instructions"` // System prompt, resolved fresh for this turn
	Contents     []core.Content      `json:"contents"`     // Conversation history converted to provider messages
	Tools        []ToolDefinition    `json:"tools,omitempty"`
	Handoffs     []HandoffDefinition `json:"handoffs,omitempty"`
	OutputSchema map[string]any      `json:"output_schema,omitempty"` // Non-nil when the agent declares structured output
	Settings     Settings            `json:"settings"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the outcome of one generation call. Its Content is exactly one
// of: final text, tool call parts, or a handoff part. Helper methods expose
// the variants.
type Response struct {
	Content      core.Content `json:"content"`
	FinishReason string       `json:"finish_reason,omitempty"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Text concatenates the response's text parts.
func (r *Response) Text() string { return r.Content.Text() }

// ToolCalls returns requested tool invocations in declaration order.
func (r *Response) ToolCalls() []core.FunctionCall {
	var calls []core.FunctionCall
	for _, p := range r.Content.Parts {
		if fc, ok := p.(core.FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}
	return calls
}

// Handoff returns the declared handoff, if any.
func (r *Response) Handoff() *core.Handoff {
	for _, p := range r.Content.Parts {
		if hp, ok := p.(core.HandoffPart); ok {
			h := hp.Handoff
			return &h
		}
	}
	return nil
}

// Info contains metadata about a gateway implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Gateway is the interface the execution loop drives generation through.
// Implementations should honor ctx cancellation; the loop applies no implicit
// timeout of its own.
type Gateway interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the gateway implementation.
	Info() Info
}

// CallError wraps a provider failure so callers can distinguish model
// infrastructure faults from policy rejections.
type CallError struct {
	Provider string
	Err      error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("model call failed (%s): %v", e.Provider, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// TransferToolDefinition renders the handoff targets as the synthetic
// transfer function definition shared by provider adapters.
func TransferToolDefinition(handoffs []HandoffDefinition) ToolDefinition {
	targets := make([]string, 0, len(handoffs))
	desc := "Delegate the conversation to another agent by name. Available targets:"
	for _, h := range handoffs {
		targets = append(targets, h.Target)
		desc += fmt.Sprintf(" %s (%s);", h.Target, h.Description)
	}

	return ToolDefinition{
		Name:        TransferFunctionName,
		Description: desc,
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"agent": map[string]any{"type": "string", "description": "Target agent name", "enum": targets},
				"input": map[string]any{"type": "string", "description": "Input to carry forward to the target"},
			},
			"required": []string{"agent"},
		},
	}
}

// DecodeTransferCall converts a transfer_to_agent function call emitted by a
// provider into a Handoff. Returns false when fc is not the transfer function.
func DecodeTransferCall(fc core.FunctionCall) (core.Handoff, bool) {
	if fc.Name != TransferFunctionName {
		return core.Handoff{}, false
	}

	var args struct {
		Agent string `json:"agent"`
		Input string `json:"input"`
	}
	// Malformed arguments yield an empty target which the router rejects.
	_ = json.Unmarshal([]byte(fc.Arguments), &args)

	return core.Handoff{Target: args.Agent, Input: args.Input}, true
}

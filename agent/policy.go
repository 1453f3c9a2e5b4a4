package agent

import (
	"encoding/json"
	"fmt"

	"github.com/aeropilot-ai/aeropilot/core"
)

// ToolUseDecision is the outcome of resolving a tool episode: either continue
// reasoning with the tool results appended to context, or treat Output as the
// run's candidate final answer.
type ToolUseDecision struct {
	Final  bool
	Output string
}

// ToolUsePolicy decides the transition out of a tool episode. The variant set
// is closed: ReasonAfterTools, StopOnFirstTool, StopOnNamedTools and
// CustomToolUse are the only forms. Resolution happens once per episode, after
// every requested call of the model turn has completed.
type ToolUsePolicy interface {
	// Resolve inspects the episode's records (in request order) and returns
	// the decision. Built-in policies propagate a failed record's error;
	// CustomToolUse may recover from failures.
	Resolve(records []core.ToolCallRecord) (ToolUseDecision, error)

	isToolUsePolicy()
}

type reasonAfterTools struct{}

// ReasonAfterTools returns the default policy: append tool results to context
// and return to reasoning.
func ReasonAfterTools() ToolUsePolicy { return reasonAfterTools{} }

func (reasonAfterTools) isToolUsePolicy() {}

func (reasonAfterTools) Resolve(records []core.ToolCallRecord) (ToolUseDecision, error) {
	if err := firstFailure(records); err != nil {
		return ToolUseDecision{}, err
	}
	return ToolUseDecision{Final: false}, nil
}

type stopOnFirstTool struct{}

// StopOnFirstTool returns the policy that makes the first tool result of the
// episode the candidate final output, skipping further reasoning.
func StopOnFirstTool() ToolUsePolicy { return stopOnFirstTool{} }

func (stopOnFirstTool) isToolUsePolicy() {}

func (stopOnFirstTool) Resolve(records []core.ToolCallRecord) (ToolUseDecision, error) {
	if len(records) == 0 {
		return ToolUseDecision{Final: false}, nil
	}
	rec := records[0]
	if rec.Failed() {
		return ToolUseDecision{}, fmt.Errorf("tool %q failed: %s", rec.Name, rec.Err)
	}
	return ToolUseDecision{Final: true, Output: RenderToolResult(rec.Result)}, nil
}

type stopOnNamedTools struct {
	names map[string]bool
}

// StopOnNamedTools returns the policy that terminates the run with the result
// of the first invoked tool whose name is in names; episodes invoking none of
// the named tools continue reasoning as usual.
func StopOnNamedTools(names ...string) ToolUsePolicy {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return stopOnNamedTools{names: set}
}

func (stopOnNamedTools) isToolUsePolicy() {}

func (p stopOnNamedTools) Resolve(records []core.ToolCallRecord) (ToolUseDecision, error) {
	for _, rec := range records {
		if !p.names[rec.Name] {
			continue
		}
		if rec.Failed() {
			return ToolUseDecision{}, fmt.Errorf("tool %q failed: %s", rec.Name, rec.Err)
		}
		return ToolUseDecision{Final: true, Output: RenderToolResult(rec.Result)}, nil
	}
	return reasonAfterTools{}.Resolve(records)
}

type customToolUse struct {
	fn func(records []core.ToolCallRecord) (ToolUseDecision, error)
}

// CustomToolUse returns a policy backed by a caller-supplied function that
// receives the episode's full record list and decides the transition. It is
// the only variant that may recover from a failed tool call.
func CustomToolUse(fn func(records []core.ToolCallRecord) (ToolUseDecision, error)) ToolUsePolicy {
	return customToolUse{fn: fn}
}

func (customToolUse) isToolUsePolicy() {}

func (p customToolUse) Resolve(records []core.ToolCallRecord) (ToolUseDecision, error) {
	return p.fn(records)
}

// firstFailure returns the first failed record's error in request order.
func firstFailure(records []core.ToolCallRecord) error {
	for _, rec := range records {
		if rec.Failed() {
			return fmt.Errorf("tool %q failed: %s", rec.Name, rec.Err)
		}
	}
	return nil
}

// RenderToolResult converts a tool result into the textual form used when a
// policy promotes it to the final output. Strings pass through verbatim.
func RenderToolResult(result any) string {
	switch v := result.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
		return fmt.Sprintf("%v", v)
	}
}

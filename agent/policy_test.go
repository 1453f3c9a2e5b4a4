package agent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeropilot-ai/aeropilot/core"
)

func TestReasonAfterTools(t *testing.T) {
	policy := ReasonAfterTools()

	decision, err := policy.Resolve([]core.ToolCallRecord{
		{ID: "1", Name: "scan", Result: "clear"},
	})
	require.NoError(t, err)
	assert.False(t, decision.Final)
}

func TestReasonAfterTools_PropagatesFailure(t *testing.T) {
	policy := ReasonAfterTools()

	_, err := policy.Resolve([]core.ToolCallRecord{
		{ID: "1", Name: "scan", Result: "clear"},
		{ID: "2", Name: "takeoff", Err: "motor fault"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "takeoff")
}

func TestStopOnFirstTool(t *testing.T) {
	policy := StopOnFirstTool()

	decision, err := policy.Resolve([]core.ToolCallRecord{
		{ID: "1", Name: "scan", Result: "all clear"},
		{ID: "2", Name: "takeoff", Result: "climbing"},
	})
	require.NoError(t, err)
	assert.True(t, decision.Final)
	// First tool's result, verbatim.
	assert.Equal(t, "all clear", decision.Output)
}

func TestStopOnFirstTool_EmptyEpisodeContinues(t *testing.T) {
	decision, err := StopOnFirstTool().Resolve(nil)
	require.NoError(t, err)
	assert.False(t, decision.Final)
}

func TestStopOnNamedTools_Match(t *testing.T) {
	policy := StopOnNamedTools("takeoff")

	decision, err := policy.Resolve([]core.ToolCallRecord{
		{ID: "1", Name: "scene_scan", Result: "clear"},
		{ID: "2", Name: "takeoff", Result: "takeoff acknowledged"},
	})
	require.NoError(t, err)
	assert.True(t, decision.Final)
	assert.Equal(t, "takeoff acknowledged", decision.Output)
}

func TestStopOnNamedTools_NoMatchContinues(t *testing.T) {
	policy := StopOnNamedTools("takeoff")

	decision, err := policy.Resolve([]core.ToolCallRecord{
		{ID: "1", Name: "scene_scan", Result: "clear"},
	})
	require.NoError(t, err)
	assert.False(t, decision.Final)
}

func TestCustomToolUse(t *testing.T) {
	policy := CustomToolUse(func(records []core.ToolCallRecord) (ToolUseDecision, error) {
		for _, rec := range records {
			if rec.Name == "decide" {
				return ToolUseDecision{Final: true, Output: "custom"}, nil
			}
		}
		return ToolUseDecision{}, nil
	})

	decision, err := policy.Resolve([]core.ToolCallRecord{{ID: "1", Name: "decide"}})
	require.NoError(t, err)
	assert.True(t, decision.Final)
	assert.Equal(t, "custom", decision.Output)
}

func TestCustomToolUse_CanRecoverFromFailure(t *testing.T) {
	policy := CustomToolUse(func(records []core.ToolCallRecord) (ToolUseDecision, error) {
		return ToolUseDecision{Final: true, Output: "recovered"}, nil
	})

	decision, err := policy.Resolve([]core.ToolCallRecord{
		{ID: "1", Name: "scan", Err: "sensor offline"},
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", decision.Output)
}

func TestCustomToolUse_ErrorPropagates(t *testing.T) {
	boom := errors.New("undecidable")
	policy := CustomToolUse(func(_ []core.ToolCallRecord) (ToolUseDecision, error) {
		return ToolUseDecision{}, boom
	})

	_, err := policy.Resolve(nil)
	assert.ErrorIs(t, err, boom)
}

func TestRenderToolResult(t *testing.T) {
	assert.Equal(t, "", RenderToolResult(nil))
	assert.Equal(t, "plain", RenderToolResult("plain"))
	assert.Equal(t, `{"ok":true}`, RenderToolResult(map[string]any{"ok": true}))
	assert.Equal(t, "42", RenderToolResult(42))
}

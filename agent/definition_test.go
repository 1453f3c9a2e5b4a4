package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeropilot-ai/aeropilot/core"
	"github.com/aeropilot-ai/aeropilot/guardrail"
	"github.com/aeropilot-ai/aeropilot/model"
	"github.com/aeropilot-ai/aeropilot/tool"
)

func noopTool(name string) tool.Tool {
	return tool.NewFunctionTool(name, "test tool",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ *core.ToolContext, _ map[string]any) (any, error) { return "ok", nil },
	)
}

func passGuard(name string) guardrail.Guardrail {
	return guardrail.NewFunc(name, func(_ context.Context, _ *core.RunContext, _ string) (core.Verdict, error) {
		return core.Pass(nil), nil
	})
}

func TestNew_Defaults(t *testing.T) {
	def, err := New("Helper")
	require.NoError(t, err)

	assert.Equal(t, "Helper", def.Name())
	assert.Empty(t, def.Tools())
	assert.Empty(t, def.Handoffs())
	assert.False(t, def.Output().IsStructured())

	instructions, err := def.ResolveInstructions(nil)
	require.NoError(t, err)
	assert.Contains(t, instructions, "Helper")
}

func TestNew_EmptyNameFails(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestNew_DuplicateToolFails(t *testing.T) {
	_, err := New("Agent", WithTools(noopTool("scan"), noopTool("scan")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate tool")
}

func TestNew_ReservedToolNameFails(t *testing.T) {
	_, err := New("Agent", WithTools(noopTool(model.TransferFunctionName)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reserved")
}

func TestNew_SelfHandoffFails(t *testing.T) {
	other := MustNew("Agent")
	_, err := New("Agent", WithHandoffs(other))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "itself")
}

func TestValidateGraph_DuplicateIdentity(t *testing.T) {
	// Two distinct definitions sharing an identity, reachable from one root.
	historyA := MustNew("History")
	historyB := MustNew("History")
	mid := MustNew("Mid", WithHandoffs(historyB))

	root := MustNew("Root", WithHandoffs(historyA))
	err := root.RegisterHandoff(mid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate agent identity")
}

func TestRegisterHandoff_MutualGraph(t *testing.T) {
	a := MustNew("A")
	b := MustNew("B")

	require.NoError(t, a.RegisterHandoff(b))
	require.NoError(t, b.RegisterHandoff(a))

	require.NoError(t, a.ValidateGraph())
	target, ok := b.HandoffTarget("A")
	require.True(t, ok)
	assert.Same(t, a, target)
}

func TestToolAndHandoffDefinitions_Sorted(t *testing.T) {
	def := MustNew("Agent",
		WithTools(noopTool("zeta"), noopTool("alpha")),
		WithHandoffs(MustNew("Math", WithDescription("math")), MustNew("History", WithDescription("history"))),
	)

	tools := def.ToolDefinitions()
	require.Len(t, tools, 2)
	assert.Equal(t, "alpha", tools[0].Name)
	assert.Equal(t, "zeta", tools[1].Name)

	handoffs := def.HandoffDefinitions()
	require.Len(t, handoffs, 2)
	assert.Equal(t, "History", handoffs[0].Target)
	assert.Equal(t, "history", handoffs[0].Description)
	assert.Equal(t, "Math", handoffs[1].Target)
}

func TestDerive_DoesNotMutateReceiver(t *testing.T) {
	base := MustNew("Agent",
		WithDescription("original"),
		WithTools(noopTool("scan")),
		WithInputGuardrails(passGuard("gate")),
		WithSettings(model.Settings{Temperature: 0.2}),
	)

	derived, err := base.Derive(
		WithDescription("derived"),
		WithTools(noopTool("takeoff")),
		WithSettings(model.Settings{Temperature: 0.9}),
	)
	require.NoError(t, err)

	// Receiver untouched.
	assert.Equal(t, "original", base.Description())
	assert.Len(t, base.Tools(), 1)
	assert.InDelta(t, 0.2, base.Settings().Temperature, 1e-9)

	// Derived carries base plus overrides.
	assert.Equal(t, "derived", derived.Description())
	assert.Len(t, derived.Tools(), 2)
	assert.InDelta(t, 0.9, derived.Settings().Temperature, 1e-9)
	assert.Len(t, derived.InputGuardrails(), 1)
}

func TestAccessors_ReturnCopies(t *testing.T) {
	def := MustNew("Agent", WithTools(noopTool("scan")))

	tools := def.Tools()
	delete(tools, "scan")
	_, ok := def.Tool("scan")
	assert.True(t, ok)

	guards := def.InputGuardrails()
	assert.Empty(t, guards)
}

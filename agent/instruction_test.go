package agent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeropilot-ai/aeropilot/core"
)

func TestInstruction_Static(t *testing.T) {
	i := NewInstructionFromText("You are a test agent.")
	assert.True(t, i.IsStatic())

	text, err := i.Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, "You are a test agent.", text)
}

func TestInstruction_StaticTemplate(t *testing.T) {
	rc := core.NewRunContext(func(o *core.RunContextOptions) {
		o.State = map[string]any{"callsign": "falcon-1"}
	})

	i := NewInstructionFromText("You control vehicle {{.callsign}}.")
	text, err := i.Resolve(rc)
	require.NoError(t, err)
	assert.Equal(t, "You control vehicle falcon-1.", text)
}

func TestInstruction_TemplateMissingKeyRendersZero(t *testing.T) {
	rc := core.NewRunContext()

	i := NewInstructionFromText("Mode: {{.mode}}.")
	text, err := i.Resolve(rc)
	require.NoError(t, err)
	assert.Equal(t, "Mode: <no value>.", text)
}

func TestInstruction_Provider(t *testing.T) {
	i := NewInstructionFromFunc(func(rc *core.RunContext) (string, error) {
		battery, _ := rc.GetState("battery")
		if b, ok := battery.(int); ok && b < 20 {
			return "Land immediately.", nil
		}
		return "Continue mission.", nil
	})
	assert.False(t, i.IsStatic())

	rc := core.NewRunContext(func(o *core.RunContextOptions) {
		o.State = map[string]any{"battery": 15}
	})

	text, err := i.Resolve(rc)
	require.NoError(t, err)
	assert.Equal(t, "Land immediately.", text)

	// Evaluated fresh each turn: state mutations change the result.
	rc.SetState("battery", 90)
	text, err = i.Resolve(rc)
	require.NoError(t, err)
	assert.Equal(t, "Continue mission.", text)
}

func TestInstruction_ProviderError(t *testing.T) {
	boom := errors.New("state unavailable")
	i := NewInstructionFromProvider(ProviderFunc(func(_ *core.RunContext) (string, error) {
		return "", boom
	}))

	_, err := i.Resolve(core.NewRunContext())
	assert.ErrorIs(t, err, boom)
}

package guardrail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeropilot-ai/aeropilot/core"
)

func passAfter(name string, delay time.Duration) Guardrail {
	return NewFunc(name, func(ctx context.Context, rc *core.RunContext, candidate string) (core.Verdict, error) {
		time.Sleep(delay)
		return core.Pass(nil), nil
	})
}

func rejectWith(name, reason string) Guardrail {
	return NewFunc(name, func(ctx context.Context, rc *core.RunContext, candidate string) (core.Verdict, error) {
		return core.Reject(map[string]any{"reason": reason}), nil
	})
}

func verdictParts(rc *core.RunContext) []core.VerdictPart {
	var parts []core.VerdictPart
	for _, ev := range rc.Events() {
		if ev.Content == nil {
			continue
		}
		for _, p := range ev.Content.Parts {
			if vp, ok := p.(core.VerdictPart); ok {
				parts = append(parts, vp)
			}
		}
	}
	return parts
}

func TestEngine_AllPass(t *testing.T) {
	engine := NewEngine(nil)
	rc := core.NewRunContext()

	err := engine.Evaluate(context.Background(), rc, StageInput,
		[]Guardrail{passAfter("a", 0), passAfter("b", 0)}, "input")
	require.NoError(t, err)

	parts := verdictParts(rc)
	require.Len(t, parts, 2)
	assert.Equal(t, "a", parts[0].Guardrail)
	assert.Equal(t, "b", parts[1].Guardrail)
}

func TestEngine_NoGuardrailsNoEvents(t *testing.T) {
	engine := NewEngine(nil)
	rc := core.NewRunContext()

	require.NoError(t, engine.Evaluate(context.Background(), rc, StageInput, nil, "input"))
	assert.Zero(t, rc.EventCount())
}

func TestEngine_FirstFailureByDeclarationOrder(t *testing.T) {
	engine := NewEngine(nil)
	rc := core.NewRunContext()

	// The later-declared guardrail finishes first; declaration order still
	// decides which rejection is reported.
	err := engine.Evaluate(context.Background(), rc, StageOutput, []Guardrail{
		NewFunc("slow_reject", func(ctx context.Context, _ *core.RunContext, _ string) (core.Verdict, error) {
			time.Sleep(20 * time.Millisecond)
			return core.Reject(map[string]any{"reason": "slow"}), nil
		}),
		rejectWith("fast_reject", "fast"),
	}, "candidate")

	var rejection *RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, "slow_reject", rejection.Guardrail)
	assert.Equal(t, StageOutput, rejection.Stage)
	assert.Equal(t, "slow", rejection.Info["reason"])
}

func TestEngine_VerdictOrderMatchesDeclarationOrder(t *testing.T) {
	engine := NewEngine(nil)
	rc := core.NewRunContext()

	err := engine.Evaluate(context.Background(), rc, StageInput, []Guardrail{
		passAfter("first", 30*time.Millisecond),
		passAfter("second", 10*time.Millisecond),
		passAfter("third", 0),
	}, "input")
	require.NoError(t, err)

	parts := verdictParts(rc)
	require.Len(t, parts, 3)
	assert.Equal(t, "first", parts[0].Guardrail)
	assert.Equal(t, "second", parts[1].Guardrail)
	assert.Equal(t, "third", parts[2].Guardrail)
}

func TestEngine_FailingVerdictStillRecorded(t *testing.T) {
	engine := NewEngine(nil)
	rc := core.NewRunContext()

	err := engine.Evaluate(context.Background(), rc, StageInput, []Guardrail{
		rejectWith("gate", "nope"),
		passAfter("after", 0),
	}, "input")
	require.Error(t, err)

	parts := verdictParts(rc)
	require.Len(t, parts, 2)
	assert.False(t, parts[0].Verdict.Passed)
	assert.True(t, parts[1].Verdict.Passed)
}

func TestEngine_EvaluationErrorPropagates(t *testing.T) {
	engine := NewEngine(nil)
	rc := core.NewRunContext()

	boom := errors.New("classifier unavailable")
	err := engine.Evaluate(context.Background(), rc, StageInput, []Guardrail{
		NewFunc("broken", func(ctx context.Context, _ *core.RunContext, _ string) (core.Verdict, error) {
			return core.Verdict{}, boom
		}),
	}, "input")

	require.ErrorIs(t, err, boom)

	var rejection *RejectionError
	assert.False(t, errors.As(err, &rejection))
}

func TestFunc_Name(t *testing.T) {
	g := NewFunc("named", func(ctx context.Context, _ *core.RunContext, _ string) (core.Verdict, error) {
		return core.Pass(nil), nil
	})
	assert.Equal(t, "named", g.Name())
}

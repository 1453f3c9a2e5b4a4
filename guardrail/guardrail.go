package guardrail

import (
	"context"

	"github.com/aeropilot-ai/aeropilot/core"
)

// Stage identifies where in the loop a guardrail runs.
type Stage string

const (
	// StageInput gates the user input before any reasoning turn.
	StageInput Stage = "input"
	// StageOutput gates the candidate final output before termination.
	StageOutput Stage = "output"
)

// Guardrail evaluates a candidate text (user input or proposed final output)
// and returns a verdict. Evaluations may read run state but must not mutate
// the conversation; the engine appends verdict events itself.
type Guardrail interface {
	// Name returns the guardrail's identity used in verdict events and
	// rejection errors.
	Name() string

	// Evaluate inspects candidate and returns the verdict. A non-nil error
	// means the check itself failed (infrastructure fault), which is distinct
	// from a rejection.
	Evaluate(ctx context.Context, runCtx *core.RunContext, candidate string) (core.Verdict, error)
}

// Func adapts an ordinary function into a Guardrail.
type Func struct {
	name string
	fn   func(ctx context.Context, runCtx *core.RunContext, candidate string) (core.Verdict, error)
}

// NewFunc wraps fn as a named Guardrail.
func NewFunc(name string, fn func(ctx context.Context, runCtx *core.RunContext, candidate string) (core.Verdict, error)) *Func {
	return &Func{name: name, fn: fn}
}

// Name implements Guardrail.
func (f *Func) Name() string { return f.name }

// Evaluate implements Guardrail.
func (f *Func) Evaluate(ctx context.Context, runCtx *core.RunContext, candidate string) (core.Verdict, error) {
	return f.fn(ctx, runCtx, candidate)
}

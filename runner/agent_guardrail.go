package runner

import (
	"context"
	"fmt"

	"github.com/aeropilot-ai/aeropilot/agent"
	"github.com/aeropilot-ai/aeropilot/core"
	"github.com/aeropilot-ai/aeropilot/guardrail"
)

// classifierVerdict is the structured output contract an agent-backed
// guardrail's classifier must produce.
type classifierVerdict struct {
	Passed bool   `json:"passed" description:"Whether the candidate passes the check"`
	Reason string `json:"reason,omitempty" description:"Why the candidate was rejected"`
}

// ClassifierContract returns the output contract a classifier agent used with
// NewAgentGuardrail must declare.
func ClassifierContract() agent.OutputContract {
	return agent.StructuredOutputFor(classifierVerdict{})
}

// agentGuardrail implements a guardrail as a nested classifier run. The
// classifier executes on its own RunContext seeded with a snapshot of the
// guarded run's state, keeping the guarded trace untouched and the turn
// budget unconsumed.
type agentGuardrail struct {
	name   string
	runner *Runner
	def    *agent.Definition
}

// NewAgentGuardrail wraps a classifier agent as a guardrail. The classifier's
// output contract must be (or be compatible with) ClassifierContract; its
// structured {passed, reason} answer becomes the verdict.
func NewAgentGuardrail(r *Runner, classifier *agent.Definition) guardrail.Guardrail {
	return &agentGuardrail{
		name:   classifier.Name(),
		runner: r,
		def:    classifier,
	}
}

// Name implements guardrail.Guardrail.
func (g *agentGuardrail) Name() string { return g.name }

// Evaluate implements guardrail.Guardrail by running the classifier to
// completion and mapping its structured answer to a verdict.
func (g *agentGuardrail) Evaluate(ctx context.Context, runCtx *core.RunContext, candidate string) (core.Verdict, error) {
	nested := core.NewRunContext(func(o *core.RunContextOptions) {
		if runCtx != nil {
			o.State = runCtx.StateSnapshot()
			o.Logger = runCtx.Logger()
		}
	})

	result, err := g.runner.Run(ctx, g.def, candidate, nested)
	if err != nil {
		return core.Verdict{}, fmt.Errorf("guardrail classifier %q: %w", g.name, err)
	}

	if result.StructuredOutput == nil {
		return core.Verdict{}, fmt.Errorf("guardrail classifier %q returned no structured verdict", g.name)
	}

	passed, _ := result.StructuredOutput["passed"].(bool)
	info := map[string]any{}
	if reason, ok := result.StructuredOutput["reason"].(string); ok && reason != "" {
		info["reason"] = reason
	}

	if passed {
		return core.Pass(info), nil
	}
	return core.Reject(info), nil
}

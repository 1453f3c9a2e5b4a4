package guardrail

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/aeropilot-ai/aeropilot/core"
	"github.com/aeropilot-ai/aeropilot/logging"
)

// Engine evaluates a stage's guardrails concurrently while keeping the trace
// deterministic: verdict events are appended in declaration order and the
// first failing guardrail in declaration order wins, regardless of which
// evaluation finished first.
type Engine struct {
	logger logging.Logger
}

// NewEngine constructs a guardrail engine. A nil logger disables engine logs.
func NewEngine(logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Engine{logger: logger}
}

// Evaluate runs all guardrails of one stage against candidate. On a rejection
// it returns a *RejectionError for the first failing guardrail in declaration
// order; evaluation errors (the check itself failing) are returned as-is. All
// verdicts are appended to the run trace in declaration order before the
// decision is made.
func (e *Engine) Evaluate(
	ctx context.Context,
	runCtx *core.RunContext,
	stage Stage,
	guardrails []Guardrail,
	candidate string,
) error {
	if len(guardrails) == 0 {
		return nil
	}

	verdicts := make([]core.Verdict, len(guardrails))

	g, gctx := errgroup.WithContext(ctx)
	for i, gr := range guardrails {
		i, gr := i, gr
		g.Go(func() error {
			v, err := gr.Evaluate(gctx, runCtx, candidate)
			if err != nil {
				return err
			}
			verdicts[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, gr := range guardrails {
		runCtx.AppendEvent(core.NewVerdictEvent(runCtx.RunID, gr.Name(), string(stage), verdicts[i]))
		e.logger.Debug("guardrail.verdict",
			"guardrail", gr.Name(),
			"stage", string(stage),
			"passed", verdicts[i].Passed,
		)
	}

	for i, gr := range guardrails {
		if !verdicts[i].Passed {
			return &RejectionError{Stage: stage, Guardrail: gr.Name(), Info: verdicts[i].Info}
		}
	}

	return nil
}

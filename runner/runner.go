package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aeropilot-ai/aeropilot/agent"
	"github.com/aeropilot-ai/aeropilot/core"
	"github.com/aeropilot-ai/aeropilot/guardrail"
	"github.com/aeropilot-ai/aeropilot/logging"
	"github.com/aeropilot-ai/aeropilot/model"
	"github.com/aeropilot-ai/aeropilot/tool"
)

// DefaultMaxTurns bounds a run when no limit is configured.
const DefaultMaxTurns = 10

// Options configures a Runner instance.
type Options struct {
	// MaxTurns is the shared turn budget of one run tree. Nested runs spawned
	// by handoffs consume the same budget as their parent.
	MaxTurns int
	// Logger used for run-scoped logging and as the default for RunContexts
	// the runner creates itself.
	Logger logging.Logger
}

// WithMaxTurns overrides the turn budget.
func WithMaxTurns(n int) func(o *Options) {
	return func(o *Options) { o.MaxTurns = n }
}

// WithLogger sets the runner logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// Runner drives the execution loop for agent runs: guardrail stages, model
// turns, tool episodes and handoff recursion, bounded by the turn budget.
// A Runner is stateless across runs and safe for concurrent use.
type Runner struct {
	gateway  model.Gateway
	engine   *guardrail.Engine
	maxTurns int
	logger   logging.Logger
}

// New creates a Runner on top of a model gateway.
func New(gateway model.Gateway, optFns ...func(o *Options)) *Runner {
	opts := Options{
		MaxTurns: DefaultMaxTurns,
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxTurns <= 0 {
		opts.MaxTurns = DefaultMaxTurns
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Runner{
		gateway:  gateway,
		engine:   guardrail.NewEngine(opts.Logger),
		maxTurns: opts.MaxTurns,
		logger:   opts.Logger,
	}
}

// Run executes def against input. A nil rc creates a fresh RunContext owned
// by the caller of this run; a caller-supplied rc is borrowed, letting
// multiple runs share history, state and the turn budget.
//
// The returned error is one of the run taxonomy: *guardrail.RejectionError,
// *TurnLimitError, *DelegationCycleError, *UnknownTargetError,
// *model.CallError or *tool.ToolError. Failures from nested handoff runs
// propagate unchanged; there is no partial-success result.
func (r *Runner) Run(ctx context.Context, def *agent.Definition, input string, rc *core.RunContext) (*core.RunResult, error) {
	if def == nil {
		return nil, fmt.Errorf("agent definition must not be nil")
	}
	if rc == nil {
		rc = core.NewRunContext(func(o *core.RunContextOptions) {
			o.Logger = r.logger
		})
	}

	start := rc.EventCount()

	r.logger.Info("run.start", "run_id", rc.RunID, "agent", def.Name())

	output, structured, lastAgent, err := r.runFrame(ctx, def, input, rc, newFrameStack(def.Name()))
	if err != nil {
		r.logger.Warn("run.failed", "run_id", rc.RunID, "agent", def.Name(), "error", err.Error())
		return nil, err
	}

	result := &core.RunResult{
		RunID:            rc.RunID,
		FinalOutput:      output,
		StructuredOutput: structured,
		LastAgent:        lastAgent,
		Events:           rc.EventsSince(start),
		Usage:            rc.Usage(),
	}

	r.logger.Info("run.complete",
		"run_id", rc.RunID,
		"agent", def.Name(),
		"last_agent", lastAgent,
		"turns", result.Usage.Turns,
	)

	return result, nil
}

// runFrame executes one loop frame: the named agent from input guardrails to
// its candidate final output. Handoffs recurse into runFrame with the same
// RunContext and stack.
func (r *Runner) runFrame(
	ctx context.Context,
	def *agent.Definition,
	input string,
	rc *core.RunContext,
	stack *frameStack,
) (string, map[string]any, string, error) {
	if err := r.engine.Evaluate(ctx, rc, guardrail.StageInput, def.InputGuardrails(), input); err != nil {
		return "", nil, "", err
	}

	rc.AppendEvent(core.NewUserMessageEvent(rc.RunID, input))

	var candidate string
	lastAgent := def.Name()

reasoning:
	for {
		turn := rc.BeginTurn()
		if turn > r.maxTurns {
			return "", nil, "", &TurnLimitError{Agent: def.Name(), Limit: r.maxTurns}
		}

		resp, err := r.reason(ctx, def, rc)
		if err != nil {
			return "", nil, "", err
		}

		if h := resp.Handoff(); h != nil {
			rc.AppendEvent(core.NewHandoffEvent(rc.RunID, def.Name(), *h))

			target, err := route(stack, def, *h)
			if err != nil {
				return "", nil, "", err
			}

			carry := h.Input
			if carry == "" {
				carry = input
			}

			r.logger.Debug("run.handoff", "run_id", rc.RunID, "from", def.Name(), "to", target.Name())

			stack.push(target.Name())
			nested, _, nestedAgent, err := r.runFrame(ctx, target, carry, rc, stack)
			stack.pop()

			if err != nil {
				return "", nil, "", err
			}

			candidate = nested
			lastAgent = nestedAgent

			break reasoning
		}

		if calls := resp.ToolCalls(); len(calls) > 0 {
			rc.AppendEvent(core.NewAssistantContentEvent(rc.RunID, def.Name(), resp.Content))

			records, errs := r.executeTools(ctx, def, calls, rc)

			decision, derr := def.ToolUse().Resolve(records)
			if derr != nil {
				// Surface the invoker's typed error rather than the policy's
				// rendering of it.
				for _, e := range errs {
					if e != nil {
						return "", nil, "", e
					}
				}
				return "", nil, "", derr
			}

			if decision.Final {
				candidate = decision.Output
				break reasoning
			}

			continue
		}

		candidate = resp.Text()
		rc.AppendEvent(core.NewAssistantMessageEvent(rc.RunID, def.Name(), candidate))

		break reasoning
	}

	structured, err := def.Output().Validate(candidate)
	if err != nil {
		return "", nil, "", &model.CallError{
			Provider: r.gateway.Info().Provider,
			Err:      fmt.Errorf("agent %q: %w", def.Name(), err),
		}
	}

	if err := r.engine.Evaluate(ctx, rc, guardrail.StageOutput, def.OutputGuardrails(), candidate); err != nil {
		return "", nil, "", err
	}

	return candidate, structured, lastAgent, nil
}

// reason resolves instructions fresh, assembles the gateway request from the
// conversation log and performs one model call.
func (r *Runner) reason(ctx context.Context, def *agent.Definition, rc *core.RunContext) (*model.Response, error) {
	instructions, err := def.ResolveInstructions(rc)
	if err != nil {
		return nil, fmt.Errorf("agent %q: resolving instructions: %w", def.Name(), err)
	}

	req := model.Request{
		AgentName:    def.Name(),
		Instructions: instructions,
		Contents:     conversationContents(rc),
		Tools:        def.ToolDefinitions(),
		Handoffs:     def.HandoffDefinitions(),
		OutputSchema: def.Output().Schema(),
		Settings:     def.Settings(),
	}

	rc.CountModelCall()
	started := time.Now()

	resp, err := r.gateway.Generate(ctx, req)
	if err != nil {
		r.logger.Error("model.call.failed",
			"run_id", rc.RunID,
			"agent", def.Name(),
			"error", err.Error(),
		)
		var callErr *model.CallError
		if errors.As(err, &callErr) {
			return nil, err
		}
		return nil, &model.CallError{Provider: r.gateway.Info().Provider, Err: err}
	}

	r.logger.Debug("model.call.complete",
		"run_id", rc.RunID,
		"agent", def.Name(),
		"finish_reason", resp.FinishReason,
		"duration_ms", time.Since(started).Milliseconds(),
	)

	return resp, nil
}

// executeTools runs all calls of one tool episode concurrently and appends
// one record per call in request order, regardless of completion order. The
// returned error slice is index-aligned with the records; entries are nil on
// success.
func (r *Runner) executeTools(
	ctx context.Context,
	def *agent.Definition,
	calls []core.FunctionCall,
	rc *core.RunContext,
) ([]core.ToolCallRecord, []error) {
	records := make([]core.ToolCallRecord, len(calls))
	errs := make([]error, len(calls))

	g, gctx := errgroup.WithContext(ctx)
	for i, fc := range calls {
		i, fc := i, fc
		g.Go(func() error {
			result, err := r.invokeTool(gctx, def, fc, rc)
			rec := core.ToolCallRecord{
				ID:        fc.ID,
				Name:      fc.Name,
				Arguments: fc.Arguments,
				Result:    result,
			}
			if err != nil {
				rec.Err = err.Error()
				errs[i] = err
			}
			records[i] = rec
			return nil
		})
	}
	_ = g.Wait()

	for i, rec := range records {
		var recErr error
		if errs[i] != nil {
			recErr = errs[i]
		}
		rc.AppendEvent(core.NewFunctionResponseEvent(rc.RunID, def.Name(), rec.ID, rec.Name, rec.Result, recErr))
	}
	rc.CountToolCalls(len(calls))

	return records, errs
}

// invokeTool resolves and calls a single tool. Unknown tool names are
// validation failures; everything the tool returns is passed through.
func (r *Runner) invokeTool(ctx context.Context, def *agent.Definition, fc core.FunctionCall, rc *core.RunContext) (any, error) {
	t, ok := def.Tool(fc.Name)
	if !ok {
		return nil, tool.NewToolError(fc.Name, "tool not registered for agent "+def.Name(), tool.CodeValidation)
	}

	args := map[string]any{}
	if fc.Arguments != "" {
		if err := json.Unmarshal([]byte(fc.Arguments), &args); err != nil {
			return nil, tool.NewToolError(fc.Name, "malformed arguments: "+err.Error(), tool.CodeValidation)
		}
	}

	started := time.Now()
	toolCtx := core.NewToolContext(ctx, rc, def.Name(), fc.ID)

	result, err := t.Call(toolCtx, args)

	r.logger.Debug("tool.call.complete",
		"run_id", rc.RunID,
		"agent", def.Name(),
		"tool", fc.Name,
		"success", err == nil,
		"duration_ms", time.Since(started).Milliseconds(),
	)

	return result, err
}

// conversationContents projects the run trace into gateway conversation
// contents (user, assistant and tool roles in append order).
func conversationContents(rc *core.RunContext) []core.Content {
	events := rc.ConversationHistory()
	contents := make([]core.Content, 0, len(events))
	for _, ev := range events {
		contents = append(contents, *ev.Content)
	}
	return contents
}

// Package aeropilot provides a high-level façade over the agent orchestration
// runtime: a runner driving the execution loop, a run store retaining
// completed results and logging wiring. Most applications interact with this
// package by:
//  1. Creating an AeroPilot via New() with a model gateway
//  2. Wiring an agent graph (agent.New or config.Load)
//  3. Running agents synchronously via Run
//
// The façade delegates orchestration to runner.Runner while keeping setup and
// usage ergonomics concise. Defaults are safe for local development; durable
// run stores and structured loggers are supplied for production deployments.
package aeropilot

import (
	"context"

	"github.com/aeropilot-ai/aeropilot/agent"
	"github.com/aeropilot-ai/aeropilot/core"
	"github.com/aeropilot-ai/aeropilot/logging"
	"github.com/aeropilot-ai/aeropilot/model"
	"github.com/aeropilot-ai/aeropilot/runner"
	"github.com/aeropilot-ai/aeropilot/runstore"
)

// Options configures the AeroPilot instance.
type Options struct {
	// MaxTurns is the shared turn budget per run tree.
	MaxTurns int

	// RunStore retains completed run results (defaults to in-memory).
	RunStore runstore.Store

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// AeroPilot is the high-level façade aggregating the runner and run store.
type AeroPilot struct {
	opts   Options
	runner *runner.Runner
	store  runstore.Store
}

// New creates an AeroPilot on top of a model gateway with optional overrides.
func New(gateway model.Gateway, optFns ...func(o *Options)) *AeroPilot {
	opts := Options{
		MaxTurns: runner.DefaultMaxTurns,
		RunStore: runstore.NewInMemoryStore(),
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	r := runner.New(gateway, func(o *runner.Options) {
		o.MaxTurns = opts.MaxTurns
		o.Logger = opts.Logger
	})

	return &AeroPilot{opts: opts, runner: r, store: opts.RunStore}
}

// Runner exposes the underlying runner, e.g. for agent-backed guardrails.
func (p *AeroPilot) Runner() *runner.Runner { return p.runner }

// Store exposes the run store.
func (p *AeroPilot) Store() runstore.Store { return p.store }

// Run executes def against input and records the completed result in the run
// store. A nil rc starts a fresh run context.
func (p *AeroPilot) Run(ctx context.Context, def *agent.Definition, input string, rc *core.RunContext) (*core.RunResult, error) {
	result, err := p.runner.Run(ctx, def, input, rc)
	if err != nil {
		return nil, err
	}

	if p.store != nil {
		if serr := p.store.Save(result); serr != nil {
			p.opts.Logger.Warn("runstore.save.failed", "run_id", result.RunID, "error", serr.Error())
		}
	}

	return result, nil
}

// NewRunContext constructs a run context wired with the façade's logger.
func (p *AeroPilot) NewRunContext(optFns ...func(o *core.RunContextOptions)) *core.RunContext {
	base := func(o *core.RunContextOptions) { o.Logger = p.opts.Logger }
	return core.NewRunContext(append([]func(o *core.RunContextOptions){base}, optFns...)...)
}

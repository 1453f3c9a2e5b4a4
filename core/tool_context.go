package core

import (
	"context"

	"github.com/aeropilot-ai/aeropilot/logging"
)

// ToolContext provides a constrained surface for tool implementations invoked
// during a run: the ambient context, the shared run state, and correlation
// identifiers. Tools mutate run state directly; external side effects are the
// tool's own responsibility and outside the loop's transactional guarantees.
type ToolContext struct {
	ctx            context.Context
	runCtx         *RunContext
	functionCallID string
	agentName      string

	*loggerAdapter
}

// NewToolContext constructs a tool context bound to a parent RunContext and
// the function call id of the originating model turn.
func NewToolContext(ctx context.Context, runCtx *RunContext, agentName, functionCallID string) *ToolContext {
	return &ToolContext{
		ctx:            ctx,
		runCtx:         runCtx,
		functionCallID: functionCallID,
		agentName:      agentName,
		loggerAdapter:  newLoggerAdapter(runCtx.Logger()),
	}
}

// Context returns the cancellation context of the invocation.
func (tc *ToolContext) Context() context.Context { return tc.ctx }

// RunID returns the run identifier.
func (tc *ToolContext) RunID() string { return tc.runCtx.RunID }

// FunctionCallID returns the id correlating this invocation with the model
// turn that requested it.
func (tc *ToolContext) FunctionCallID() string { return tc.functionCallID }

// AgentName returns the identity of the agent whose turn requested the tool.
func (tc *ToolContext) AgentName() string { return tc.agentName }

// Logger returns the run logger.
func (tc *ToolContext) Logger() logging.Logger { return tc.loggerAdapter.Logger() }

// GetState retrieves a value from the shared run state.
func (tc *ToolContext) GetState(k string) (any, bool) { return tc.runCtx.GetState(k) }

// SetState writes a value to the shared run state, visible to all frames.
func (tc *ToolContext) SetState(k string, v any) { tc.runCtx.SetState(k, v) }

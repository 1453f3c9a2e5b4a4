package core

import (
	"maps"
	"sync"

	"github.com/aeropilot-ai/aeropilot/logging"
)

// RunContext is the mutable, shared state of one top-level run and every
// nested run it spawns. It owns:
//   - the append-only event log (trace of model turns, tool calls, guardrail
//     verdicts and handoff transitions)
//   - a key/value store for caller-supplied state (session identifiers,
//     domain state such as battery or GPS)
//   - the monotonic turn counter and usage counters
//
// The top-level caller creates it (or lets Runner.Run create one) and owns
// its lifetime; nested runs borrow it by reference. Appends are serialized
// through the context's lock so sibling branches created by concurrent tool
// calls may append safely; request-order determinism is the appender's job.
type RunContext struct {
	RunID string

	mu     sync.Mutex
	events []Event
	state  map[string]any
	turns  int
	usage  Usage

	*loggerAdapter
}

// RunContextOptions configures a RunContext instance.
type RunContextOptions struct {
	// State seeds the shared key/value store.
	State map[string]any
	// Logger used by the run and everything it spawns.
	Logger logging.Logger
}

// NewRunContext constructs an empty RunContext with a fresh run identifier.
func NewRunContext(optFns ...func(o *RunContextOptions)) *RunContext {
	opts := RunContextOptions{}

	for _, fn := range optFns {
		fn(&opts)
	}

	state := map[string]any{}
	maps.Copy(state, opts.State)

	return &RunContext{
		RunID:         NewID(),
		state:         state,
		loggerAdapter: newLoggerAdapter(opts.Logger),
	}
}

// AppendEvent appends ev to the run trace. This is the single serialized
// append point shared by all frames of the run.
func (rc *RunContext) AppendEvent(ev Event) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.events = append(rc.events, ev)
}

// Events returns a defensive copy of the full trace.
func (rc *RunContext) Events() []Event {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	out := make([]Event, len(rc.events))
	copy(out, rc.events)

	return out
}

// EventsSince returns a copy of the trace starting at index from.
func (rc *RunContext) EventsSince(from int) []Event {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if from < 0 || from > len(rc.events) {
		from = len(rc.events)
	}

	out := make([]Event, len(rc.events)-from)
	copy(out, rc.events[from:])

	return out
}

// EventCount returns the current trace length.
func (rc *RunContext) EventCount() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	return len(rc.events)
}

// ConversationHistory returns the events suitable as model conversation
// context: user, assistant and tool roles, in append order.
func (rc *RunContext) ConversationHistory() []Event {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	allowed := map[string]bool{"user": true, "assistant": true, "tool": true}
	res := make([]Event, 0, len(rc.events))
	for _, ev := range rc.events {
		if ev.Content == nil || !allowed[ev.Content.Role] {
			continue
		}
		res = append(res, ev)
	}

	return res
}

// GetState returns the value and existence flag for a state key.
func (rc *RunContext) GetState(k string) (any, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	v, ok := rc.state[k]

	return v, ok
}

// SetState sets a key/value pair in the shared store. The mutation is
// immediately visible to every frame of the run.
func (rc *RunContext) SetState(k string, v any) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.state[k] = v
}

// MergeState merges all pairs from d into the shared store.
func (rc *RunContext) MergeState(d map[string]any) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	maps.Copy(rc.state, d)
}

// StateSnapshot returns a copy of the shared store, e.g. for instruction
// template rendering.
func (rc *RunContext) StateSnapshot() map[string]any {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	out := make(map[string]any, len(rc.state))
	maps.Copy(out, rc.state)

	return out
}

// BeginTurn increments the turn counter and returns the new count.
// Counting is monotonic across the whole run tree; nested runs consume the
// same budget as their parent.
func (rc *RunContext) BeginTurn() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.turns++
	rc.usage.Turns++

	return rc.turns
}

// Turns returns the number of turns consumed so far.
func (rc *RunContext) Turns() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	return rc.turns
}

// CountModelCall records one model gateway invocation.
func (rc *RunContext) CountModelCall() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.usage.ModelCalls++
}

// CountToolCalls records n tool invocations.
func (rc *RunContext) CountToolCalls(n int) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.usage.ToolCalls += n
}

// Usage returns a snapshot of the usage counters.
func (rc *RunContext) Usage() Usage {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	return rc.usage
}

package runner

import (
	"github.com/aeropilot-ai/aeropilot/agent"
	"github.com/aeropilot-ai/aeropilot/core"
)

// frameStack tracks the agents active on the current delegation chain of one
// run. A handoff pushes the target for the duration of the nested run and
// pops it on return, success or failure; this scoped discipline is what makes
// cycle detection correct.
type frameStack struct {
	names  []string
	active map[string]bool
}

func newFrameStack(root string) *frameStack {
	return &frameStack{
		names:  []string{root},
		active: map[string]bool{root: true},
	}
}

func (s *frameStack) push(name string) {
	s.names = append(s.names, name)
	s.active[name] = true
}

func (s *frameStack) pop() {
	last := s.names[len(s.names)-1]
	s.names = s.names[:len(s.names)-1]
	delete(s.active, last)
}

func (s *frameStack) contains(name string) bool { return s.active[name] }

func (s *frameStack) snapshot() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// route validates a declared handoff against the issuing agent and the active
// stack, returning the target definition. Undeclared targets and revisits of
// an active agent are configuration errors fatal to the run.
func route(stack *frameStack, issuer *agent.Definition, h core.Handoff) (*agent.Definition, error) {
	target, ok := issuer.HandoffTarget(h.Target)
	if !ok {
		return nil, &UnknownTargetError{Agent: issuer.Name(), Target: h.Target}
	}
	if stack.contains(h.Target) {
		return nil, &DelegationCycleError{Target: h.Target, Stack: stack.snapshot()}
	}
	return target, nil
}

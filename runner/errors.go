package runner

import (
	"fmt"
	"strings"
)

// TurnLimitError reports that the run consumed its turn budget without
// terminating. It is fatal to the run; there is no partial-success result.
type TurnLimitError struct {
	Agent string
	Limit int
}

func (e *TurnLimitError) Error() string {
	return fmt.Sprintf("turn limit %d exceeded in agent %q", e.Limit, e.Agent)
}

// DelegationCycleError reports a handoff to an agent already on the active
// frame stack. It indicates a wiring bug in the agent graph.
type DelegationCycleError struct {
	Target string
	Stack  []string
}

func (e *DelegationCycleError) Error() string {
	return fmt.Sprintf("delegation cycle: %q already active on stack [%s]", e.Target, strings.Join(e.Stack, " > "))
}

// UnknownTargetError reports a handoff to a target the issuing agent never
// declared.
type UnknownTargetError struct {
	Agent  string
	Target string
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("agent %q declares no handoff target %q", e.Agent, e.Target)
}

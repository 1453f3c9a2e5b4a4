package guardrail

import "fmt"

// RejectionError reports the first failing guardrail of a stage, in
// declaration order. It is a policy outcome, not an infrastructure fault.
type RejectionError struct {
	Stage     Stage
	Guardrail string
	Info      map[string]any
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s guardrail %q rejected the candidate", e.Stage, e.Guardrail)
}

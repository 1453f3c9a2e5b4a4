package core

// RunResult is the terminal artifact of a run. It is created once, at loop
// termination, and is immutable thereafter.
type RunResult struct {
	RunID string `json:"run_id"`
	// FinalOutput is the validated final answer text.
	FinalOutput string `json:"final_output"`
	// StructuredOutput holds the decoded final answer when the agent's
	// output contract declares a schema; nil for free-text agents.
	StructuredOutput map[string]any `json:"structured_output,omitempty"`
	// LastAgent is the identity of the agent that produced the final output
	// (the deepest handoff target on the winning path).
	LastAgent string `json:"last_agent"`
	// Events is the slice of the run trace produced by this run.
	Events []Event `json:"events"`
	// Usage snapshots the run counters at termination.
	Usage Usage `json:"usage"`
}

// Clone returns a deep-enough copy safe for independent retention: the event
// slice and structured output map are copied, event contents are shared
// (treated as immutable after emission).
func (r *RunResult) Clone() *RunResult {
	c := *r

	c.Events = make([]Event, len(r.Events))
	copy(c.Events, r.Events)

	if r.StructuredOutput != nil {
		c.StructuredOutput = make(map[string]any, len(r.StructuredOutput))
		for k, v := range r.StructuredOutput {
			c.StructuredOutput[k] = v
		}
	}

	return &c
}

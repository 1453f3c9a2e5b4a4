package core

// Usage aggregates run-level counters. Counters are maintained by the
// RunContext under its lock and snapshotted into the RunResult.
type Usage struct {
	ModelCalls int `json:"model_calls"`
	ToolCalls  int `json:"tool_calls"`
	Turns      int `json:"turns"`
}

// Add merges another usage snapshot into this one.
func (u *Usage) Add(o Usage) {
	u.ModelCalls += o.ModelCalls
	u.ToolCalls += o.ToolCalls
	u.Turns += o.Turns
}

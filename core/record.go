package core

// ToolCallRecord captures one resolved tool invocation within a tool episode.
// Records are appended to the run trace in request order and never mutated
// after creation.
type ToolCallRecord struct {
	ID        string `json:"id"`   // Function call id from the model turn
	Name      string `json:"name"` // Tool name
	Arguments string `json:"arguments,omitempty"`
	Result    any    `json:"result,omitempty"`
	Err       string `json:"error,omitempty"` // Failure reason; empty on success
}

// Failed reports whether the invocation ended in a failure.
func (r ToolCallRecord) Failed() bool { return r.Err != "" }

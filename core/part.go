package core

// Part represents a polymorphic segment of role-based content. Concrete part
// types implement the unexported isPart marker enabling a closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text     string         // Plain UTF-8 text
	Metadata map[string]any // Optional producer-provided metadata
}

func (TextPart) isPart() {}

// DataPart is a structured data segment (e.g. a decoded JSON object).
type DataPart struct {
	Data     map[string]any
	Metadata map[string]any
}

func (DataPart) isPart() {}

// FunctionCall describes a tool invocation requested by the model.
type FunctionCall struct {
	ID        string `json:"id,omitempty"`        // Stable id correlating call and response
	Name      string `json:"name"`                // Tool name
	Arguments string `json:"arguments,omitempty"` // Serialized JSON argument payload
}

// FunctionCallPart wraps a FunctionCall as a content part.
type FunctionCallPart struct {
	FunctionCall FunctionCall
	Metadata     map[string]any
}

func (FunctionCallPart) isPart() {}

// FunctionResponse describes the outcome of a function call.
type FunctionResponse struct {
	ID       string `json:"id,omitempty"` // Matches originating FunctionCall ID
	Name     string `json:"name"`
	Response any    `json:"response,omitempty"` // Successful result (any JSON-serializable shape)
	Error    string `json:"error,omitempty"`    // Populated on failure
}

// FunctionResponsePart wraps a FunctionResponse as a content part.
type FunctionResponsePart struct {
	FunctionResponse FunctionResponse
	Metadata         map[string]any
}

func (FunctionResponsePart) isPart() {}

// Handoff is a model-declared request to delegate the run to another agent.
type Handoff struct {
	Target string `json:"target"`          // Identity of the target agent definition
	Input  string `json:"input,omitempty"` // Carry-forward input for the nested run
}

// HandoffPart wraps a Handoff as a content part.
type HandoffPart struct {
	Handoff  Handoff
	Metadata map[string]any
}

func (HandoffPart) isPart() {}

// VerdictPart records a guardrail verdict as a content part so the decision
// becomes part of the run's event trace.
type VerdictPart struct {
	Guardrail string // Guardrail unit name
	Stage     string // "input" or "output"
	Verdict   Verdict
}

func (VerdictPart) isPart() {}

// Content holds role + ordered parts.
type Content struct {
	Role  string `json:"role,omitempty"` // Conversation role (user, assistant, tool, system,...)
	Parts []Part `json:"parts"`          // Ordered heterogeneous parts
}

// Text concatenates all text parts in order.
func (c Content) Text() string {
	var out string
	for _, p := range c.Parts {
		if tp, ok := p.(TextPart); ok {
			out += tp.Text
		}
	}
	return out
}

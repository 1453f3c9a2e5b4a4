package core

import (
	"time"

	"github.com/google/uuid"
)

// Event is the unit of the run trace. Every model call outcome, tool call,
// guardrail verdict and handoff transition is appended to the RunContext log
// as an Event. After emission an Event is treated as immutable.
type Event struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Author    string    `json:"author"` // Agent identity, "user" or "system"
	Timestamp time.Time `json:"timestamp"`
	Content   *Content  `json:"content,omitempty"`
}

// NewEvent creates a bare event authored by author bound to a run.
// Prefer the helper constructors for common semantic categories.
func NewEvent(runID, author string) Event {
	return Event{
		ID:        NewID(),
		RunID:     runID,
		Author:    author,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserMessageEvent creates a user-authored text message event.
func NewUserMessageEvent(runID, message string) Event {
	e := NewEvent(runID, "user")
	e.Content = &Content{Role: "user", Parts: []Part{TextPart{Text: message}}}
	return e
}

// NewAssistantMessageEvent creates an assistant text message event.
func NewAssistantMessageEvent(runID, author, message string) Event {
	e := NewEvent(runID, author)
	e.Content = &Content{Role: "assistant", Parts: []Part{TextPart{Text: message}}}
	return e
}

// NewAssistantContentEvent creates an assistant event with arbitrary content,
// e.g. a model turn containing function call parts.
func NewAssistantContentEvent(runID, author string, content Content) Event {
	e := NewEvent(runID, author)
	content.Role = "assistant"
	e.Content = &content
	return e
}

// NewFunctionResponseEvent records the completion result (or error) of a tool
// invocation. If err is non-nil its message is copied into the response.
func NewFunctionResponseEvent(runID, author, id, name string, result any, err error) Event {
	e := NewEvent(runID, author)
	fr := FunctionResponse{ID: id, Name: name, Response: result}
	if err != nil {
		fr.Error = err.Error()
	}
	e.Content = &Content{Role: "tool", Parts: []Part{FunctionResponsePart{FunctionResponse: fr}}}
	return e
}

// NewVerdictEvent records a guardrail verdict in the trace.
func NewVerdictEvent(runID, guardrail, stage string, v Verdict) Event {
	e := NewEvent(runID, "system")
	e.Content = &Content{Role: "system", Parts: []Part{VerdictPart{Guardrail: guardrail, Stage: stage, Verdict: v}}}
	return e
}

// NewHandoffEvent records a delegation transition from one agent to another.
func NewHandoffEvent(runID, author string, h Handoff) Event {
	e := NewEvent(runID, author)
	e.Content = &Content{Role: "assistant", Parts: []Part{HandoffPart{Handoff: h}}}
	return e
}

// NewID generates a new unique identifier for events and runs.
func NewID() string { return uuid.NewString() }

// GetFunctionCalls returns any FunctionCall parts contained within the event
// content preserving their original order.
func (e Event) GetFunctionCalls() []FunctionCall {
	if e.Content == nil {
		return nil
	}
	var calls []FunctionCall
	for _, p := range e.Content.Parts {
		if fc, ok := p.(FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}
	return calls
}

// GetFunctionResponses returns any FunctionResponse parts contained within
// the event content preserving their original order.
func (e Event) GetFunctionResponses() []FunctionResponse {
	if e.Content == nil {
		return nil
	}
	var responses []FunctionResponse
	for _, p := range e.Content.Parts {
		if fr, ok := p.(FunctionResponsePart); ok {
			responses = append(responses, fr.FunctionResponse)
		}
	}
	return responses
}

// GetHandoff returns the first handoff part, if any.
func (e Event) GetHandoff() *Handoff {
	if e.Content == nil {
		return nil
	}
	for _, p := range e.Content.Parts {
		if hp, ok := p.(HandoffPart); ok {
			h := hp.Handoff
			return &h
		}
	}
	return nil
}

// Text concatenates the event's text parts.
func (e Event) Text() string {
	if e.Content == nil {
		return ""
	}
	return e.Content.Text()
}

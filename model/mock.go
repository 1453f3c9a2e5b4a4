package model

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aeropilot-ai/aeropilot/core"
)

// mockRule matches one scripted response. A rule applies when the request's
// agent name equals Agent (empty matches any agent) and the latest user or
// tool text contains Contains (empty matches anything).
type mockRule struct {
	agent    string
	contains string
	resp     Response
	err      error
}

// Mock is a deterministic in-memory Gateway useful for tests and examples.
// Responses are scripted per agent / input substring; unmatched requests get
// an echo answer. It records per-agent call counts.
type Mock struct {
	mu    sync.Mutex
	info  Info
	rules []mockRule
	calls map[string]int
}

// NewMock constructs a Mock gateway with tool support enabled.
func NewMock() *Mock {
	return &Mock{
		info:  Info{Name: "mock", Provider: "mock", SupportsTools: true},
		calls: map[string]int{},
	}
}

// OnText scripts a final text answer for the given agent / input substring.
func (m *Mock) OnText(agent, contains, text string) {
	m.addRule(mockRule{agent: agent, contains: contains, resp: Response{
		Content:      core.Content{Role: "assistant", Parts: []core.Part{core.TextPart{Text: text}}},
		FinishReason: "stop",
	}})
}

// OnToolCalls scripts a turn requesting the given tool invocations.
func (m *Mock) OnToolCalls(agent, contains string, calls ...core.FunctionCall) {
	parts := make([]core.Part, 0, len(calls))
	for _, fc := range calls {
		parts = append(parts, core.FunctionCallPart{FunctionCall: fc})
	}
	m.addRule(mockRule{agent: agent, contains: contains, resp: Response{
		Content:      core.Content{Role: "assistant", Parts: parts},
		FinishReason: "tool_calls",
	}})
}

// OnHandoff scripts a delegation to target carrying forward input.
func (m *Mock) OnHandoff(agent, contains, target, input string) {
	m.addRule(mockRule{agent: agent, contains: contains, resp: Response{
		Content:      core.Content{Role: "assistant", Parts: []core.Part{core.HandoffPart{Handoff: core.Handoff{Target: target, Input: input}}}},
		FinishReason: "stop",
	}})
}

// OnError scripts a provider failure.
func (m *Mock) OnError(agent, contains string, err error) {
	m.addRule(mockRule{agent: agent, contains: contains, err: err})
}

func (m *Mock) addRule(r mockRule) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rules = append(m.rules, r)
}

// Calls returns how many times Generate was invoked for the given agent.
func (m *Mock) Calls(agent string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.calls[agent]
}

// Generate implements Gateway. Rules are evaluated in registration order;
// the first match wins.
func (m *Mock) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, &CallError{Provider: "mock", Err: err}
	}

	m.mu.Lock()
	m.calls[req.AgentName]++
	rules := make([]mockRule, len(m.rules))
	copy(rules, m.rules)
	m.mu.Unlock()

	input := lastText(req.Contents)
	for _, r := range rules {
		if r.agent != "" && r.agent != req.AgentName {
			continue
		}
		if r.contains != "" && !strings.Contains(input, r.contains) {
			continue
		}
		if r.err != nil {
			return nil, &CallError{Provider: "mock", Err: r.err}
		}
		resp := r.resp
		return &resp, nil
	}

	return &Response{
		Content:      core.Content{Role: "assistant", Parts: []core.Part{core.TextPart{Text: fmt.Sprintf("Mock response to: %s", input)}}},
		FinishReason: "stop",
	}, nil
}

// Info implements Gateway.
func (m *Mock) Info() Info { return m.info }

// lastText extracts the text of the most recent user or tool content, which
// is what scripted rules match against.
func lastText(contents []core.Content) string {
	for i := len(contents) - 1; i >= 0; i-- {
		c := contents[i]
		if c.Role != "user" && c.Role != "tool" {
			continue
		}
		if t := c.Text(); t != "" {
			return t
		}
		// Tool responses have no text parts; render them for matching.
		for _, p := range c.Parts {
			if fr, ok := p.(core.FunctionResponsePart); ok {
				return fmt.Sprintf("%s -> %v", fr.FunctionResponse.Name, fr.FunctionResponse.Response)
			}
		}
	}
	return ""
}

package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunContext_AppendAndEvents(t *testing.T) {
	rc := NewRunContext()
	require.NotEmpty(t, rc.RunID)

	rc.AppendEvent(NewUserMessageEvent(rc.RunID, "hello"))
	rc.AppendEvent(NewAssistantMessageEvent(rc.RunID, "Agent", "hi"))

	events := rc.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "user", events[0].Author)
	assert.Equal(t, "Agent", events[1].Author)

	// Defensive copy: mutating the returned slice leaves the trace intact.
	events[0] = Event{}
	assert.Equal(t, "user", rc.Events()[0].Author)
}

func TestRunContext_EventsSince(t *testing.T) {
	rc := NewRunContext()
	rc.AppendEvent(NewUserMessageEvent(rc.RunID, "one"))
	mark := rc.EventCount()
	rc.AppendEvent(NewUserMessageEvent(rc.RunID, "two"))

	since := rc.EventsSince(mark)
	require.Len(t, since, 1)
	assert.Equal(t, "two", since[0].Text())

	assert.Empty(t, rc.EventsSince(99))
}

func TestRunContext_ConversationHistoryFiltersRoles(t *testing.T) {
	rc := NewRunContext()
	rc.AppendEvent(NewUserMessageEvent(rc.RunID, "question"))
	rc.AppendEvent(NewVerdictEvent(rc.RunID, "check", "input", Pass(nil)))
	rc.AppendEvent(NewAssistantMessageEvent(rc.RunID, "Agent", "answer"))
	rc.AppendEvent(NewFunctionResponseEvent(rc.RunID, "Agent", "fc1", "scan", "ok", nil))

	history := rc.ConversationHistory()
	require.Len(t, history, 3)
	assert.Equal(t, "user", history[0].Content.Role)
	assert.Equal(t, "assistant", history[1].Content.Role)
	assert.Equal(t, "tool", history[2].Content.Role)
}

func TestRunContext_ConcurrentAppends(t *testing.T) {
	rc := NewRunContext()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rc.AppendEvent(NewUserMessageEvent(rc.RunID, "m"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, rc.EventCount())
}

func TestRunContext_State(t *testing.T) {
	rc := NewRunContext(func(o *RunContextOptions) {
		o.State = map[string]any{"battery": 80}
	})

	v, ok := rc.GetState("battery")
	require.True(t, ok)
	assert.Equal(t, 80, v)

	rc.SetState("gps", "fixed")
	rc.MergeState(map[string]any{"battery": 75, "mode": "auto"})

	snap := rc.StateSnapshot()
	assert.Equal(t, 75, snap["battery"])
	assert.Equal(t, "fixed", snap["gps"])
	assert.Equal(t, "auto", snap["mode"])

	// Snapshot is a copy.
	snap["battery"] = 0
	v, _ = rc.GetState("battery")
	assert.Equal(t, 75, v)
}

func TestRunContext_TurnsAndUsage(t *testing.T) {
	rc := NewRunContext()

	assert.Equal(t, 1, rc.BeginTurn())
	assert.Equal(t, 2, rc.BeginTurn())
	assert.Equal(t, 2, rc.Turns())

	rc.CountModelCall()
	rc.CountToolCalls(3)

	usage := rc.Usage()
	assert.Equal(t, 1, usage.ModelCalls)
	assert.Equal(t, 3, usage.ToolCalls)
	assert.Equal(t, 2, usage.Turns)
}

func TestRunResult_Clone(t *testing.T) {
	result := &RunResult{
		RunID:            "run-1",
		FinalOutput:      "done",
		StructuredOutput: map[string]any{"passed": true},
		LastAgent:        "Agent",
		Events:           []Event{NewUserMessageEvent("run-1", "hi")},
	}

	clone := result.Clone()
	clone.StructuredOutput["passed"] = false
	clone.Events[0] = Event{}

	assert.Equal(t, true, result.StructuredOutput["passed"])
	assert.Equal(t, "user", result.Events[0].Author)
}

func TestEvent_Accessors(t *testing.T) {
	ev := NewAssistantContentEvent("run-1", "Agent", Content{Parts: []Part{
		TextPart{Text: "calling"},
		FunctionCallPart{FunctionCall: FunctionCall{ID: "fc1", Name: "scan", Arguments: "{}"}},
	}})

	calls := ev.GetFunctionCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "scan", calls[0].Name)
	assert.Equal(t, "calling", ev.Text())

	hv := NewHandoffEvent("run-1", "Triage", Handoff{Target: "History", Input: "q"})
	h := hv.GetHandoff()
	require.NotNil(t, h)
	assert.Equal(t, "History", h.Target)
}

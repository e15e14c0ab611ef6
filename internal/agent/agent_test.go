// ABOUTME: Tests for the agent loop against a scripted provider
// ABOUTME: Covers streaming, tool dispatch, error recovery, budgets, and replay

package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/litigantportal/agentkit/internal/session"
	"github.com/litigantportal/agentkit/pkg/llm"
)

// scriptTurn is one pre-programmed model turn: its chunks, then either a
// clean finish or a transport failure.
type scriptTurn struct {
	chunks []llm.Chunk
	err    error
}

type scriptedProvider struct {
	mu       sync.Mutex
	turns    []scriptTurn
	requests []llm.Request
	pings    int
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Stream(ctx context.Context, req llm.Request) *llm.Stream {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	turn := scriptTurn{err: errors.New("no scripted turn left")}
	if len(p.turns) > 0 {
		turn, p.turns = p.turns[0], p.turns[1:]
	}
	p.mu.Unlock()

	s := llm.NewStream(16)
	go func() {
		for _, chunk := range turn.chunks {
			s.Send(chunk)
		}
		if turn.err != nil {
			s.Fail(turn.err)
			return
		}
		s.Finish(nil)
	}()
	return s
}

func (p *scriptedProvider) Complete(ctx context.Context, req llm.Request) (llm.Message, error) {
	p.mu.Lock()
	p.pings++
	p.mu.Unlock()
	return llm.Message{Role: llm.RoleAssistant, Content: "ok"}, nil
}

func (p *scriptedProvider) requestCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

func textTurn(parts ...string) scriptTurn {
	var chunks []llm.Chunk
	for _, part := range parts {
		chunks = append(chunks, llm.Chunk{Content: part})
	}
	return scriptTurn{chunks: chunks}
}

func toolDelta(index int, id, name, args string) llm.Chunk {
	return llm.Chunk{ToolCalls: []llm.ToolCallDelta{{
		Index:    index,
		ID:       id,
		Function: llm.FunctionDelta{Name: name, Arguments: args},
	}}}
}

func weatherTool(t *testing.T) *Tool {
	t.Helper()
	return &Tool{
		Name:        "get_weather",
		Description: "Get the current weather for a location.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"location":{"type":"string","description":"City name"}},"required":["location"]}`),
		Execute: func(ctx context.Context, a *Agent, args map[string]any) (*ToolOutput, error) {
			loc, _ := args["location"].(string)
			return &ToolOutput{
				Response: "Location: " + loc + ", Temp: 72 F, Condition: sunny.",
				Data:     map[string]any{"location": loc, "temp_f": 72, "condition": "sunny"},
			}, nil
		},
	}
}

func newTestAgent(t *testing.T, p llm.Provider, tools *ToolSet, opts ...func(*Config)) (*Agent, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore()
	cfg := Config{
		Provider: p,
		Model:    "test-model",
		Tools:    tools,
		Messages: []llm.Message{llm.SystemMessage("You are helpful.")},
		Store:    store,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a, store
}

func drain(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var out []Event
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

func countType(events []Event, typ EventType) int {
	n := 0
	for _, ev := range events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func TestRunTextOnlyTurn(t *testing.T) {
	t.Parallel()

	p := &scriptedProvider{turns: []scriptTurn{textTurn("Hel", "lo!")}}
	a, store := newTestAgent(t, p, nil)

	events := drain(t, a.Run(context.Background(), "hi"))

	var content string
	for _, ev := range events {
		if ev.Type == EventContentDelta {
			content += ev.Content
		}
	}
	if content != "Hello!" {
		t.Errorf("content = %q", content)
	}
	if countType(events, EventDone) != 1 {
		t.Errorf("done events = %d, want exactly 1", countType(events, EventDone))
	}
	if events[len(events)-1].Type != EventDone {
		t.Error("done must be the last event")
	}
	if events[len(events)-1].Truncated {
		t.Error("natural finish flagged as truncated")
	}
	if p.requestCount() != 1 {
		t.Errorf("model requests = %d, want 1", p.requestCount())
	}

	// Persisted: system seed, user input, assistant reply.
	msgs, err := store.Load(a.ConversationID())
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 3 {
		t.Fatalf("persisted %d messages, want 3: %+v", len(msgs), msgs)
	}
	if msgs[2].Role != llm.RoleAssistant || msgs[2].Content != "Hello!" {
		t.Errorf("assistant message = %+v", msgs[2])
	}
}

func TestRunWeatherScenario(t *testing.T) {
	t.Parallel()

	// Arguments split across three fragments the way real providers
	// deliver them.
	turn1 := scriptTurn{chunks: []llm.Chunk{
		toolDelta(0, "call_1", "get_weather", ""),
		toolDelta(0, "", "", `{"loc`),
		toolDelta(0, "", "", `ation":"Au`),
		toolDelta(0, "", "", `stin"}`),
	}}
	p := &scriptedProvider{turns: []scriptTurn{turn1, textTurn("It is sunny in Austin.")}}

	tools, err := NewToolSet(weatherTool(t))
	if err != nil {
		t.Fatal(err)
	}
	a, store := newTestAgent(t, p, tools)

	events := drain(t, a.Run(context.Background(), "weather in Austin"))

	var callEv, respEv *Event
	for i := range events {
		switch events[i].Type {
		case EventToolCall:
			callEv = &events[i]
		case EventToolResponse:
			respEv = &events[i]
		}
	}
	if callEv == nil || respEv == nil {
		t.Fatalf("missing tool events: %+v", events)
	}
	if callEv.Name != "get_weather" || callEv.ID != "call_1" {
		t.Errorf("tool_call event = %+v", callEv)
	}
	if loc, _ := callEv.Args["location"].(string); loc != "Austin" {
		t.Errorf("tool_call args = %v, want reassembled location", callEv.Args)
	}
	if respEv.Data["location"] != "Austin" {
		t.Errorf("tool_response data = %v", respEv.Data)
	}
	if respEv.Content != "" {
		t.Error("tool_response must not carry the LLM-visible text")
	}
	if countType(events, EventDone) != 1 {
		t.Errorf("done events = %d", countType(events, EventDone))
	}
	if p.requestCount() != 2 {
		t.Errorf("model requests = %d, want 2", p.requestCount())
	}

	msgs, _ := store.Load(a.ConversationID())
	var toolMsg *llm.Message
	for i := range msgs {
		if msgs[i].Role == llm.RoleTool {
			toolMsg = &msgs[i]
		}
	}
	if toolMsg == nil {
		t.Fatal("no tool message persisted")
	}
	if !strings.Contains(toolMsg.Content, "Austin") {
		t.Errorf("tool message content = %q", toolMsg.Content)
	}
	if toolMsg.ToolCallID != "call_1" {
		t.Errorf("tool_call_id = %q", toolMsg.ToolCallID)
	}

	// The second request must present a projection without tool data.
	p.mu.Lock()
	secondReq := p.requests[1]
	p.mu.Unlock()
	for _, m := range secondReq.Messages {
		if m.Role == llm.RoleTool && m.Data != nil {
			t.Error("tool data leaked into the model request")
		}
	}
}

func TestRunUnknownToolContinues(t *testing.T) {
	t.Parallel()

	turn1 := scriptTurn{chunks: []llm.Chunk{toolDelta(0, "call_x", "no_such_tool", `{}`)}}
	p := &scriptedProvider{turns: []scriptTurn{turn1, textTurn("Sorry, I cannot do that.")}}
	a, store := newTestAgent(t, p, nil)

	events := drain(t, a.Run(context.Background(), "go"))

	if countType(events, EventError) != 0 {
		t.Error("unknown tool must not produce an error event")
	}
	if countType(events, EventDone) != 1 {
		t.Error("loop must still finish with done")
	}
	if p.requestCount() != 2 {
		t.Errorf("model requests = %d, want the loop to continue", p.requestCount())
	}

	msgs, _ := store.Load(a.ConversationID())
	found := false
	for _, m := range msgs {
		if m.Role == llm.RoleTool && strings.Contains(m.Content, "unknown tool") {
			found = true
		}
	}
	if !found {
		t.Error("tool message should carry an unknown-tool indicator")
	}
}

func TestRunMalformedArgsRecovered(t *testing.T) {
	t.Parallel()

	// First call has truncated argument JSON; the second is valid and
	// must still execute in the same turn.
	turn1 := scriptTurn{chunks: []llm.Chunk{
		toolDelta(0, "call_bad", "get_weather", `{"loc`),
		toolDelta(1, "call_good", "get_weather", `{"location":"Austin"}`),
	}}
	p := &scriptedProvider{turns: []scriptTurn{turn1, textTurn("done")}}

	tools, _ := NewToolSet(weatherTool(t))
	a, store := newTestAgent(t, p, tools)

	events := drain(t, a.Run(context.Background(), "weather"))

	var callEvents []Event
	for _, ev := range events {
		if ev.Type == EventToolCall {
			callEvents = append(callEvents, ev)
		}
	}
	if len(callEvents) != 2 {
		t.Fatalf("tool_call events = %d, want 2", len(callEvents))
	}
	if len(callEvents[0].Args) != 0 {
		t.Errorf("malformed args should announce as empty object, got %v", callEvents[0].Args)
	}
	if callEvents[1].Args["location"] != "Austin" {
		t.Errorf("second call args = %v", callEvents[1].Args)
	}
	if countType(events, EventError) != 0 {
		t.Error("malformed args must not abort the turn")
	}

	msgs, _ := store.Load(a.ConversationID())
	var toolContents []string
	for _, m := range msgs {
		if m.Role == llm.RoleTool {
			toolContents = append(toolContents, m.Content)
		}
	}
	if len(toolContents) != 2 {
		t.Fatalf("tool messages = %d, want 2", len(toolContents))
	}
	if !strings.HasPrefix(toolContents[0], "Error:") {
		t.Errorf("first tool message = %q, want error indicator", toolContents[0])
	}
	if !strings.Contains(toolContents[1], "Austin") {
		t.Errorf("second tool message = %q", toolContents[1])
	}
}

func TestRunParallelToolCallsInterleaved(t *testing.T) {
	t.Parallel()

	turn1 := scriptTurn{chunks: []llm.Chunk{
		toolDelta(0, "call_1", "get_weather", `{"location":"Austin"}`),
		toolDelta(1, "call_2", "get_weather", `{"location":"Dallas"}`),
	}}
	p := &scriptedProvider{turns: []scriptTurn{turn1, textTurn("ok")}}

	tools, _ := NewToolSet(weatherTool(t))
	a, store := newTestAgent(t, p, tools)

	events := drain(t, a.Run(context.Background(), "compare"))

	// Strict interleaving: call, response, call, response, in call order.
	var seq []string
	for _, ev := range events {
		switch ev.Type {
		case EventToolCall:
			seq = append(seq, "call:"+ev.ID)
		case EventToolResponse:
			seq = append(seq, "resp:"+ev.ID)
		}
	}
	want := []string{"call:call_1", "resp:call_1", "call:call_2", "resp:call_2"}
	if len(seq) != len(want) {
		t.Fatalf("tool event sequence = %v, want %v", seq, want)
	}
	for i := range want {
		if seq[i] != want[i] {
			t.Fatalf("tool event sequence = %v, want %v", seq, want)
		}
	}

	msgs, _ := store.Load(a.ConversationID())
	var ids []string
	for _, m := range msgs {
		if m.Role == llm.RoleTool {
			ids = append(ids, m.ToolCallID)
		}
	}
	if len(ids) != 2 || ids[0] != "call_1" || ids[1] != "call_2" {
		t.Errorf("persisted tool_call_ids = %v", ids)
	}
}

func TestRunStepBudgetTruncation(t *testing.T) {
	t.Parallel()

	// The model always asks for another tool call; budget of 1 means
	// exactly one model turn.
	turn := scriptTurn{chunks: []llm.Chunk{toolDelta(0, "call_1", "get_weather", `{"location":"Austin"}`)}}
	p := &scriptedProvider{turns: []scriptTurn{turn, turn, turn}}

	tools, _ := NewToolSet(weatherTool(t))
	a, _ := newTestAgent(t, p, tools, func(cfg *Config) { cfg.MaxSteps = 1 })

	events := drain(t, a.Run(context.Background(), "loop forever"))

	if p.requestCount() != 1 {
		t.Errorf("model requests = %d, want budget to stop at 1", p.requestCount())
	}
	if countType(events, EventDone) != 1 {
		t.Fatalf("done events = %d", countType(events, EventDone))
	}
	last := events[len(events)-1]
	if last.Type != EventDone || !last.Truncated {
		t.Errorf("final event = %+v, want truncated done", last)
	}
	if !a.Truncated() {
		t.Error("agent should report truncation")
	}
}

func TestRunTransportErrorSecondTurn(t *testing.T) {
	t.Parallel()

	turn1 := scriptTurn{chunks: []llm.Chunk{toolDelta(0, "call_1", "get_weather", `{"location":"Austin"}`)}}
	p := &scriptedProvider{turns: []scriptTurn{turn1, {err: errors.New("connection reset")}}}

	tools, _ := NewToolSet(weatherTool(t))
	a, _ := newTestAgent(t, p, tools)

	events := drain(t, a.Run(context.Background(), "weather"))

	// Turn 1 events are intact.
	if countType(events, EventToolCall) != 1 || countType(events, EventToolResponse) != 1 {
		t.Errorf("turn 1 events lost: %+v", events)
	}
	if countType(events, EventError) != 1 {
		t.Fatalf("error events = %d, want exactly 1", countType(events, EventError))
	}
	if countType(events, EventDone) != 0 {
		t.Error("no done may follow an error")
	}
	last := events[len(events)-1]
	if last.Type != EventError || !strings.Contains(last.Err.Error(), "connection reset") {
		t.Errorf("final event = %+v", last)
	}
}

func TestRunNilAndErrorToolOutputs(t *testing.T) {
	t.Parallel()

	quiet := &Tool{
		Name: "save_quietly",
		Execute: func(ctx context.Context, a *Agent, args map[string]any) (*ToolOutput, error) {
			return nil, nil
		},
	}
	failing := &Tool{
		Name: "always_fails",
		Execute: func(ctx context.Context, a *Agent, args map[string]any) (*ToolOutput, error) {
			return nil, errors.New("disk full")
		},
	}
	turn1 := scriptTurn{chunks: []llm.Chunk{
		toolDelta(0, "call_1", "save_quietly", `{}`),
		toolDelta(1, "call_2", "always_fails", `{}`),
	}}
	p := &scriptedProvider{turns: []scriptTurn{turn1, textTurn("ok")}}

	tools, _ := NewToolSet(quiet, failing)
	a, store := newTestAgent(t, p, tools)

	events := drain(t, a.Run(context.Background(), "go"))
	if countType(events, EventError) != 0 {
		t.Error("tool failure escalated to error event")
	}

	msgs, _ := store.Load(a.ConversationID())
	var contents []string
	for _, m := range msgs {
		if m.Role == llm.RoleTool {
			contents = append(contents, m.Content)
		}
	}
	if len(contents) != 2 {
		t.Fatalf("tool messages = %d", len(contents))
	}
	if contents[0] != "Success" {
		t.Errorf("nil output normalized to %q, want Success", contents[0])
	}
	if !strings.HasPrefix(contents[1], "Error:") || !strings.Contains(contents[1], "disk full") {
		t.Errorf("failure output = %q", contents[1])
	}
}

func TestResumeReplaysWithoutAppending(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	seed := []llm.Message{
		llm.SystemMessage("You are helpful."),
		llm.UserMessage("pending question"),
	}
	for _, msg := range seed {
		store.Append("conv-42", msg)
	}

	p := &scriptedProvider{turns: []scriptTurn{textTurn("answered")}}
	a, err := Resume(Config{
		Provider:       p,
		Model:          "test-model",
		Store:          store,
		ConversationID: "conv-42",
	})
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}

	drain(t, a.Continue(context.Background()))

	// The first model request must see exactly the replayed history:
	// nothing may be appended before the first LLM call.
	p.mu.Lock()
	first := p.requests[0]
	p.mu.Unlock()
	if len(first.Messages) != len(seed) {
		t.Errorf("first request has %d messages, want %d (no pre-call append)", len(first.Messages), len(seed))
	}

	msgs, _ := store.Load("conv-42")
	if len(msgs) != 3 {
		t.Errorf("persisted %d messages, want seed + one assistant turn", len(msgs))
	}
}

func TestResumeUnknownConversation(t *testing.T) {
	t.Parallel()

	_, err := Resume(Config{
		Provider:       &scriptedProvider{},
		Model:          "m",
		Store:          session.NewMemoryStore(),
		ConversationID: "missing",
	})
	if !errors.Is(err, session.ErrNotFound) {
		t.Errorf("Resume = %v, want ErrNotFound", err)
	}
}

func TestToolStateScratchSpace(t *testing.T) {
	t.Parallel()

	writer := &Tool{
		Name: "stash",
		Execute: func(ctx context.Context, a *Agent, args map[string]any) (*ToolOutput, error) {
			a.State["stashed"] = "value"
			return nil, nil
		},
	}
	reader := &Tool{
		Name: "recall",
		Execute: func(ctx context.Context, a *Agent, args map[string]any) (*ToolOutput, error) {
			v, _ := a.State["stashed"].(string)
			return Text("recalled: " + v), nil
		},
	}
	turn1 := scriptTurn{chunks: []llm.Chunk{
		toolDelta(0, "c1", "stash", `{}`),
		toolDelta(1, "c2", "recall", `{}`),
	}}
	p := &scriptedProvider{turns: []scriptTurn{turn1, textTurn("ok")}}
	tools, _ := NewToolSet(writer, reader)
	a, store := newTestAgent(t, p, tools)

	drain(t, a.Run(context.Background(), "go"))

	msgs, _ := store.Load(a.ConversationID())
	found := false
	for _, m := range msgs {
		if m.Role == llm.RoleTool && m.Content == "recalled: value" {
			found = true
		}
	}
	if !found {
		t.Error("state written by one tool was not visible to the next")
	}
}

func TestPing(t *testing.T) {
	t.Parallel()

	p := &scriptedProvider{}
	a, store := newTestAgent(t, p, nil)

	if err := a.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if p.pings != 1 {
		t.Errorf("pings = %d", p.pings)
	}
	// Health probe must not touch conversation state.
	msgs, _ := store.Load(a.ConversationID())
	if len(msgs) != 1 {
		t.Errorf("persisted %d messages after ping, want the seed only", len(msgs))
	}
}

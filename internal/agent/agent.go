// ABOUTME: Agent loop: stream model turn -> execute tool calls -> repeat
// ABOUTME: Bounded by a step budget; persists every message before emitting its event

package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/litigantportal/agentkit/internal/log"
	"github.com/litigantportal/agentkit/internal/session"
	"github.com/litigantportal/agentkit/pkg/llm"
)

const defaultMaxSteps = 10

// Config assembles an Agent. Provider and Model are required; zero
// MaxSteps falls back to the default budget.
type Config struct {
	Provider       llm.Provider
	Model          string
	Tools          *ToolSet
	Messages       []llm.Message
	MaxSteps       int
	MaxTokens      int
	Temperature    float64
	ResponseFormat json.RawMessage
	Store          session.Store
	ConversationID string
}

// Agent owns one conversation: its message history, tool set, and step
// budget. Not safe for concurrent runs; distinct conversations get
// distinct agents.
type Agent struct {
	provider       llm.Provider
	model          string
	tools          *ToolSet
	messages       []llm.Message
	maxSteps       int
	maxTokens      int
	temperature    float64
	responseFormat json.RawMessage
	store          session.Store
	convID         string
	truncated      bool

	// State is free-form scratch space tools may read and write during
	// a run. Tools must never touch message history directly.
	State map[string]any
}

// New creates an agent seeded with cfg.Messages, persisting the seed so
// a fresh conversation is replayable from its first system prompt.
func New(cfg Config) (*Agent, error) {
	a, err := build(cfg)
	if err != nil {
		return nil, err
	}
	for _, msg := range cfg.Messages {
		if err := a.persist(msg); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Resume rebuilds an agent from the store, replaying the conversation's
// persisted history without appending anything. session.ErrNotFound
// propagates for unknown conversation IDs.
func Resume(cfg Config) (*Agent, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("resume requires a store")
	}
	if cfg.ConversationID == "" {
		return nil, fmt.Errorf("resume requires a conversation ID")
	}
	history, err := cfg.Store.Load(cfg.ConversationID)
	if err != nil {
		return nil, err
	}
	cfg.Messages = nil
	a, err := build(cfg)
	if err != nil {
		return nil, err
	}
	a.messages = history
	return a, nil
}

func build(cfg Config) (*Agent, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("agent requires a provider")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("agent requires a model")
	}
	convID := cfg.ConversationID
	if convID == "" {
		convID = uuid.NewString()
	}
	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}
	return &Agent{
		provider:       cfg.Provider,
		model:          cfg.Model,
		tools:          cfg.Tools,
		maxSteps:       maxSteps,
		maxTokens:      cfg.MaxTokens,
		temperature:    cfg.Temperature,
		responseFormat: cfg.ResponseFormat,
		store:          cfg.Store,
		convID:         convID,
		State:          make(map[string]any),
	}, nil
}

// ConversationID returns the conversation this agent appends to.
func (a *Agent) ConversationID() string { return a.convID }

// Truncated reports whether the last run exhausted its step budget
// before reaching a tool-free assistant turn.
func (a *Agent) Truncated() bool { return a.truncated }

// Messages returns a copy of the conversation history.
func (a *Agent) Messages() []llm.Message {
	out := make([]llm.Message, len(a.messages))
	copy(out, a.messages)
	return out
}

// Run appends input as a user message and drives the loop. Empty input
// runs the loop over existing history, appending nothing first.
func (a *Agent) Run(ctx context.Context, input string) <-chan Event {
	var initial []llm.Message
	if input != "" {
		initial = []llm.Message{llm.UserMessage(input)}
	}
	return a.run(ctx, initial)
}

// RunMessages appends the given messages and drives the loop.
func (a *Agent) RunMessages(ctx context.Context, msgs []llm.Message) <-chan Event {
	return a.run(ctx, msgs)
}

// Continue drives the loop over existing history. Used after Resume
// when the persisted history already ends in a pending user turn.
func (a *Agent) Continue(ctx context.Context) <-chan Event {
	return a.run(ctx, nil)
}

func (a *Agent) run(ctx context.Context, initial []llm.Message) <-chan Event {
	events := make(chan Event, 64)
	go a.loop(ctx, initial, events)
	return events
}

func (a *Agent) loop(ctx context.Context, initial []llm.Message, events chan Event) {
	defer close(events)
	a.truncated = false

	for _, msg := range initial {
		if err := a.persist(msg); err != nil {
			log.Error("agent %s: persisting input: %v", a.convID, err)
			emitFinal(events, Event{Type: EventError, Err: err})
			return
		}
	}

	for step := 0; step < a.maxSteps; step++ {
		msg, err := a.streamTurn(ctx, events)
		if err != nil {
			log.Error("agent %s: model turn %d: %v", a.convID, step, err)
			emitFinal(events, Event{Type: EventError, Err: err})
			return
		}

		if err := a.persist(msg); err != nil {
			log.Error("agent %s: persisting assistant turn: %v", a.convID, err)
			emitFinal(events, Event{Type: EventError, Err: err})
			return
		}

		if len(msg.ToolCalls) == 0 {
			emitFinal(events, Event{Type: EventDone})
			return
		}

		for _, call := range msg.ToolCalls {
			if err := a.handleToolCall(ctx, call, events); err != nil {
				emitFinal(events, Event{Type: EventError, Err: err})
				return
			}
		}
	}

	// Budget exhausted without a tool-free turn. Still a done, flagged
	// so callers can tell truncation from a natural finish.
	a.truncated = true
	emitFinal(events, Event{Type: EventDone, Truncated: true})
}

// streamTurn issues one streaming completion and reassembles its output
// into a single assistant message, emitting content deltas as they land.
func (a *Agent) streamTurn(ctx context.Context, events chan Event) (llm.Message, error) {
	req := llm.Request{
		Model: a.model,
		// Projection recomputed every request: history may have grown
		// tool data since the previous turn.
		Messages:       llm.ForAPI(a.messages),
		Tools:          a.tools.Schemas(),
		MaxTokens:      a.maxTokens,
		Temperature:    a.temperature,
		ResponseFormat: a.responseFormat,
	}

	stream := a.provider.Stream(ctx, req)

	var content strings.Builder
	var asm toolCallAssembler
	for chunk := range stream.Chunks() {
		if chunk.Content != "" {
			content.WriteString(chunk.Content)
			emit(ctx, events, Event{Type: EventContentDelta, Content: chunk.Content})
		}
		for _, delta := range chunk.ToolCalls {
			asm.add(delta)
		}
	}
	if err := stream.Err(); err != nil {
		return llm.Message{}, err
	}

	return llm.Message{
		Role:      llm.RoleAssistant,
		Content:   content.String(),
		ToolCalls: asm.result(),
	}, nil
}

// handleToolCall announces, executes, and persists one tool call. Tool
// failures become normal tool messages; only persistence can error.
func (a *Agent) handleToolCall(ctx context.Context, call llm.ToolCall, events chan Event) error {
	// Best-effort parse for the announcement only; a failure here must
	// not skip the call, the real parse happens during execution.
	args, err := ParseArgs(call.Function.Arguments)
	if err != nil {
		args = map[string]any{}
	}
	emit(ctx, events, Event{
		Type: EventToolCall,
		ID:   call.ID,
		Name: call.Function.Name,
		Args: args,
	})

	out := a.invokeTool(ctx, call)

	toolMsg := llm.Message{
		Role:       llm.RoleTool,
		ToolCallID: call.ID,
		Name:       call.Function.Name,
		Content:    out.Response,
		Data:       out.Data,
	}
	if err := a.persist(toolMsg); err != nil {
		log.Error("agent %s: persisting tool result: %v", a.convID, err)
		return err
	}

	// Thin event: id, name, and data only. The LLM-visible text stays
	// in the message log.
	emit(ctx, events, Event{
		Type: EventToolResponse,
		ID:   call.ID,
		Name: call.Function.Name,
		Data: out.Data,
	})
	return nil
}

// invokeTool resolves and runs one tool call. Every failure mode ends up
// as an error string in the output, never as a loop abort.
func (a *Agent) invokeTool(ctx context.Context, call llm.ToolCall) *ToolOutput {
	name := call.Function.Name

	tool := a.tools.Get(name)
	if tool == nil {
		log.Warn("agent %s: unknown tool %q", a.convID, name)
		return Text(fmt.Sprintf("Error: unknown tool %q", name))
	}

	args, err := ParseArgs(call.Function.Arguments)
	if err != nil {
		log.Warn("agent %s: tool %s: %v", a.convID, name, err)
		return Text(fmt.Sprintf("Error: %v", err))
	}
	if err := tool.ValidateArgs(args); err != nil {
		log.Warn("agent %s: tool %s: %v", a.convID, name, err)
		return Text(fmt.Sprintf("Error: %v", err))
	}

	out, err := tool.Execute(ctx, a, args)
	if err != nil {
		log.Warn("agent %s: tool %s failed: %v", a.convID, name, err)
		return Text(fmt.Sprintf("Error: %v", err))
	}
	if out == nil {
		return Text("Success")
	}
	return out
}

// persist appends msg to history and makes it durable before any event
// referencing it can be emitted.
func (a *Agent) persist(msg llm.Message) error {
	if a.store != nil {
		if err := a.store.Append(a.convID, msg); err != nil {
			return fmt.Errorf("appending to conversation %s: %w", a.convID, err)
		}
	}
	a.messages = append(a.messages, msg)
	return nil
}

// Ping issues a minimal one-shot completion to probe transport health
// without touching conversation state.
func (a *Agent) Ping(ctx context.Context) error {
	_, err := a.provider.Complete(ctx, llm.Request{
		Model:     a.model,
		Messages:  []llm.Message{llm.UserMessage("hi")},
		MaxTokens: 1,
	})
	return err
}

// emit delivers a mid-run event, giving up if the caller is gone.
func emit(ctx context.Context, events chan Event, ev Event) {
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}

// emitFinal delivers a terminal event unconditionally. The loop is the
// sole producer and the channel is buffered, so this cannot deadlock
// with a live consumer.
func emitFinal(events chan Event, ev Event) {
	events <- ev
}

// ABOUTME: OpenAI-wire conversation types: Message, ToolCall, ToolSchema, Request
// ABOUTME: Shared across all providers; the agent loop owns the history built from these

package llm

import "encoding/json"

// Role tags a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// FunctionCall holds the function name and its JSON-encoded argument string.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolCall is one model-issued tool invocation on an assistant message.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"` // always "function"
	Function FunctionCall `json:"function"`
}

// Message is a single conversation turn, discriminated by Role.
// ToolCalls is set only on assistant messages; ToolCallID, Name and Data
// only on tool messages. Data carries structured tool output for the
// consuming client and is never sent to the completion API (see ForAPI).
type Message struct {
	Role       Role           `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []ToolCall     `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	Name       string         `json:"name,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}

// SystemMessage builds a system message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// ForAPI returns the history as submitted to the completion API: tool
// messages lose their Data payload, everything else passes through
// unchanged. The projection is rebuilt on every call; history may have
// grown tool data since the last one.
func ForAPI(messages []Message) []Message {
	out := make([]Message, len(messages))
	for i, m := range messages {
		if m.Role == RoleTool {
			m.Data = nil
		}
		out[i] = m
	}
	return out
}

// FunctionSchema describes one callable function for the model.
type FunctionSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ToolSchema is the wire format for a tool definition.
type ToolSchema struct {
	Type     string         `json:"type"` // always "function"
	Function FunctionSchema `json:"function"`
}

// Usage tracks token consumption for one completion.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Request is one completion call. Messages must already be projected
// through ForAPI by the caller.
type Request struct {
	Model          string
	Messages       []Message
	Tools          []ToolSchema
	MaxTokens      int
	Temperature    float64
	ResponseFormat json.RawMessage // provider-specific structured-output override
}

// FunctionDelta is a partial function fragment within a streamed tool call.
type FunctionDelta struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// ToolCallDelta is one fragment of a streamed tool call. Fragments for the
// same call share an Index; the id may arrive in a later fragment than the
// name or argument text.
type ToolCallDelta struct {
	Index    int           `json:"index"`
	ID       string        `json:"id,omitempty"`
	Function FunctionDelta `json:"function"`
}

// Chunk is one incremental fragment of a streaming completion. A chunk may
// carry text, several simultaneous tool-call deltas, both, or neither.
type Chunk struct {
	Content      string
	ToolCalls    []ToolCallDelta
	FinishReason string
}

// ABOUTME: Request body construction and response wire types for Chat Completions
// ABOUTME: Covers both streaming chunk deltas and one-shot completion responses

package openai

import (
	"github.com/litigantportal/agentkit/pkg/llm"
)

func buildBody(req llm.Request, stream bool) map[string]any {
	body := map[string]any{
		"model":    req.Model,
		"messages": req.Messages,
	}
	if stream {
		body["stream"] = true
		body["stream_options"] = map[string]any{"include_usage": true}
	}
	if len(req.Tools) > 0 {
		body["tools"] = req.Tools
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}
	if req.Temperature > 0 {
		body["temperature"] = req.Temperature
	}
	if len(req.ResponseFormat) > 0 {
		body["response_format"] = req.ResponseFormat
	}
	return body
}

// Streaming chunk shape. Tool call deltas arrive fragmented and
// index-keyed; they are forwarded as-is for the caller to assemble.
type completionChunk struct {
	ID      string        `json:"id"`
	Choices []chunkChoice `json:"choices"`
	Usage   *wireUsage    `json:"usage,omitempty"`
}

type chunkChoice struct {
	Index        int        `json:"index"`
	Delta        chunkDelta `json:"delta"`
	FinishReason string     `json:"finish_reason"`
}

type chunkDelta struct {
	Role      string             `json:"role,omitempty"`
	Content   string             `json:"content,omitempty"`
	ToolCalls []wireToolCallFrag `json:"tool_calls,omitempty"`
}

type wireToolCallFrag struct {
	Index    int          `json:"index"`
	ID       string       `json:"id,omitempty"`
	Type     string       `json:"type,omitempty"`
	Function wireFuncFrag `json:"function"`
}

type wireFuncFrag struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

type wireUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Non-streaming completion response shape.
type completionResponse struct {
	ID      string           `json:"id"`
	Choices []responseChoice `json:"choices"`
	Usage   *wireUsage       `json:"usage,omitempty"`
}

type responseChoice struct {
	Index        int         `json:"index"`
	Message      llm.Message `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ABOUTME: Tests for the Chat Completions provider using httptest SSE fixtures
// ABOUTME: Covers text streaming, fragmented tool calls, usage, and API errors

package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/litigantportal/agentkit/pkg/llm"
)

func sseServer(t *testing.T, chunks ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, chunk := range chunks {
			fmt.Fprintf(w, "data: %s\n\n", chunk)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

func textChunk(content string) string {
	return fmt.Sprintf(`{"choices":[{"index":0,"delta":{"content":%q}}]}`, content)
}

func toolChunk(index int, id, name, args string) string {
	frag := map[string]any{"index": index}
	if id != "" {
		frag["id"] = id
		frag["type"] = "function"
	}
	fn := map[string]any{}
	if name != "" {
		fn["name"] = name
	}
	if args != "" {
		fn["arguments"] = args
	}
	frag["function"] = fn
	raw, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{
			"index": 0,
			"delta": map[string]any{"tool_calls": []any{frag}},
		}},
	})
	return string(raw)
}

func newTestProvider(url string) *Provider {
	return NewCompatible("openai", url, "", llm.Config{APIKey: "sk-test", BaseURL: url})
}

func collect(t *testing.T, s *llm.Stream) []llm.Chunk {
	t.Helper()
	var got []llm.Chunk
	for chunk := range s.Chunks() {
		got = append(got, chunk)
	}
	return got
}

func TestStreamTextContent(t *testing.T) {
	t.Parallel()

	srv := sseServer(t,
		textChunk("Hel"),
		textChunk("lo"),
		`{"choices":[{"index":0,"delta":{},"finish_reason":"stop"}],"usage":{"prompt_tokens":12,"completion_tokens":2}}`,
	)
	defer srv.Close()

	p := newTestProvider(srv.URL)
	stream := p.Stream(context.Background(), llm.Request{
		Model:    "gpt-4o-mini",
		Messages: []llm.Message{llm.UserMessage("hi")},
	})

	var content string
	for _, chunk := range collect(t, stream) {
		content += chunk.Content
	}
	if content != "Hello" {
		t.Errorf("content = %q, want %q", content, "Hello")
	}
	if err := stream.Err(); err != nil {
		t.Fatalf("stream error: %v", err)
	}
	usage := stream.Usage()
	if usage == nil || usage.InputTokens != 12 || usage.OutputTokens != 2 {
		t.Errorf("usage = %+v, want {12 2}", usage)
	}
}

func TestStreamToolCallFragments(t *testing.T) {
	t.Parallel()

	// Arguments split across three chunks the way real servers send them.
	srv := sseServer(t,
		toolChunk(0, "call_1", "get_weather", ""),
		toolChunk(0, "", "", `{"loc`),
		toolChunk(0, "", "", `ation":"Au`),
		toolChunk(0, "", "", `stin"}`),
		`{"choices":[{"index":0,"delta":{},"finish_reason":"tool_calls"}]}`,
	)
	defer srv.Close()

	p := newTestProvider(srv.URL)
	stream := p.Stream(context.Background(), llm.Request{Model: "m", Messages: []llm.Message{llm.UserMessage("weather?")}})

	var frags []llm.ToolCallDelta
	var finish string
	for _, chunk := range collect(t, stream) {
		frags = append(frags, chunk.ToolCalls...)
		if chunk.FinishReason != "" {
			finish = chunk.FinishReason
		}
	}
	if err := stream.Err(); err != nil {
		t.Fatalf("stream error: %v", err)
	}

	if len(frags) != 4 {
		t.Fatalf("got %d fragments, want 4: %+v", len(frags), frags)
	}
	if frags[0].ID != "call_1" || frags[0].Function.Name != "get_weather" {
		t.Errorf("first fragment = %+v", frags[0])
	}
	var args string
	for _, f := range frags {
		args += f.Function.Arguments
	}
	if args != `{"location":"Austin"}` {
		t.Errorf("reassembled args = %q", args)
	}
	if finish != "tool_calls" {
		t.Errorf("finish reason = %q, want tool_calls", finish)
	}
}

func TestStreamAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key"}}`)
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	stream := p.Stream(context.Background(), llm.Request{Model: "m"})
	collect(t, stream)

	err := stream.Err()
	if err == nil {
		t.Fatal("expected stream error for 401")
	}
	if !strings.Contains(err.Error(), "bad key") {
		t.Errorf("error %q should include response body", err)
	}
}

func TestStreamSendsAuthAndBody(t *testing.T) {
	t.Parallel()

	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	stream := p.Stream(context.Background(), llm.Request{
		Model:       "gpt-4o",
		Messages:    []llm.Message{llm.UserMessage("hi")},
		Tools:       []llm.ToolSchema{{Type: "function", Function: llm.FunctionSchema{Name: "f"}}},
		MaxTokens:   100,
		Temperature: 0.5,
	})
	collect(t, stream)
	if err := stream.Err(); err != nil {
		t.Fatalf("stream error: %v", err)
	}

	if body["model"] != "gpt-4o" {
		t.Errorf("model = %v", body["model"])
	}
	if body["stream"] != true {
		t.Error("stream flag not set")
	}
	if _, ok := body["stream_options"]; !ok {
		t.Error("stream_options missing")
	}
	if _, ok := body["tools"]; !ok {
		t.Error("tools missing")
	}
	if body["max_tokens"] != float64(100) {
		t.Errorf("max_tokens = %v", body["max_tokens"])
	}
}

func TestComplete(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if _, ok := body["stream"]; ok {
			t.Error("non-streaming request should not set stream")
		}
		fmt.Fprint(w, `{"choices":[{"index":0,"message":{"role":"assistant","content":"pong"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	msg, err := p.Complete(context.Background(), llm.Request{Model: "m", Messages: []llm.Message{llm.UserMessage("ping")}})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if msg.Role != llm.RoleAssistant || msg.Content != "pong" {
		t.Errorf("message = %+v", msg)
	}
}

func TestCompleteNoChoices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	if _, err := p.Complete(context.Background(), llm.Request{Model: "m"}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

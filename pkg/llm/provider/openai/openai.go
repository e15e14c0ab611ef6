// ABOUTME: Streaming provider for the OpenAI Chat Completions API
// ABOUTME: Also the base for Groq and Ollama, which speak the same protocol

package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/litigantportal/agentkit/internal/log"
	"github.com/litigantportal/agentkit/pkg/llm"
	"github.com/litigantportal/agentkit/pkg/llm/internal/httputil"
	"github.com/litigantportal/agentkit/pkg/llm/internal/sse"
)

const (
	defaultBaseURL = "https://api.openai.com"
	completionPath = "/v1/chat/completions"
)

// Provider talks to an OpenAI-compatible chat completion endpoint.
type Provider struct {
	name   string
	client *httputil.Client
}

// New builds a provider for api.openai.com, falling back to the
// OPENAI_API_KEY environment variable when no key is configured.
func New(cfg llm.Config) *Provider {
	return NewCompatible("openai", defaultBaseURL, "OPENAI_API_KEY", cfg)
}

// NewCompatible builds a provider for any endpoint that speaks the
// Chat Completions protocol. Groq and Ollama wrap this with their own
// defaults.
func NewCompatible(name, baseURL, keyEnv string, cfg llm.Config) *Provider {
	apiKey := cfg.APIKey
	if apiKey == "" && keyEnv != "" {
		apiKey = os.Getenv(keyEnv)
	}
	base := cfg.BaseURL
	if base == "" {
		base = baseURL
	}
	headers := map[string]string{
		"Content-Type": "application/json",
	}
	if apiKey != "" {
		headers["Authorization"] = "Bearer " + apiKey
	}
	return &Provider{
		name:   name,
		client: httputil.NewClient(httputil.NormalizeBaseURL(base), headers),
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return p.name }

// Stream starts a streaming completion. Fragmented tool call deltas are
// forwarded chunk by chunk; assembly is the caller's job.
func (p *Provider) Stream(ctx context.Context, req llm.Request) *llm.Stream {
	stream := llm.NewStream(64)
	go func() {
		if err := p.doStream(ctx, req, stream); err != nil {
			stream.Fail(err)
		}
	}()
	return stream
}

func (p *Provider) doStream(ctx context.Context, req llm.Request, stream *llm.Stream) error {
	payload, err := json.Marshal(buildBody(req, true))
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	log.Debug("http: POST %s%s model=%s", p.client.BaseURL(), completionPath, req.Model)
	dec, resp, err := p.client.StreamSSE(ctx, http.MethodPost, completionPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	log.Debug("http: POST %s%s -> %d", p.client.BaseURL(), completionPath, resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s API error (status %d): %s", p.name, resp.StatusCode, snippet)
	}

	return p.readChunks(dec, stream)
}

func (p *Provider) readChunks(dec *sse.Decoder, stream *llm.Stream) error {
	var usage *llm.Usage

	for {
		event, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read stream: %w", err)
		}
		if event.Data == "[DONE]" {
			break
		}

		var chunk completionChunk
		if err := json.Unmarshal([]byte(event.Data), &chunk); err != nil {
			// Malformed keep-alive noise; skip it.
			continue
		}

		if chunk.Usage != nil {
			usage = &llm.Usage{
				InputTokens:  chunk.Usage.PromptTokens,
				OutputTokens: chunk.Usage.CompletionTokens,
			}
		}

		for _, choice := range chunk.Choices {
			out := llm.Chunk{
				Content:      choice.Delta.Content,
				FinishReason: choice.FinishReason,
			}
			for _, frag := range choice.Delta.ToolCalls {
				out.ToolCalls = append(out.ToolCalls, llm.ToolCallDelta{
					Index: frag.Index,
					ID:    frag.ID,
					Function: llm.FunctionDelta{
						Name:      frag.Function.Name,
						Arguments: frag.Function.Arguments,
					},
				})
			}
			if out.Content != "" || len(out.ToolCalls) > 0 || out.FinishReason != "" {
				stream.Send(out)
			}
		}
	}

	stream.Finish(usage)
	return nil
}

// Complete performs a blocking, non-streaming completion.
func (p *Provider) Complete(ctx context.Context, req llm.Request) (llm.Message, error) {
	payload, err := json.Marshal(buildBody(req, false))
	if err != nil {
		return llm.Message{}, fmt.Errorf("marshal request: %w", err)
	}

	resp, err := p.client.Do(ctx, http.MethodPost, completionPath, bytes.NewReader(payload))
	if err != nil {
		return llm.Message{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return llm.Message{}, fmt.Errorf("%s API error (status %d): %s", p.name, resp.StatusCode, snippet)
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return llm.Message{}, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return llm.Message{}, fmt.Errorf("%s API returned no choices", p.name)
	}
	return out.Choices[0].Message, nil
}

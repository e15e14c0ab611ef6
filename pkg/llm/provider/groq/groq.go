// ABOUTME: Groq provider, a thin wrapper over the OpenAI-compatible endpoint
// ABOUTME: Defaults to api.groq.com and the GROQ_API_KEY environment variable

package groq

import (
	"github.com/litigantportal/agentkit/pkg/llm"
	"github.com/litigantportal/agentkit/pkg/llm/provider/openai"
)

// Groq serves the Chat Completions protocol under /openai.
const defaultBaseURL = "https://api.groq.com/openai"

// New builds a Groq provider.
func New(cfg llm.Config) *openai.Provider {
	return openai.NewCompatible("groq", defaultBaseURL, "GROQ_API_KEY", cfg)
}

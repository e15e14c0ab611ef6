// ABOUTME: Ollama provider for local models via the OpenAI-compatible endpoint
// ABOUTME: Defaults to localhost:11434; Ollama ignores the bearer token

package ollama

import (
	"github.com/litigantportal/agentkit/pkg/llm"
	"github.com/litigantportal/agentkit/pkg/llm/provider/openai"
)

const defaultBaseURL = "http://localhost:11434"

// New builds an Ollama provider. Ollama requires no API key; a dummy
// token keeps shared client code on one path.
func New(cfg llm.Config) *openai.Provider {
	if cfg.APIKey == "" {
		cfg.APIKey = "ollama"
	}
	return openai.NewCompatible("ollama", defaultBaseURL, "", cfg)
}

// ABOUTME: Conversation summarization into Q&A pairs via the summarizer agent
// ABOUTME: Flattens history to role-tagged text and runs a single model turn

package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/litigantportal/agentkit/pkg/llm"
)

// Summarize condenses a conversation into Q&A pairs covering only the
// questions the user actually asked. The summarizer runs as its own
// one-turn agent; the source conversation is never mutated.
func Summarize(ctx context.Context, provider llm.Provider, model string, history []llm.Message) (string, error) {
	def, _ := NewDefRegistry(BuiltinDefinitions()...).Get("summarizer")

	a, err := New(Config{
		Provider:  provider,
		Model:     model,
		Messages:  []llm.Message{llm.SystemMessage(def.SystemPrompt)},
		MaxSteps:  1,
		MaxTokens: def.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	for ev := range a.Run(ctx, flatten(history)) {
		if ev.Type == EventError {
			return "", fmt.Errorf("summarizing conversation: %w", ev.Err)
		}
	}

	msgs := a.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == llm.RoleAssistant && msgs[i].Content != "" {
			return msgs[i].Content, nil
		}
	}
	return "", fmt.Errorf("summarizer produced no output")
}

// flatten renders history as "ROLE: content" lines, skipping messages
// without text.
func flatten(history []llm.Message) string {
	var b strings.Builder
	for _, msg := range history {
		if msg.Content == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", strings.ToUpper(string(msg.Role)), msg.Content)
	}
	return b.String()
}

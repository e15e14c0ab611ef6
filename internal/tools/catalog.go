// ABOUTME: Tool catalog: maps tool names from agent definitions to implementations
// ABOUTME: BuildToolSet resolves a definition's tool list into a ToolSet

package tools

import (
	"fmt"

	"github.com/litigantportal/agentkit/internal/agent"
)

// Available returns all tool constructors keyed by tool name.
func Available() map[string]func() *agent.Tool {
	return map[string]func() *agent.Tool{
		"get_weather": NewWeatherTool,
		"webfetch":    NewWebFetchTool,
		"save_note":   NewSaveNoteTool,
		"list_notes":  NewListNotesTool,
	}
}

// BuildToolSet resolves names into a ToolSet. Unknown names error so a
// typo in an agent definition fails loudly at startup, not mid-run.
func BuildToolSet(names []string) (*agent.ToolSet, error) {
	catalog := Available()
	built := make([]*agent.Tool, 0, len(names))
	for _, name := range names {
		ctor, ok := catalog[name]
		if !ok {
			return nil, fmt.Errorf("unknown tool %q in agent definition", name)
		}
		built = append(built, ctor())
	}
	return agent.NewToolSet(built...)
}

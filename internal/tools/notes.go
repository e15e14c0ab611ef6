// ABOUTME: Note tools: save_note stashes text in agent state, list_notes reads it back
// ABOUTME: save_note returns nothing on purpose; the loop normalizes that to "Success"

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/litigantportal/agentkit/internal/agent"
)

const notesStateKey = "notes"

// NewSaveNoteTool returns a tool that records a note in the agent's
// scratch state for the rest of the run.
func NewSaveNoteTool() *agent.Tool {
	return &agent.Tool{
		Name:        "save_note",
		Description: "Save a short note for this conversation, such as a deadline or case number the user mentioned.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"required": ["text"],
			"properties": {
				"text": {"type": "string", "description": "The note text to save"}
			}
		}`),
		Execute: func(ctx context.Context, a *agent.Agent, args map[string]any) (*agent.ToolOutput, error) {
			text, err := requireStringParam(args, "text")
			if err != nil {
				return nil, err
			}
			notes, _ := a.State[notesStateKey].([]string)
			a.State[notesStateKey] = append(notes, text)
			return nil, nil
		},
	}
}

// NewListNotesTool returns a tool that reads back saved notes.
func NewListNotesTool() *agent.Tool {
	return &agent.Tool{
		Name:        "list_notes",
		Description: "List the notes saved so far in this conversation.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
		Execute: func(ctx context.Context, a *agent.Agent, args map[string]any) (*agent.ToolOutput, error) {
			notes, _ := a.State[notesStateKey].([]string)
			if len(notes) == 0 {
				return agent.Text("No notes saved."), nil
			}
			var b strings.Builder
			for i, note := range notes {
				fmt.Fprintf(&b, "%d. %s\n", i+1, note)
			}
			return &agent.ToolOutput{
				Response: b.String(),
				Data:     map[string]any{"count": len(notes), "notes": notes},
			}, nil
		},
	}
}

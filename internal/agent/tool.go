// ABOUTME: Tool abstraction: named, schema-described units of work the model can call
// ABOUTME: ToolSet maps names to implementations; duplicate names are a construction error

package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/litigantportal/agentkit/pkg/llm"
)

// ToolOutput is the normalized result of one tool execution. Response is
// the LLM-visible text; Data rides along to the client without ever
// being shown to the model.
type ToolOutput struct {
	Response string
	Data     map[string]any
}

// Text wraps a plain string result.
func Text(s string) *ToolOutput {
	return &ToolOutput{Response: s}
}

// Tool is a callable capability. Execute gets the running agent so it
// can read and write scratch state; it must not touch message history.
// A nil return with nil error normalizes to "Success".
type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage
	Execute     func(ctx context.Context, a *Agent, args map[string]any) (*ToolOutput, error)
}

// ValidateArgs checks args against the required fields of the tool's
// JSON Schema.
func (t *Tool) ValidateArgs(args map[string]any) error {
	if t.Parameters == nil {
		return nil
	}
	var schema struct {
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(t.Parameters, &schema); err != nil {
		return fmt.Errorf("parsing tool %s schema: %w", t.Name, err)
	}
	for _, req := range schema.Required {
		if _, ok := args[req]; !ok {
			return fmt.Errorf("missing required parameter %q for tool %s", req, t.Name)
		}
	}
	return nil
}

// ParseArgs deserializes a raw JSON argument string strictly. Empty or
// null input yields an empty map.
func ParseArgs(raw string) (map[string]any, error) {
	if raw == "" || raw == "null" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("parsing tool arguments: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// ToolSet holds an agent's tools in registration order.
type ToolSet struct {
	order []string
	byName map[string]*Tool
}

// NewToolSet builds a set from tools. Two tools sharing a name is an
// error rather than a silent overwrite.
func NewToolSet(tools ...*Tool) (*ToolSet, error) {
	ts := &ToolSet{byName: make(map[string]*Tool, len(tools))}
	for _, t := range tools {
		if t.Name == "" {
			return nil, fmt.Errorf("tool with empty name")
		}
		if _, dup := ts.byName[t.Name]; dup {
			return nil, fmt.Errorf("duplicate tool name %q", t.Name)
		}
		ts.byName[t.Name] = t
		ts.order = append(ts.order, t.Name)
	}
	return ts, nil
}

// Get returns the named tool, or nil. Safe on a nil set.
func (ts *ToolSet) Get(name string) *Tool {
	if ts == nil {
		return nil
	}
	return ts.byName[name]
}

// Len reports the number of registered tools. Safe on a nil set.
func (ts *ToolSet) Len() int {
	if ts == nil {
		return 0
	}
	return len(ts.order)
}

// Schemas exports the wire-format tool declarations in registration
// order, or nil for an empty set (the request then omits tools).
func (ts *ToolSet) Schemas() []llm.ToolSchema {
	if ts.Len() == 0 {
		return nil
	}
	out := make([]llm.ToolSchema, 0, len(ts.order))
	for _, name := range ts.order {
		t := ts.byName[name]
		params := t.Parameters
		if params == nil {
			params = json.RawMessage(`{"type":"object","properties":{}}`)
		}
		out = append(out, llm.ToolSchema{
			Type: "function",
			Function: llm.FunctionSchema{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  params,
			},
		})
	}
	return out
}

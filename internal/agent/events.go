// ABOUTME: Transient event stream emitted during one agent run
// ABOUTME: Events are a closed union; JSON shape depends on the event type

package agent

import (
	"encoding/json"
)

// EventType tags the event union.
type EventType string

const (
	EventContentDelta EventType = "content_delta"
	EventToolCall     EventType = "tool_call"
	EventToolResponse EventType = "tool_response"
	EventDone         EventType = "done"
	EventError        EventType = "error"
)

// Event is one entry in the transient stream a run produces. Exactly one
// terminal event ends each run: done on success, error on failure, never
// both. Truncated is set on done when the step budget ran out before a
// tool-free assistant turn; it is process-local and never serialized.
type Event struct {
	Type      EventType      `json:"type"`
	Content   string         `json:"content,omitempty"`
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name,omitempty"`
	Args      map[string]any `json:"args,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Err       error          `json:"-"`
	Truncated bool           `json:"-"`
}

// MarshalJSON emits exactly the key set the event type defines: args is
// always present on tool_call (possibly {}), data only when set on
// tool_response, and the tool response text never leaves the message log.
func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case EventContentDelta:
		return json.Marshal(struct {
			Type    EventType `json:"type"`
			Content string    `json:"content"`
		}{e.Type, e.Content})
	case EventToolCall:
		args := e.Args
		if args == nil {
			args = map[string]any{}
		}
		return json.Marshal(struct {
			Type EventType      `json:"type"`
			ID   string         `json:"id"`
			Name string         `json:"name"`
			Args map[string]any `json:"args"`
		}{e.Type, e.ID, e.Name, args})
	case EventToolResponse:
		return json.Marshal(struct {
			Type EventType      `json:"type"`
			ID   string         `json:"id"`
			Name string         `json:"name"`
			Data map[string]any `json:"data,omitempty"`
		}{e.Type, e.ID, e.Name, e.Data})
	case EventError:
		msg := ""
		if e.Err != nil {
			msg = e.Err.Error()
		}
		return json.Marshal(struct {
			Type  EventType `json:"type"`
			Error string    `json:"error"`
		}{e.Type, msg})
	default: // done
		return json.Marshal(struct {
			Type EventType `json:"type"`
		}{e.Type})
	}
}

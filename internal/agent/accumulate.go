// ABOUTME: Reassembly of fragmented streamed tool-call deltas
// ABOUTME: Slots are keyed by fragment index; ids merge, names overwrite, arguments append

package agent

import (
	"github.com/litigantportal/agentkit/pkg/llm"
)

// toolCallAssembler rebuilds complete tool calls from the index-keyed
// fragments a streaming response delivers. The id can arrive in a later
// fragment than the name or the first argument bytes, so slots are
// located by positional index only.
type toolCallAssembler struct {
	slots []llm.ToolCall
}

func (a *toolCallAssembler) add(delta llm.ToolCallDelta) {
	for len(a.slots) <= delta.Index {
		a.slots = append(a.slots, llm.ToolCall{Type: "function"})
	}
	slot := &a.slots[delta.Index]

	if delta.ID != "" {
		slot.ID = delta.ID
	}
	if delta.Function.Name != "" {
		slot.Function.Name = delta.Function.Name
	}
	// Argument JSON streams as text; always append, never overwrite.
	slot.Function.Arguments += delta.Function.Arguments
}

// result returns the assembled calls in index order, or nil when no
// fragments arrived.
func (a *toolCallAssembler) result() []llm.ToolCall {
	if len(a.slots) == 0 {
		return nil
	}
	return a.slots
}

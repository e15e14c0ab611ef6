// ABOUTME: Agent-to-Bubble Tea bridge that converts agent events to tea.Msg
// ABOUTME: Reads from <-chan agent.Event and sends typed messages via ProgramSender

package interactive

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/litigantportal/agentkit/internal/agent"
)

// ProgramSender is the interface for sending messages to Bubble Tea.
// Matches *tea.Program's Send method.
type ProgramSender interface {
	Send(msg tea.Msg)
}

// runBridge forwards agent events as tea.Msg until the channel closes,
// then returns the terminal done message. Error events short-circuit:
// the loop never produces both an error and a done.
func runBridge(program ProgramSender, events <-chan agent.Event) tea.Msg {
	for ev := range events {
		switch ev.Type {
		case agent.EventContentDelta:
			program.Send(AgentDeltaMsg{Text: ev.Content})
		case agent.EventToolCall:
			program.Send(AgentToolCallMsg{ID: ev.ID, Name: ev.Name, Args: ev.Args})
		case agent.EventToolResponse:
			program.Send(AgentToolResponseMsg{ID: ev.ID, Name: ev.Name, Data: ev.Data})
		case agent.EventDone:
			return AgentDoneMsg{Truncated: ev.Truncated}
		case agent.EventError:
			return AgentErrorMsg{Err: ev.Err}
		}
	}
	return AgentDoneMsg{}
}

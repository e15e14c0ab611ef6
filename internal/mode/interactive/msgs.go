// ABOUTME: Custom tea.Msg types for the interactive TUI
// ABOUTME: Agent stream events, user actions, and internal notices

package interactive

// --- Agent events (sent by the bridge goroutine via Program.Send) ---

// AgentDeltaMsg carries streamed assistant text.
type AgentDeltaMsg struct{ Text string }

// AgentToolCallMsg signals that the model requested a tool.
type AgentToolCallMsg struct {
	ID   string
	Name string
	Args map[string]any
}

// AgentToolResponseMsg carries a tool's structured result.
type AgentToolResponseMsg struct {
	ID   string
	Name string
	Data map[string]any
}

// AgentDoneMsg signals the run finished.
type AgentDoneMsg struct{ Truncated bool }

// AgentErrorMsg carries a transport or persistence failure.
type AgentErrorMsg struct{ Err error }

// --- User actions ---

// SubmitPromptMsg is sent when the user submits a prompt.
type SubmitPromptMsg struct{ Text string }

// noticeMsg displays a transient informational line (slash command output).
type noticeMsg struct{ text string }

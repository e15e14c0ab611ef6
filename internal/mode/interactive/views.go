// ABOUTME: Leaf view models: welcome banner, user message, assistant message, footer
// ABOUTME: Assistant messages accumulate streamed text and inline tool status lines

package interactive

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// --- Welcome banner ---

type welcomeModel struct {
	version string
	agent   string
	model   string
}

func newWelcome(version, agentName, model string) welcomeModel {
	if version == "" {
		version = "dev"
	}
	return welcomeModel{version: version, agent: agentName, model: model}
}

func (m welcomeModel) Init() tea.Cmd                       { return nil }
func (m welcomeModel) Update(tea.Msg) (tea.Model, tea.Cmd) { return m, nil }

func (m welcomeModel) View() string {
	s := styles()
	return s.Bold.Render(fmt.Sprintf("agentkit %s", m.version)) +
		s.Muted.Render(fmt.Sprintf("  agent: %s  model: %s", m.agent, m.model)) +
		"\n" + s.Dim.Render("Type a prompt and press Enter. /help lists commands.")
}

// --- User message ---

type userMsgModel struct {
	text string
}

func newUserMsg(text string) userMsgModel { return userMsgModel{text: text} }

func (m userMsgModel) Init() tea.Cmd                       { return nil }
func (m userMsgModel) Update(tea.Msg) (tea.Model, tea.Cmd) { return m, nil }

func (m userMsgModel) View() string {
	s := styles()
	return "\n" + s.UserBg.Render(s.Bold.Render(" > ")+m.text+" ")
}

// --- Notice (slash command output) ---

type noticeModel struct {
	text string
}

func (m noticeModel) Init() tea.Cmd                       { return nil }
func (m noticeModel) Update(tea.Msg) (tea.Model, tea.Cmd) { return m, nil }

func (m noticeModel) View() string {
	return "\n" + styles().Notice.Render(m.text)
}

// --- Assistant message ---

type toolStatus struct {
	id   string
	name string
	done bool
}

// assistantModel renders one assistant response: streamed text while the
// run is live, a glamour markdown pass once it is done.
type assistantModel struct {
	text     strings.Builder
	tools    []toolStatus
	errText  string
	finished bool
	width    int
	md       *markdownRenderer
}

func newAssistantMsg(md *markdownRenderer) *assistantModel {
	return &assistantModel{md: md}
}

func (m *assistantModel) Init() tea.Cmd { return nil }

func (m *assistantModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case AgentDeltaMsg:
		m.text.WriteString(msg.Text)
	case AgentToolCallMsg:
		m.tools = append(m.tools, toolStatus{id: msg.ID, name: msg.Name})
	case AgentToolResponseMsg:
		for i := range m.tools {
			if m.tools[i].id == msg.ID {
				m.tools[i].done = true
				break
			}
		}
	case AgentErrorMsg:
		m.errText = msg.Err.Error()
	case AgentDoneMsg:
		m.finished = true
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

func (m *assistantModel) View() string {
	s := styles()
	var b strings.Builder
	b.WriteString("\n")

	for _, t := range m.tools {
		style := s.ToolCall
		marker := "…"
		if t.done {
			style = s.ToolDone
			marker = "✓"
		}
		b.WriteString(style.Render(fmt.Sprintf("  %s %s", marker, t.name)) + "\n")
	}

	raw := m.text.String()
	switch {
	case m.finished && raw != "":
		b.WriteString(m.md.Render(raw, m.contentWidth()))
	case raw != "":
		border := s.Border.Render("│")
		for _, line := range strings.Split(raw, "\n") {
			b.WriteString(border + " " + line + "\n")
		}
	}

	if m.errText != "" {
		b.WriteString("\n" + s.Err.Render("✗ "+m.errText))
	}

	return b.String()
}

func (m *assistantModel) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	if m.width > 100 {
		return 100
	}
	return m.width
}

// --- Footer ---

type footerModel struct {
	agent    string
	model    string
	provider string
	convID   string
	running  bool
	width    int
}

func (m footerModel) Init() tea.Cmd { return nil }

func (m footerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = ws.Width
	}
	return m, nil
}

func (m footerModel) View() string {
	s := styles()
	parts := []string{
		s.FooterKey.Render("agent ") + s.FooterVal.Render(m.agent),
		s.FooterKey.Render("model ") + s.FooterVal.Render(m.model),
		s.FooterKey.Render("provider ") + s.FooterVal.Render(m.provider),
	}
	if m.convID != "" {
		parts = append(parts, s.FooterKey.Render("conv ")+s.FooterVal.Render(shortID(m.convID)))
	}
	if m.running {
		parts = append(parts, s.ToolCall.Render("thinking…"))
	}
	return strings.Join(parts, s.Muted.Render("  ·  "))
}

// shortID trims a UUID to its first group for display.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

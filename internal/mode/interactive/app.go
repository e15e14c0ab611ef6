// ABOUTME: Root Bubble Tea model for the interactive TUI
// ABOUTME: Routes keys, runs the agent in the background, handles slash commands

package interactive

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/unicode/norm"

	"github.com/litigantportal/agentkit/internal/agent"
	"github.com/litigantportal/agentkit/internal/session"
	"github.com/litigantportal/agentkit/internal/tools"
	"github.com/litigantportal/agentkit/pkg/llm"
)

// Deps bundles external dependencies for the interactive app.
type Deps struct {
	Provider  llm.Provider
	Model     string
	Defs      *agent.DefRegistry
	AgentName string
	Store     session.Store
	MaxSteps  int
	Version   string
}

// shared holds mutable state that must survive model value copies.
// Bubble Tea copies the model on each Update; pointer fields are shared
// across copies. Update is single-threaded, and the agent goroutine only
// communicates via Program.Send, so no mutex is needed.
type shared struct {
	program *tea.Program
	agent   *agent.Agent
	cancel  context.CancelFunc
	md      *markdownRenderer
}

// appModel is the root Bubble Tea model.
type appModel struct {
	sh *shared

	deps      Deps
	agentName string
	running   bool

	editor  editorModel
	footer  footerModel
	content []tea.Model

	width, height int
	cachedSep     string
}

func newAppModel(deps Deps) appModel {
	name := deps.AgentName
	if name == "" {
		name = "litigant_assistant"
	}

	editor := newEditor()
	editor.placeholder = "Ask about your case, or /help"

	m := appModel{
		sh:        &shared{md: newMarkdownRenderer()},
		deps:      deps,
		agentName: name,
		editor:    editor,
		footer: footerModel{
			agent:    name,
			model:    deps.Model,
			provider: deps.Provider.Name(),
		},
	}
	m.content = []tea.Model{newWelcome(deps.Version, name, deps.Model)}
	return m
}

func (m appModel) Init() tea.Cmd { return nil }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.cachedSep = strings.Repeat("─", msg.Width)
		return m.propagateSize(msg), nil

	case SubmitPromptMsg:
		return m.submitPrompt(msg.Text)

	case noticeMsg:
		m.content = append(m.content, noticeModel{text: msg.text})
		return m, nil

	case AgentDeltaMsg, AgentToolCallMsg, AgentToolResponseMsg:
		return m.updateLastAssistant(msg), nil

	case AgentDoneMsg:
		m.running = false
		m.footer.running = false
		m.syncConvID()
		return m.updateLastAssistant(msg), nil

	case AgentErrorMsg:
		m.running = false
		m.footer.running = false
		return m.updateLastAssistant(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m appModel) View() string {
	var sections []string
	for _, c := range m.content {
		sections = append(sections, c.View())
	}

	s := styles()
	sections = append(sections,
		s.Border.Render(m.cachedSep),
		m.editor.View(),
		s.Border.Render(m.cachedSep),
		m.footer.View(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// --- Key handling ---

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.running {
			if m.sh.cancel != nil {
				m.sh.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case "ctrl+d":
		return m, tea.Quit

	case "enter":
		if !m.running && !m.editor.IsEmpty() {
			text := norm.NFC.String(m.editor.Text())
			m.editor = m.editor.Reset()
			return m, func() tea.Msg { return SubmitPromptMsg{Text: text} }
		}
		return m, nil

	default:
		updated, cmd := m.editor.Update(msg)
		m.editor = updated.(editorModel)
		return m, cmd
	}
}

// --- Prompt submission ---

func (m appModel) submitPrompt(text string) (tea.Model, tea.Cmd) {
	if strings.HasPrefix(text, "/") {
		return m.handleSlashCommand(text)
	}

	m.content = append(m.content, newUserMsg(text))

	am := newAssistantMsg(m.sh.md)
	am.width = m.width
	m.content = append(m.content, am)

	m.running = true
	m.footer.running = true
	return m, m.startAgentCmd(text)
}

func (m appModel) startAgentCmd(text string) tea.Cmd {
	sh := m.sh
	deps := m.deps
	agentName := m.agentName

	return func() tea.Msg {
		if sh.program == nil {
			return AgentErrorMsg{Err: fmt.Errorf("program reference not set")}
		}
		if sh.agent == nil {
			ag, err := buildAgent(deps, agentName)
			if err != nil {
				return AgentErrorMsg{Err: err}
			}
			sh.agent = ag
		}

		ctx, cancel := context.WithCancel(context.Background())
		sh.cancel = cancel
		defer cancel()

		return runBridge(sh.program, sh.agent.Run(ctx, text))
	}
}

// buildAgent assembles an agent from a definition: its tool set, system
// prompt seed, and model override.
func buildAgent(deps Deps, name string) (*agent.Agent, error) {
	def, err := deps.Defs.Get(name)
	if err != nil {
		return nil, err
	}
	toolSet, err := tools.BuildToolSet(def.Tools)
	if err != nil {
		return nil, err
	}

	model := deps.Model
	if def.Model != "" {
		model = def.Model
	}
	var seed []llm.Message
	if def.SystemPrompt != "" {
		seed = []llm.Message{llm.SystemMessage(def.SystemPrompt)}
	}
	maxSteps := deps.MaxSteps
	if maxSteps == 0 {
		maxSteps = def.MaxSteps
	}

	return agent.New(agent.Config{
		Provider:  deps.Provider,
		Model:     model,
		Tools:     toolSet,
		Messages:  seed,
		MaxSteps:  maxSteps,
		MaxTokens: def.MaxTokens,
		Store:     deps.Store,
	})
}

// --- Slash commands ---

func (m appModel) handleSlashCommand(text string) (tea.Model, tea.Cmd) {
	m.content = append(m.content, newUserMsg(text))

	cmd, arg, _ := strings.Cut(strings.TrimPrefix(text, "/"), " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "help":
		return m.notice("Commands: /agent <name>  /agents  /new  /quit")

	case "agents":
		var names []string
		for _, def := range m.deps.Defs.List() {
			marker := "  "
			if def.Name == m.agentName {
				marker = "* "
			}
			names = append(names, marker+def.Name)
		}
		return m.notice("Available agents:\n" + strings.Join(names, "\n"))

	case "agent":
		if arg == "" {
			return m.notice("Current agent: " + m.agentName)
		}
		if _, err := m.deps.Defs.Get(arg); err != nil {
			return m.notice(err.Error())
		}
		m.agentName = arg
		m.footer.agent = arg
		m.footer.convID = ""
		m.sh.agent = nil
		return m.notice("Switched to agent " + arg + " (new conversation)")

	case "new":
		m.sh.agent = nil
		m.footer.convID = ""
		return m.notice("Started a new conversation")

	case "quit", "exit":
		return m, tea.Quit

	default:
		return m.notice(fmt.Sprintf("Unknown command /%s; try /help", cmd))
	}
}

func (m appModel) notice(text string) (tea.Model, tea.Cmd) {
	m.content = append(m.content, noticeModel{text: text})
	return m, nil
}

// --- Helpers ---

func (m appModel) propagateSize(msg tea.WindowSizeMsg) appModel {
	for i := range m.content {
		updated, _ := m.content[i].Update(msg)
		m.content[i] = updated
	}
	updated, _ := m.editor.Update(msg)
	m.editor = updated.(editorModel)
	fUpdated, _ := m.footer.Update(msg)
	m.footer = fUpdated.(footerModel)
	return m
}

func (m appModel) updateLastAssistant(msg tea.Msg) appModel {
	if len(m.content) == 0 {
		return m
	}
	idx := len(m.content) - 1
	if _, ok := m.content[idx].(*assistantModel); !ok {
		return m
	}
	updated, _ := m.content[idx].Update(msg)
	m.content[idx] = updated.(*assistantModel)
	return m
}

func (m *appModel) syncConvID() {
	if m.sh.agent != nil {
		m.footer.convID = m.sh.agent.ConversationID()
	}
}

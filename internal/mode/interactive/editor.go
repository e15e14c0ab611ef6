// ABOUTME: Single-line rune editor for the interactive prompt
// ABOUTME: Value semantics per Bubble Tea convention; runewidth-aware rendering

package interactive

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
)

// editorModel is a single-line input with cursor movement and the usual
// readline-ish keys (Ctrl+A/E/U/K).
type editorModel struct {
	runes       []rune
	col         int
	prompt      string
	placeholder string
	width       int
	focused     bool
}

func newEditor() editorModel {
	return editorModel{prompt: "❯ ", focused: true}
}

func (m editorModel) Init() tea.Cmd { return nil }

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

func (m *editorModel) handleKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyRunes:
		m.insert(msg.Runes)
	case tea.KeySpace:
		m.insert([]rune{' '})
	case tea.KeyBackspace:
		if m.col > 0 {
			m.runes = append(m.runes[:m.col-1], m.runes[m.col:]...)
			m.col--
		}
	case tea.KeyDelete:
		if m.col < len(m.runes) {
			m.runes = append(m.runes[:m.col], m.runes[m.col+1:]...)
		}
	case tea.KeyLeft:
		if m.col > 0 {
			m.col--
		}
	case tea.KeyRight:
		if m.col < len(m.runes) {
			m.col++
		}
	case tea.KeyHome, tea.KeyCtrlA:
		m.col = 0
	case tea.KeyEnd, tea.KeyCtrlE:
		m.col = len(m.runes)
	case tea.KeyCtrlU:
		m.runes = append([]rune{}, m.runes[m.col:]...)
		m.col = 0
	case tea.KeyCtrlK:
		m.runes = m.runes[:m.col]
	}
}

func (m *editorModel) insert(rs []rune) {
	out := make([]rune, 0, len(m.runes)+len(rs))
	out = append(out, m.runes[:m.col]...)
	out = append(out, rs...)
	out = append(out, m.runes[m.col:]...)
	m.runes = out
	m.col += len(rs)
}

// Text returns the current input.
func (m editorModel) Text() string { return string(m.runes) }

// IsEmpty reports whether the editor holds no text.
func (m editorModel) IsEmpty() bool { return len(m.runes) == 0 }

// SetText replaces the content and moves the cursor to the end.
func (m editorModel) SetText(s string) editorModel {
	m.runes = []rune(s)
	m.col = len(m.runes)
	return m
}

// Reset clears the editor.
func (m editorModel) Reset() editorModel {
	m.runes = nil
	m.col = 0
	return m
}

const cursorMarker = "█"

func (m editorModel) View() string {
	s := styles()

	if m.focused && m.IsEmpty() && m.placeholder != "" {
		return s.Prompt.Render(m.prompt) + cursorMarker + s.Dim.Render(m.placeholder)
	}

	before := string(m.runes[:m.col])
	after := string(m.runes[m.col:])

	line := s.Prompt.Render(m.prompt) + before
	if m.focused {
		line += cursorMarker
	}
	line += after

	// Keep the cursor visible on narrow terminals by trimming the head.
	if m.width > 0 {
		promptW := runewidth.StringWidth(m.prompt)
		headW := promptW + runewidth.StringWidth(before) + 1
		for headW > m.width && len(before) > 0 {
			r := []rune(before)
			cut := r[0]
			before = string(r[1:])
			headW -= runewidth.RuneWidth(cut)
			line = s.Prompt.Render(m.prompt) + before + cursorMarker + after
		}
	}

	return strings.TrimRight(line, " ")
}

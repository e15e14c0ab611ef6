// ABOUTME: Lipgloss style palette for the interactive TUI
// ABOUTME: Built once and cached; 256-color specs chosen for dark terminals

package interactive

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the pre-built lipgloss styles used across views.
type palette struct {
	Prompt    lipgloss.Style
	UserBg    lipgloss.Style
	Border    lipgloss.Style
	Muted     lipgloss.Style
	Dim       lipgloss.Style
	Bold      lipgloss.Style
	ToolCall  lipgloss.Style
	ToolDone  lipgloss.Style
	Err       lipgloss.Style
	Notice    lipgloss.Style
	FooterKey lipgloss.Style
	FooterVal lipgloss.Style
}

var styles = sync.OnceValue(func() palette {
	return palette{
		Prompt:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
		UserBg:    lipgloss.NewStyle().Background(lipgloss.Color("236")),
		Border:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Dim:       lipgloss.NewStyle().Faint(true),
		Bold:      lipgloss.NewStyle().Bold(true),
		ToolCall:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		ToolDone:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Err:       lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Notice:    lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		FooterKey: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		FooterVal: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	}
})

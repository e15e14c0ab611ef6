// ABOUTME: Entry point for the interactive TUI
// ABOUTME: Creates the tea.Program, injects the program reference, blocks until exit

package interactive

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive app and blocks until the user exits.
func Run(deps Deps) error {
	m := newAppModel(deps)

	p := tea.NewProgram(m)

	// Safe because newAppModel allocates sh as a pointer: tea.NewProgram
	// copies the model value but shares the pointer.
	m.sh.program = p

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("interactive mode: %w", err)
	}
	return nil
}

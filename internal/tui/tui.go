package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the TUI application and blocks until the user quits or ctx is
// canceled.
func Run(ctx context.Context, queue Queue, opts Options) error {
	p := tea.NewProgram(
		NewModel(queue, opts),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	if ctx.Err() != nil && err != nil {
		// Killed by the signal handler; not a UI failure.
		return nil
	}

	return err
}

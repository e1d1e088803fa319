package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run запускает терминальный дашборд и блокируется до выхода пользователя
// или отмены ctx. bridge закрывается при возврате.
func Run(ctx context.Context, ctrl Controller, bridge *Bridge, opts Options) error {
	if bridge != nil {
		defer bridge.Close()
	}

	p := tea.NewProgram(NewModel(ctrl, bridge, opts),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

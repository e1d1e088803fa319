package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Colors
var (
	Accent    = lipgloss.Color("#7D56F4")
	MutedGray = lipgloss.Color("245")
	Red       = lipgloss.Color("196")
	Green     = lipgloss.Color("#2E8B57")
	Yellow    = lipgloss.Color("#F1C40F")
)

// Markers
const (
	markerActive  = "▶"
	markerOK      = "✓"
	markerFailed  = "✗"
	markerPending = "·"
	markerCursor  = ">"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().Foreground(Accent).Bold(true)

	selectedStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(MutedGray)
	okStyle       = lipgloss.NewStyle().Foreground(Green)
	failedStyle   = lipgloss.NewStyle().Foreground(Red)
	activeStyle   = lipgloss.NewStyle().Foreground(Yellow)
	noticeStyle   = lipgloss.NewStyle().Foreground(Red)
	spinnerStyle  = lipgloss.NewStyle().Foreground(Accent)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Accent).
			Padding(0, 1)
)

// ConfigureColors включает цвета по возможностям терминала или отключает их.
func ConfigureColors(enabled bool) {
	if enabled {
		lipgloss.SetColorProfile(termenv.ColorProfile())
		return
	}
	lipgloss.SetColorProfile(termenv.Ascii)
}

// categoryStyle — стиль метки категории с её цветом.
func categoryStyle(color string) lipgloss.Style {
	if color == "" {
		return mutedStyle
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

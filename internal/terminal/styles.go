package terminal

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Lin-Jiong-HDU/nlsh/internal/session"
)

// Dracula palette
var (
	colorForeground = lipgloss.Color("#f8f8f2")
	colorComment    = lipgloss.Color("#6272a4")
	colorCyan       = lipgloss.Color("#8be9fd")
	colorGreen      = lipgloss.Color("#50fa7b")
	colorOrange     = lipgloss.Color("#ffb86c")
	colorPink       = lipgloss.Color("#ff79c6")
	colorPurple     = lipgloss.Color("#bd93f9")
	colorRed        = lipgloss.Color("#ff5555")
	colorYellow     = lipgloss.Color("#f1fa8c")
)

var (
	infoStyle     = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	warningStyle  = lipgloss.NewStyle().Foreground(colorOrange).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	successStyle  = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	commandStyle  = lipgloss.NewStyle().Foreground(colorYellow)
	commentStyle  = lipgloss.NewStyle().Foreground(colorComment)
	thinkingStyle = lipgloss.NewStyle().Foreground(colorPurple).Italic(true)
	outputStyle   = lipgloss.NewStyle().Foreground(colorForeground)
	titleStyle    = lipgloss.NewStyle().Foreground(colorPink).Bold(true)
	optionStyle   = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPurple).
			Padding(0, 1)
)

func promptStyle(m session.Mode) lipgloss.Style {
	switch m {
	case session.Expert:
		return lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	case session.Safe:
		return lipgloss.NewStyle().Foreground(colorGreen)
	}
	return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
}

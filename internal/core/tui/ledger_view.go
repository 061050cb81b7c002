package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Lin-Jiong-HDU/nlsh/internal/core/backup"
)

const timeLayout = "2006-01-02 15:04:05"

// Styles
var (
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	subtleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	detailStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("235")).
			Padding(0, 1).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("241")).
			MarginTop(1)
)

func renderLedger(m model) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(" nlsh backups ") + "\n\n")

	if len(m.entries) == 0 {
		b.WriteString(subtleStyle.Render("No backups found.") + "\n")
	}
	for i, e := range m.entries {
		b.WriteString(renderEntry(e, i, i == m.cursor) + "\n")
	}

	if m.showDetails && m.cursor < len(m.entries) {
		b.WriteString("\n" + renderDetails(m.entries[m.cursor]) + "\n")
	}

	if m.last != nil {
		style := successStyle
		if !m.last.OK() {
			style = errorStyle
		}
		b.WriteString("\n" + style.Render(m.last.Message) + "\n")
	}

	content := b.String()
	footer := "\n" + statusBarStyle.Render(m.help.View(m.keys)) + "\n"

	if m.height > 0 {
		if pad := m.height - lipgloss.Height(content) - lipgloss.Height(footer); pad > 0 {
			content += strings.Repeat("\n", pad)
		}
	}
	return content + footer
}

func renderEntry(e backup.Entry, index int, selected bool) string {
	cursor := " "
	name := e.Filename
	if selected {
		cursor = ">"
		name = selectedStyle.Render(name)
	}
	line := fmt.Sprintf("%s %s  %s", cursor, name, subtleStyle.Render(e.Timestamp.Format(timeLayout)))
	if index == 0 {
		line += " " + successStyle.Render("(next undo)")
	}
	return line
}

func renderDetails(e backup.Entry) string {
	return detailStyle.Render(strings.Join([]string{
		"File:     " + e.Filename,
		"Original: " + e.OriginalPath,
		"Saved:    " + e.Timestamp.Format(timeLayout),
		"Blob:     " + e.ID,
	}, "\n"))
}

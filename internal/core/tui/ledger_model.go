package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Lin-Jiong-HDU/nlsh/internal/core/backup"
)

// model is the Bubble Tea model for the backup browser
type model struct {
	ledger      Ledger
	entries     []backup.Entry // newest first
	cursor      int
	keys        keyMap
	help        help.Model
	showDetails bool
	restoring   bool
	last        *backup.Outcome
	width       int
	height      int
}

// NewModel creates a browser over ledger.
func NewModel(ledger Ledger) tea.Model {
	m := model{ledger: ledger, keys: defaultKeyMap(), help: help.New()}
	m.reload()
	return m
}

// Run shows the browser until the user quits. It returns the restores
// performed, oldest first.
func Run(ledger Ledger) ([]backup.Outcome, error) {
	rec := &recordingLedger{Ledger: ledger}
	if _, err := tea.NewProgram(NewModel(rec), tea.WithAltScreen()).Run(); err != nil {
		return rec.outcomes, err
	}
	return rec.outcomes, nil
}

type recordingLedger struct {
	Ledger
	outcomes []backup.Outcome
}

func (r *recordingLedger) RestoreLast() backup.Outcome {
	out := r.Ledger.RestoreLast()
	r.outcomes = append(r.outcomes, out)
	return out
}

func (m *model) reload() {
	entries := m.ledger.Entries()
	m.entries = make([]backup.Entry, len(entries))
	for i, e := range entries {
		m.entries[len(entries)-1-i] = e
	}
	if m.cursor >= len(m.entries) {
		m.cursor = max(len(m.entries)-1, 0)
	}
}

// Init initializes the model
func (m model) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case RestoredMsg:
		out := msg.Outcome
		m.last = &out
		m.restoring = false
		m.reload()
		return m, nil
	}
	return m, nil
}

func (m model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Details):
		m.showDetails = !m.showDetails
	case key.Matches(msg, m.keys.Undo):
		if m.restoring {
			return m, nil
		}
		m.restoring = true
		ledger := m.ledger
		return m, func() tea.Msg {
			return RestoredMsg{Outcome: ledger.RestoreLast()}
		}
	}
	return m, nil
}

// View renders the UI
func (m model) View() string {
	return renderLedger(m)
}

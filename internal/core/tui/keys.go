package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap defines key bindings for the backup browser
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Undo    key.Binding
	Details key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the status bar
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Undo, k.Details, k.Help, k.Quit}
}

// FullHelp returns all key bindings
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Undo, k.Details},
		{k.Help, k.Quit},
	}
}

// defaultKeyMap creates the default key bindings
func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Undo: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "restore newest"),
		),
		Details: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q/esc", "quit"),
		),
	}
}

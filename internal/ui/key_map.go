package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	open  key.Binding
	login key.Binding
	help  key.Binding
	quit  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		open:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open artwork")),
		login: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "log in")),
		help:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.open, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.open, k.login},
		{k.help, k.quit},
	}
}

package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the viewer's own key bindings. Everything else is handed to
// the protection engine.
type keyMap struct {
	Quit    key.Binding
	Dismiss key.Binding
	Help    key.Binding
}

var keys = keyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q/esc", "close")),
	Dismiss: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "dismiss")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

package tui

import "github.com/charmbracelet/bubbles/key"

type global struct {
	Quit key.Binding
}

var keys = global{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
	),
}

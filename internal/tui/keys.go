package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings of the overwrite prompt.
type KeyMap struct {
	Left      key.Binding
	Right     key.Binding
	Enter     key.Binding
	Overwrite key.Binding
	Cancel    key.Binding
}

// DefaultKeyMap returns the default keybinding configuration.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h", "shift+tab"),
			key.WithHelp("←/h", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l", "tab"),
			key.WithHelp("→/l", "right"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "choose"),
		),
		Overwrite: key.NewBinding(
			key.WithKeys("o", "y"),
			key.WithHelp("o", "overwrite"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("c", "n", "esc", "q", "ctrl+c"),
			key.WithHelp("c/esc", "cancel"),
		),
	}
}

// ShortHelp returns the bindings shown under the prompt.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Overwrite, k.Cancel, k.Enter}
}

package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	volumeUp   key.Binding
	volumeDown key.Binding
	speedUp    key.Binding
	speedDown  key.Binding
	toggle     key.Binding
	next       key.Binding
	previous   key.Binding
	shuffle    key.Binding
	playlists  key.Binding
	favorites  key.Binding
	status     key.Binding
	enter      key.Binding
	back       key.Binding
	help       key.Binding
	quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		volumeUp:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "volume up")),
		volumeDown: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "volume down")),
		speedUp:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "faster")),
		speedDown:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "slower")),
		toggle:     key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "pause")),
		next:       key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/→", "next")),
		previous:   key.NewBinding(key.WithKeys("b", "left"), key.WithHelp("b/←", "previous")),
		shuffle:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "shuffle")),
		playlists:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "playlists")),
		favorites:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "liked tracks")),
		status:     key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "status")),
		enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "load")),
		back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.toggle, k.next, k.previous, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.volumeUp, k.volumeDown, k.speedUp, k.speedDown},
		{k.toggle, k.next, k.previous, k.shuffle},
		{k.playlists, k.favorites, k.status},
		{k.help, k.quit},
	}
}

package tui

import "charm.land/bubbles/v2/key"

// keyMap represents key map data used by this package.
type keyMap struct {
	quit       key.Binding
	toggleHelp key.Binding
	moveUp     key.Binding
	moveDown   key.Binding
	choose     key.Binding
	back       key.Binding
	newName    key.Binding
	cycleTab   key.Binding
	save       key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveUp:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		moveDown:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		choose:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "choose")),
		back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		newName:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new character")),
		cycleTab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		save:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save now")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.choose, k.cycleTab, k.save, k.quit}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.moveUp, k.moveDown, k.choose, k.back},
		{k.newName, k.cycleTab, k.save, k.toggleHelp, k.quit},
	}
}

package tui

import "github.com/charmbracelet/bubbles/key"

func bind(helpKey, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpKey, desc))
}

// StandardKeys are shared by every list screen.
type StandardKeys struct {
	Quit   key.Binding
	Select key.Binding
	Filter key.Binding
}

func NewStandardKeys() StandardKeys {
	return StandardKeys{
		Quit:   bind("q", "quit", "q", "esc", "ctrl+c"),
		Select: bind("enter", "select", "enter"),
		Filter: bind("/", "filter", "/"),
	}
}

// BrowserKeys adds the record actions of the book browser. Enter prints
// the record's link rather than selecting it.
type BrowserKeys struct {
	StandardKeys
	Details  key.Binding
	Open     key.Binding
	Download key.Binding
}

func NewBrowserKeys() BrowserKeys {
	std := NewStandardKeys()
	std.Select = bind("enter", "show link", "enter")
	return BrowserKeys{
		StandardKeys: std,
		Details:      bind("tab", "details", "tab"),
		Open:         bind("o", "open", "o"),
		Download:     bind("d", "download", "d"),
	}
}

// Package delegate adapts a plain render function to list.ItemDelegate.
package delegate

import (
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// RenderFunc draws the item at index.
type RenderFunc func(w io.Writer, m list.Model, index int, item list.Item)

// Option tweaks a Func delegate.
type Option func(*Func)

// WithSpacing puts n blank lines between items.
func WithSpacing(n int) Option {
	return func(d *Func) { d.spacing = n }
}

// WithHeight sets the number of lines each item occupies.
func WithHeight(n int) Option {
	return func(d *Func) { d.height = n }
}

// Func is a stateless delegate; items are one line tall unless WithHeight
// says otherwise.
type Func struct {
	render  RenderFunc
	height  int
	spacing int
}

// New wraps render.
func New(render RenderFunc, opts ...Option) Func {
	d := Func{render: render, height: 1}
	for _, o := range opts {
		o(&d)
	}
	return d
}

func (d Func) Height() int { return d.height }
func (d Func) Spacing() int { return d.spacing }
func (d Func) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d Func) Render(w io.Writer, m list.Model, index int, item list.Item) {
	if d.render != nil {
		d.render(w, m, index, item)
	}
}

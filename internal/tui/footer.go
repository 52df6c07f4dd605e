package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

const flashDuration = 500 * time.Millisecond

// flashDoneMsg ends a footer flash.
type flashDoneMsg struct{}

// flash schedules the end of a footer highlight. The model records which
// key to highlight before returning it.
func flash() tea.Cmd {
	return tea.Tick(flashDuration, func(time.Time) tea.Msg { return flashDoneMsg{} })
}

var footerDim = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

// renderFooter lays out the help of each binding on one line. The binding
// whose help key equals flashed is highlighted. Lines wider than width are
// cut with an ellipsis.
func renderFooter(width int, flashed string, bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		label := h.Key + " " + h.Desc
		if flashed != "" && h.Key == flashed {
			parts = append(parts, StyleHighlight.Render("[ "+label+" ]"))
			continue
		}
		parts = append(parts, footerDim.Render(label))
	}
	line := " " + strings.Join(parts, footerDim.Render(" • "))
	if width > 0 && xansi.StringWidth(line) > width {
		line = xansi.Truncate(line, width, "…")
	}
	return line
}

package tui

import "github.com/charmbracelet/lipgloss"

// Palette, named by role. Light values keep contrast on pale terminals.
var (
	ColorText   = lipgloss.AdaptiveColor{Light: "#262626", Dark: "#FFFFFF"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#767676", Dark: "#808080"}
	ColorAccent = lipgloss.AdaptiveColor{Light: "#D7AF00", Dark: "#FFD700"}
	ColorOK     = lipgloss.AdaptiveColor{Light: "#00AF00", Dark: "#00D700"}
	ColorBad    = lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F5F"}
	ColorMeta   = lipgloss.AdaptiveColor{Light: "#00AFAF", Dark: "#00D7D7"}
	ColorFrame  = lipgloss.AdaptiveColor{Light: "#008787", Dark: "#5FAFAF"}
)

func fg(c lipgloss.TerminalColor) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

var (
	StyleNormal    = fg(ColorText)
	StyleHeader    = fg(ColorText).Bold(true)
	StyleHighlight = fg(ColorAccent).Bold(true)
	StyleHelp      = fg(ColorMuted)
	StyleOK        = fg(ColorOK)
	StyleError     = fg(ColorBad)
	StyleMeta      = fg(ColorMeta)

	// StyleBorder frames the hub and the search form.
	StyleBorder = fg(ColorMuted).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted)
)

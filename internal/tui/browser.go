package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"github.com/blackwell-systems/bookpipe/internal/catalog"
	"github.com/blackwell-systems/bookpipe/internal/tui/delegate"
)

// BrowserAction represents an action requested from the browser
type BrowserAction string

const (
	ActionNone     BrowserAction = ""
	ActionShowLink BrowserAction = "link"
	ActionOpen     BrowserAction = "open"
	ActionDownload BrowserAction = "download"
)

// BrowserResult holds the result of a browser session
type BrowserResult struct {
	Action BrowserAction
	Record *catalog.BookRecord
}

// BrowserModel is the record browser.
type BrowserModel struct {
	list        list.Model
	keys        BrowserKeys
	showDetails bool
	width       int
	height      int
	flashed     string
	quitting    bool
	action      BrowserAction
	selected    *catalog.BookRecord
}

func (m BrowserModel) Init() tea.Cmd {
	return nil
}

func (m BrowserModel) choose(action BrowserAction) (BrowserModel, tea.Cmd) {
	item, ok := m.list.SelectedItem().(RecordItem)
	if !ok {
		return m, nil
	}
	rec := item.Record
	m.action = action
	m.selected = &rec
	m.quitting = true
	return m, tea.Quit
}

func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case flashDoneMsg:
		m.flashed = ""
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Select):
			return m.choose(ActionShowLink)

		case key.Matches(msg, m.keys.Open):
			if item, ok := m.list.SelectedItem().(RecordItem); ok && item.Record.LocalPath != "" {
				return m.choose(ActionOpen)
			}
			m.flashed = "o"
			return m, flash()

		case key.Matches(msg, m.keys.Download):
			if item, ok := m.list.SelectedItem().(RecordItem); ok && item.Record.Status == catalog.StatusPending {
				return m.choose(ActionDownload)
			}
			m.flashed = "d"
			return m, flash()

		case key.Matches(msg, m.keys.Details):
			m.showDetails = !m.showDetails
			m.flashed = "tab"
			m.resize()
			return m, flash()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// resize fits the list into the box, leaving room for the details pane.
func (m *BrowserModel) resize() {
	if m.width == 0 {
		return
	}
	innerWidth := m.width - (4 * 2) - 2
	innerHeight := m.height - (2 * 2) - 2 - 2 // footer and divider
	if innerWidth < 60 {
		innerWidth = 60
	}
	if innerHeight < 8 {
		innerHeight = 8
	}
	listWidth := innerWidth
	if m.showDetails {
		listWidth = innerWidth - m.detailsWidth() - 1
	}
	m.list.SetSize(listWidth, innerHeight)
}

func (m BrowserModel) detailsWidth() int {
	w := ((m.width - 2) * 4) / 10
	if w < 30 {
		w = 30
	}
	return w
}

func (m BrowserModel) renderDetailsPane() string {
	item, ok := m.list.SelectedItem().(RecordItem)
	if !ok {
		return ""
	}
	rec := item.Record

	width := m.detailsWidth()
	const labelWidth = 12
	maxText := width - 2 - labelWidth
	if maxText < 10 {
		maxText = 10
	}

	var s strings.Builder
	s.WriteString(StyleHeader.Render("Book Details"))
	s.WriteString("\n\n")

	field := func(label, value string) {
		if value == "" {
			return
		}
		s.WriteString(StyleHighlight.Render(fmt.Sprintf("%-*s", labelWidth, label+":")))
		s.WriteString(xansi.Truncate(value, maxText, "…"))
		s.WriteString("\n")
	}
	field("ID", rec.ID)
	field("Title", rec.Title)
	field("Authors", rec.AuthorLine())
	field("Year", rec.Year)
	field("Publisher", rec.Publisher)
	field("Language", rec.Language)
	field("Format", rec.Extension)
	field("Size", rec.Size)
	field("Rating", rec.Rating)
	field("ISBN", rec.ISBN)
	field("Query", rec.SearchQuery)
	s.WriteString("\n")
	s.WriteString(StyleHighlight.Render(fmt.Sprintf("%-*s", labelWidth, "Status:")))
	s.WriteString(statusStyle(rec).Render(statusLabel(rec)))
	s.WriteString("\n")
	field("Local", rec.LocalPath)
	field("Cloud", rec.DriveLink)
	field("Updated", rec.UpdatedAt)

	return lipgloss.NewStyle().Width(width).Padding(0, 1).Render(s.String())
}

var navigateHelp = key.NewBinding(key.WithHelp("↑/↓", "navigate"))

func (m BrowserModel) footer(width int) string {
	k := m.keys
	return renderFooter(width, m.flashed, navigateHelp, k.Filter, k.Select, k.Open, k.Download, k.Details, k.Quit)
}

func (m BrowserModel) View() string {
	if m.quitting {
		return ""
	}

	outerStyle := lipgloss.NewStyle().Padding(2, 4)
	masterStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorFrame)

	dividerWidth := 40
	if m.width > 0 && m.height > 0 {
		innerWidth := m.width - (4 * 2) - 2
		innerHeight := m.height - (2 * 2) - 2
		if innerWidth < 60 {
			innerWidth = 60
		}
		if innerHeight < 10 {
			innerHeight = 10
		}
		masterStyle = masterStyle.Width(innerWidth).Height(innerHeight)
		dividerWidth = innerWidth
	}

	mainContent := m.list.View()
	if m.showDetails {
		listStyle := lipgloss.NewStyle().
			BorderRight(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(ColorFrame)
		mainContent = lipgloss.JoinHorizontal(lipgloss.Top, listStyle.Render(mainContent), m.renderDetailsPane())
	}

	divider := lipgloss.NewStyle().
		Foreground(ColorFrame).
		Render(strings.Repeat("─", dividerWidth))

	content := lipgloss.JoinVertical(lipgloss.Left, mainContent, divider, m.footer(dividerWidth))
	return outerStyle.Render(masterStyle.Render(content))
}

func newBrowser(title string, records []RecordItem) BrowserModel {
	items := make([]list.Item, len(records))
	for i, r := range records {
		items[i] = r
	}

	keys := NewBrowserKeys()
	l := list.New(items, delegate.New(renderRecordItem), 0, 0)
	l.Title = title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.Styles.Title = StyleHeader
	l.Styles.PaginationStyle = StyleHelp
	l.Styles.HelpStyle = StyleHelp

	return BrowserModel{list: l, keys: keys}
}

// RunBrowser launches the interactive record browser.
func RunBrowser(title string, records []RecordItem) (*BrowserResult, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no books to display")
	}

	p := tea.NewProgram(newBrowser(title, records), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("running TUI: %w", err)
	}

	if fm, ok := finalModel.(BrowserModel); ok {
		return &BrowserResult{Action: fm.action, Record: fm.selected}, nil
	}
	return &BrowserResult{Action: ActionNone}, nil
}

package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/blackwell-systems/bookpipe/internal/tui/delegate"
)

// MenuItem is one hub action. Count, when positive, is shown as a badge
// with the number of records the action would work on.
type MenuItem struct {
	Key         string
	Label       string
	Description string
	Count       int
}

// FilterValue implements list.Item
func (m MenuItem) FilterValue() string {
	return m.Label + " " + m.Description
}

// HubContext holds the store summary shown in the hub header and used to
// hide actions that have nothing to work on.
type HubContext struct {
	BookCount       int
	PendingCount    int
	UploadableCount int
	CloudEnabled    bool
	ZlibConfigured  bool
}

// menuItems defines the menu in pipeline order
var menuItems = []MenuItem{
	{Key: "search", Label: "Search Books", Description: "Find books and add them as pending"},
	{Key: "download", Label: "Download Pending", Description: "Fetch the next batch of pending books"},
	{Key: "upload", Label: "Upload to Cloud", Description: "Push downloaded books and share links"},
	{Key: "index", Label: "Generate Catalog", Description: "Write the static HTML catalog"},
	{Key: "run", Label: "Full Workflow", Description: "Search, download, upload and render in one go"},
	{Key: "books", Label: "Browse Books", Description: "View and filter tracked records"},
	{Key: "status", Label: "Statistics", Description: "Counts by status, language and format"},
	{Key: "retry", Label: "Retry Failed", Description: "Move failed records back to pending"},
	{Key: "quit", Label: "Quit", Description: "Exit bookpipe"},
}

// visibleItems drops actions that cannot do anything in the given context.
func visibleItems(ctx HubContext) []MenuItem {
	var items []MenuItem
	for _, item := range menuItems {
		switch item.Key {
		case "search", "run":
			if !ctx.ZlibConfigured {
				continue
			}
		case "download":
			if !ctx.ZlibConfigured || ctx.PendingCount == 0 {
				continue
			}
			item.Count = ctx.PendingCount
		case "upload":
			if !ctx.CloudEnabled || ctx.UploadableCount == 0 {
				continue
			}
			item.Count = ctx.UploadableCount
		case "books":
			if ctx.BookCount == 0 {
				continue
			}
			item.Count = ctx.BookCount
		case "retry":
			if ctx.BookCount == 0 {
				continue
			}
		}
		items = append(items, item)
	}
	return items
}

func renderMenuItem(w io.Writer, m list.Model, index int, item list.Item) {
	mi, ok := item.(MenuItem)
	if !ok {
		return
	}

	label := mi.Label
	if mi.Count > 0 {
		label = fmt.Sprintf("%s (%d)", label, mi.Count)
	}
	line := fmt.Sprintf("%-24s %s", label, StyleHelp.Render(mi.Description))

	prefix, style := "  ", StyleNormal
	if index == m.Index() {
		prefix, style = "› ", StyleHighlight
	}
	_, _ = fmt.Fprint(w, style.Render(prefix+line))
}

type hubModel struct {
	list    list.Model
	keys    StandardKeys
	context HubContext
	action  string
}

func (m hubModel) Init() tea.Cmd { return nil }

func (m hubModel) choose(action string) (tea.Model, tea.Cmd) {
	m.action = action
	return m, tea.Quit
}

func (m hubModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		if key.Matches(msg, m.keys.Quit) {
			return m.choose("quit")
		}
		if key.Matches(msg, m.keys.Select) {
			if item, ok := m.list.SelectedItem().(MenuItem); ok {
				return m.choose(item.Key)
			}
		}
	case tea.WindowSizeMsg:
		// outer padding 2x4, inner padding 1+2, header and status lines
		h, v := StyleBorder.GetFrameSize()
		m.list.SetSize(max(msg.Width-8-3-h, 40), max(msg.Height-4-v-4, 5))
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m hubModel) statusLine() string {
	c := m.context
	if c.BookCount == 0 {
		return "  no books tracked yet"
	}
	s := fmt.Sprintf("  %d books · %d pending", c.BookCount, c.PendingCount)
	if c.CloudEnabled {
		s += fmt.Sprintf(" · %d to upload", c.UploadableCount)
	}
	return s
}

var (
	hubOuter  = lipgloss.NewStyle().Padding(2, 4)
	hubInner  = lipgloss.NewStyle().Padding(0, 2, 0, 1)
	hubBanner = lipgloss.NewStyle().Bold(true).Foreground(ColorFrame).Padding(0, 1)
)

func (m hubModel) View() string {
	if m.action != "" {
		return ""
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		hubBanner.Render("bookpipe - Book Pipeline"),
		StyleHelp.Render(m.statusLine()),
		m.list.View(),
	)
	return hubOuter.Render(StyleBorder.Render(hubInner.Render(content)))
}

// RunHub launches the interactive hub menu.
// Returns the selected action key ("quit" when the user leaves).
func RunHub(ctx HubContext) (string, error) {
	var items []list.Item
	for _, item := range visibleItems(ctx) {
		items = append(items, item)
	}

	keys := NewStandardKeys()
	d := delegate.New(renderMenuItem, delegate.WithSpacing(1))
	l := list.New(items, d, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.HelpStyle = StyleHelp
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Select}
	}

	final, err := tea.NewProgram(hubModel{list: l, keys: keys, context: ctx}, tea.WithAltScreen()).Run()
	if err != nil {
		return "", fmt.Errorf("running hub: %w", err)
	}
	if fm, ok := final.(hubModel); ok && fm.action != "" {
		return fm.action, nil
	}
	return "quit", nil
}

package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SearchFormData holds the query collected from the user.
type SearchFormData struct {
	Query string
	Count int
}

type searchFormModel struct {
	inputs   []textinput.Model
	focused  int
	title    string
	result   *SearchFormData
	err      error
	canceled bool
}

const (
	searchFieldQuery = iota
	searchFieldCount
)

func newSearchForm(title string, defaultCount int) searchFormModel {
	m := searchFormModel{
		inputs: make([]textinput.Model, 2),
		title:  title,
	}

	const inputWidth = 50

	m.inputs[searchFieldQuery] = textinput.New()
	m.inputs[searchFieldQuery].Placeholder = "e.g., python programming"
	m.inputs[searchFieldQuery].Focus()
	m.inputs[searchFieldQuery].CharLimit = 200
	m.inputs[searchFieldQuery].Width = inputWidth
	m.inputs[searchFieldQuery].Prompt = ""

	m.inputs[searchFieldCount] = textinput.New()
	m.inputs[searchFieldCount].Placeholder = strconv.Itoa(defaultCount)
	m.inputs[searchFieldCount].SetValue(strconv.Itoa(defaultCount))
	m.inputs[searchFieldCount].CharLimit = 4
	m.inputs[searchFieldCount].Width = 6
	m.inputs[searchFieldCount].Prompt = ""

	return m
}

func (m searchFormModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m searchFormModel) submit() (searchFormModel, bool) {
	query := strings.TrimSpace(m.inputs[searchFieldQuery].Value())
	if query == "" {
		m.err = fmt.Errorf("query is required")
		return m, false
	}
	count, err := strconv.Atoi(strings.TrimSpace(m.inputs[searchFieldCount].Value()))
	if err != nil || count <= 0 {
		m.err = fmt.Errorf("count must be a positive number")
		return m, false
	}
	m.result = &SearchFormData{Query: query, Count: count}
	return m, true
}

func (m searchFormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			m.canceled = true
			return m, tea.Quit

		case "enter":
			var done bool
			if m, done = m.submit(); done {
				return m, tea.Quit
			}
			return m, nil

		case "tab", "shift+tab", "up", "down":
			m.inputs[m.focused].Blur()
			m.focused = (m.focused + 1) % len(m.inputs)
			return m, m.inputs[m.focused].Focus()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m searchFormModel) View() string {
	if m.result != nil || m.canceled {
		return ""
	}

	var b strings.Builder
	b.WriteString(StyleHeader.Render(m.title))
	b.WriteString("\n\n")

	labels := []string{"Query", "Results"}
	for i, in := range m.inputs {
		label := fmt.Sprintf("%-8s", labels[i])
		if i == m.focused {
			label = StyleHighlight.Render(label)
		} else {
			label = StyleNormal.Render(label)
		}
		b.WriteString(label + " " + in.View() + "\n")
	}

	if m.err != nil {
		b.WriteString("\n" + StyleError.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + StyleHelp.Render("enter search · tab next field · esc cancel"))

	return lipgloss.NewStyle().Padding(1, 2).Render(StyleBorder.Padding(1, 2).Render(b.String()))
}

// RunSearchForm asks for a search query and result count. It returns nil
// when the user cancels.
func RunSearchForm(title string, defaultCount int) (*SearchFormData, error) {
	p := tea.NewProgram(newSearchForm(title, defaultCount))
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("running form: %w", err)
	}
	fm, ok := finalModel.(searchFormModel)
	if !ok || fm.canceled {
		return nil, nil
	}
	return fm.result, nil
}

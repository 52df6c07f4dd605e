package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
)

// ProgressEvent is one update from a running batch. Start events carry
// Index, Total and Title; byte events carry Read and Size; finish events
// set Done with Line holding the outcome.
type ProgressEvent struct {
	Index int
	Total int
	Title string

	Read int64
	Size int64

	Done bool
	OK   bool
	Line string
}

// ErrCancelled is returned when the user aborts a screen with ctrl+c.
var ErrCancelled = errors.New("cancelled by user")

type eventMsg struct {
	ev     ProgressEvent
	closed bool
}

const (
	maxLogLines = 6
	maxBarWidth = 80
)

type progressModel struct {
	bar    progress.Model
	label  string
	events <-chan ProgressEvent

	index, total int
	title        string
	read, size   int64
	ok, failed   int
	log          []string

	done      bool
	cancelled bool
}

// nextEvent blocks on the producer in a command goroutine; the program keeps
// handling keys meanwhile.
func nextEvent(ch <-chan ProgressEvent) tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-ch; ok {
			return eventMsg{ev: ev}
		}
		return eventMsg{closed: true}
	}
}

func (m progressModel) Init() tea.Cmd { return nextEvent(m.events) }

func (m progressModel) apply(ev ProgressEvent) progressModel {
	if ev.Done {
		mark := StyleOK.Render("✓")
		if ev.OK {
			m.ok++
		} else {
			m.failed++
			mark = StyleError.Render("✗")
		}
		m.log = append(m.log, mark+" "+ev.Line)
		if extra := len(m.log) - maxLogLines; extra > 0 {
			m.log = m.log[extra:]
		}
		return m
	}
	if ev.Title != "" {
		m.index, m.total, m.title = ev.Index, ev.Total, ev.Title
		m.read, m.size = 0, 0
		return m
	}
	m.read, m.size = ev.Read, ev.Size
	return m
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		if msg.closed {
			m.done = true
			return m, tea.Quit
		}
		return m.apply(msg.ev), nextEvent(m.events)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.done, m.cancelled = true, true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-20, maxBarWidth)
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(StyleHeader.Render(m.label))
	if m.ok+m.failed > 0 {
		b.WriteString(StyleHelp.Render(fmt.Sprintf("  %d ok · %d failed", m.ok, m.failed)))
	}
	b.WriteByte('\n')
	for _, line := range m.log {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if m.title == "" {
		b.WriteString(StyleHelp.Render("waiting…") + "\n")
		return b.String()
	}

	fmt.Fprintf(&b, "[%d/%d] %s\n", m.index+1, m.total, m.title)
	var frac float64
	if m.size > 0 {
		frac = float64(m.read) / float64(m.size)
	}
	b.WriteString(m.bar.ViewAs(frac))
	b.WriteByte('\n')
	b.WriteString(transferred(m.read, m.size))
	b.WriteByte('\n')
	return b.String()
}

func transferred(read, size int64) string {
	if size <= 0 {
		return humanize.Bytes(uint64(read))
	}
	return fmt.Sprintf("%s / %s (%d%%)", humanize.Bytes(uint64(read)), humanize.Bytes(uint64(size)), read*100/size)
}

// ShowProgress renders batch progress until events is closed. The producer
// must close the channel when it finishes. On ErrCancelled the caller is
// responsible for stopping the producer.
func ShowProgress(label string, events <-chan ProgressEvent) error {
	m := progressModel{
		bar:    progress.New(progress.WithDefaultGradient()),
		label:  label,
		events: events,
	}
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(progressModel); ok && fm.cancelled {
		return ErrCancelled
	}
	return nil
}

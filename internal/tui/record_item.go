package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"github.com/blackwell-systems/bookpipe/internal/catalog"
)

// RecordItem is one store record in the browser list.
type RecordItem struct {
	Record catalog.BookRecord
}

// FilterValue returns a string used for filtering in the list
func (r RecordItem) FilterValue() string {
	rec := r.Record
	return strings.Join([]string{rec.ID, rec.Title, rec.AuthorLine(), rec.Language, rec.Extension, string(rec.Status)}, " ")
}

// RecordItems wraps records for RunBrowser.
func RecordItems(records []catalog.BookRecord) []RecordItem {
	items := make([]RecordItem, len(records))
	for i, r := range records {
		items[i] = RecordItem{Record: r}
	}
	return items
}

// Column width constraints
const (
	minTitleWidth  = 12
	maxTitleWidth  = 48
	minAuthorWidth = 8
	maxAuthorWidth = 26
	langWidth      = 8
	formatWidth    = 5
	statusWidth    = 11
	columnGap      = 1
)

// computeColumnWidths splits the space left after the fixed columns
// between title and authors.
func computeColumnWidths(totalWidth int) (titleW, authorW int) {
	prefix := 2
	gaps := columnGap * 4
	usable := totalWidth - prefix - gaps - langWidth - formatWidth - statusWidth
	if usable < minTitleWidth+minAuthorWidth {
		return minTitleWidth, minAuthorWidth
	}
	titleW = usable * 60 / 100
	if titleW > maxTitleWidth {
		titleW = maxTitleWidth
	}
	authorW = usable - titleW
	if authorW > maxAuthorWidth {
		authorW = maxAuthorWidth
	}
	if titleW < minTitleWidth {
		titleW = minTitleWidth
	}
	if authorW < minAuthorWidth {
		authorW = minAuthorWidth
	}
	return titleW, authorW
}

// padOrTruncate pads s to exactly width cells, truncating with "…" if
// necessary. Widths are measured in terminal cells so wide runes align.
func padOrTruncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if xansi.StringWidth(s) > width {
		s = xansi.Truncate(s, width, "…")
	}
	if n := xansi.StringWidth(s); n < width {
		s += strings.Repeat(" ", width-n)
	}
	return s
}

// statusStyle picks the color for a status column.
func statusStyle(rec catalog.BookRecord) lipgloss.Style {
	switch {
	case rec.Uploaded():
		return StyleOK.Bold(true)
	case rec.Status == catalog.StatusCompleted:
		return StyleOK
	case rec.Status == catalog.StatusError:
		return StyleError
	case rec.Status == catalog.StatusDownloading:
		return StyleHighlight
	default:
		return StyleHelp
	}
}

// statusLabel is the status column text; uploaded records say so.
func statusLabel(rec catalog.BookRecord) string {
	if rec.Uploaded() {
		return "✓ uploaded"
	}
	return string(rec.Status)
}

// renderRecordItem renders a record in the browser list with fixed-width columns.
func renderRecordItem(w io.Writer, m list.Model, index int, item list.Item) {
	ri, ok := item.(RecordItem)
	if !ok {
		return
	}
	rec := ri.Record

	listWidth := m.Width()
	if listWidth <= 0 {
		listWidth = 80
	}
	titleW, authorW := computeColumnWidths(listWidth)
	gap := strings.Repeat(" ", columnGap)

	isCursor := index == m.Index()
	prefix := "  "
	if isCursor {
		prefix = StyleHighlight.Render("›") + " "
	}

	titleCol := padOrTruncate(rec.Title, titleW)
	authorCol := padOrTruncate(rec.AuthorLine(), authorW)
	langCol := padOrTruncate(rec.Language, langWidth)
	formatCol := padOrTruncate(rec.Extension, formatWidth)
	statusCol := padOrTruncate(statusLabel(rec), statusWidth)

	var titleStyled, authorStyled string
	if isCursor {
		titleStyled = StyleHighlight.Render(titleCol)
		authorStyled = StyleHighlight.Faint(true).Render(authorCol)
	} else {
		titleStyled = StyleNormal.Render(titleCol)
		authorStyled = StyleHelp.Render(authorCol)
	}

	line := prefix + titleStyled + gap + authorStyled + gap +
		StyleMeta.Render(langCol) + gap + StyleMeta.Render(formatCol) + gap +
		statusStyle(rec).Render(statusCol)
	_, _ = fmt.Fprint(w, line)
}

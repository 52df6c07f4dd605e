package render

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/blackwell-systems/bookpipe/internal/catalog"
)

// StatsPage renders the status, language and format breakdown as a
// standalone HTML page.
func StatsPage(w io.Writer, stats catalog.Statistics, opts Options) error {
	var s strings.Builder
	title := html.EscapeString(opts.title() + " Statistics")

	s.WriteString(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>` + title + `</title>
    <style>` + pageStyle + `    </style>
</head>
<body>
    <div class="content-wrapper">
        <header>
            <h1>📊 ` + title + `</h1>
            <div class="subtitle">` + countLabel(stats.TotalCount, "book") + `</div>
        </header>
`)
	writeStatCards(&s, stats)

	if opts.LibraryFiles > 0 {
		fmt.Fprintf(&s, `        <div class="section"><p class="subtitle">Local library: %s files, %s on disk</p></div>
`, humanize.Comma(int64(opts.LibraryFiles)), humanize.Bytes(uint64(opts.LibraryBytes)))
	}

	statusRows := make([]row, 0, len(catalog.Statuses))
	for _, st := range catalog.Statuses {
		statusRows = append(statusRows, row{st.String(), stats.StatusCounts[st]})
	}
	writeTable(&s, "By status", statusRows, stats.TotalCount)

	var langRows, extRows []row
	for _, l := range stats.Languages() {
		langRows = append(langRows, row{l, stats.LanguageCounts[l]})
	}
	for _, e := range stats.Extensions() {
		extRows = append(extRows, row{strings.ToUpper(e), stats.ExtensionCounts[e]})
	}
	writeTable(&s, "By language", langRows, stats.TotalCount)
	writeTable(&s, "By format", extRows, stats.TotalCount)

	s.WriteString(`    </div>
    <footer>Generated ` + html.EscapeString(opts.generatedAt().Format("2006-01-02 15:04")) + `</footer>
</body>
</html>
`)
	_, err := io.WriteString(w, s.String())
	return err
}

type row struct {
	label string
	count int
}

func writeTable(s *strings.Builder, heading string, rows []row, total int) {
	s.WriteString(`        <div class="section">
            <h2>` + html.EscapeString(heading) + `</h2>
`)
	if len(rows) == 0 {
		s.WriteString(`            <p class="subtitle">No data</p>
        </div>
`)
		return
	}
	s.WriteString(`            <table>
                <tr><th></th><th>Books</th><th>Share</th></tr>
`)
	for _, r := range rows {
		share := 0.0
		if total > 0 {
			share = float64(r.count) * 100 / float64(total)
		}
		fmt.Fprintf(s, "                <tr><td>%s</td><td>%s</td><td>%.1f%%</td></tr>\n",
			html.EscapeString(r.label), humanize.Comma(int64(r.count)), share)
	}
	s.WriteString(`            </table>
        </div>
`)
}

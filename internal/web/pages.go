package web

import (
	"fmt"
	"html"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/blackwell-systems/bookpipe/internal/catalog"
)

const dashboardStyle = `
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               background: #1a1a1a; color: #e0e0e0; margin: 0; }
        nav { background: #1c2829; border-bottom: 2px solid #1b4e50; padding: 12px 20px; }
        nav a { color: #2ecfd4; margin-right: 18px; text-decoration: none; }
        nav .brand { color: #fb6820; font-weight: 700; }
        main { max-width: 1100px; margin: 20px auto; padding: 0 20px; }
        .cards { display: grid; grid-template-columns: repeat(auto-fill, minmax(180px, 1fr)); gap: 15px; margin-bottom: 20px; }
        .card { background: #1c2829; border: 1px solid #1e3a3c; border-radius: 8px; padding: 15px; }
        .value { font-size: 1.8rem; font-weight: 700; color: #2ecfd4; }
        .label { color: #888; font-size: 0.85rem; }
        form { display: inline-flex; gap: 8px; margin: 0 10px 10px 0; }
        input, button { padding: 8px 12px; border-radius: 6px; border: 1px solid #444; background: #2a2a2a; color: #e0e0e0; }
        button { background: #fb6820; border-color: #fb6820; color: #fff; cursor: pointer; }
        .badge { padding: 2px 8px; border-radius: 4px; font-size: 0.8rem; }
        .on { background: #1e4620; color: #4caf50; }
        .off { background: #4a2020; color: #e07070; }
        .warn { background: #4a3f10; color: #d4b106; }
        .message { background: #0d3536; padding: 10px 15px; border-radius: 6px; margin-bottom: 15px; }
        table { width: 100%; border-collapse: collapse; }
        th, td { text-align: left; padding: 8px; border-bottom: 1px solid #1e3a3c; }
        th { color: #888; font-weight: 500; }
        a { color: #2ecfd4; }
`

func layout(title, body string) string {
	var s strings.Builder
	s.WriteString(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>bookpipe: ` + html.EscapeString(title) + `</title>
    <style>` + dashboardStyle + `    </style>
</head>
<body>
    <nav>
        <a class="brand" href="/">📚 bookpipe</a>
        <a href="/books">Books</a>
        <a href="/stats">Statistics</a>
        <a href="/view-catalog">Catalog</a>
    </nav>
    <main>
`)
	s.WriteString(body)
	s.WriteString(`    </main>
</body>
</html>
`)
	return s.String()
}

func badge(on bool, yes, no string) string {
	if on {
		return `<span class="badge on">` + yes + `</span>`
	}
	return `<span class="badge off">` + no + `</span>`
}

func dashboard(st Status, stats catalog.Statistics, searchCount int) string {
	var s strings.Builder

	fmt.Fprintf(&s, `        <p>Z-Library %s &nbsp; Cloud %s</p>
`,
		badge(st.ZlibAuthenticated, "connected", "not connected"),
		badge(st.CloudConfigured, html.EscapeString(st.CloudBackend), "not configured"))

	if st.LastMessage != "" {
		fmt.Fprintf(&s, `        <div class="message">%s <span class="label">%s</span></div>
`, html.EscapeString(st.LastMessage), html.EscapeString(st.LastActivity))
	}

	s.WriteString(`        <div class="cards">
`)
	for _, c := range []struct {
		label string
		value int
	}{
		{"Total Books", stats.TotalCount},
		{"Pending", stats.StatusCounts[catalog.StatusPending]},
		{"Downloaded", stats.DownloadedCount},
		{"Errors", stats.StatusCounts[catalog.StatusError]},
		{"In Cloud", stats.BooksWithDriveLink},
	} {
		fmt.Fprintf(&s, `            <div class="card"><div class="value">%s</div><div class="label">%s</div></div>
`, humanize.Comma(int64(c.value)), c.label)
	}
	s.WriteString(`        </div>
`)

	fmt.Fprintf(&s, `        <div>
            <form method="post" action="/search">
                <input name="query" placeholder="Search books..." required>
                <input name="count" type="number" min="1" max="100" value="%d">
                <button>Search</button>
            </form>
            <form method="post" action="/download">
                <input name="limit" type="number" min="1" placeholder="batch">
                <button>Download pending</button>
            </form>
            <form method="post" action="/upload">
                <input name="limit" type="number" min="1" placeholder="batch">
                <button>Upload to cloud</button>
            </form>
            <form method="post" action="/generate-html"><button>Generate catalog</button></form>
        </div>
`, searchCount)
	return s.String()
}

func booksTable(books []catalog.BookRecord) string {
	var s strings.Builder
	fmt.Fprintf(&s, `        <h2>All Books (%s)</h2>
        <table>
            <tr><th>Title</th><th>Authors</th><th>Year</th><th>Format</th><th>Status</th><th>Links</th></tr>
`, humanize.Comma(int64(len(books))))

	for _, b := range books {
		class := "warn"
		switch b.Status {
		case catalog.StatusCompleted:
			class = "on"
		case catalog.StatusError:
			class = "off"
		}
		var links []string
		if b.DriveLink != "" {
			links = append(links, `<a href="`+html.EscapeString(b.DriveLink)+`" target="_blank" rel="noopener">Cloud</a>`)
		}
		if b.SourceURL != "" {
			links = append(links, `<a href="`+html.EscapeString(b.SourceURL)+`" target="_blank" rel="noopener">Source</a>`)
		}
		fmt.Fprintf(&s, "            <tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td><span class=\"badge %s\">%s</span></td><td>%s</td></tr>\n",
			html.EscapeString(b.Title),
			html.EscapeString(b.AuthorLine()),
			html.EscapeString(b.Year),
			html.EscapeString(strings.ToUpper(b.Extension)),
			class,
			html.EscapeString(b.Status.String()),
			strings.Join(links, " "),
		)
	}
	s.WriteString(`        </table>
`)
	return s.String()
}

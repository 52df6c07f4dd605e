package render

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/blackwell-systems/bookpipe/internal/catalog"
)

// cardBook is the per-record payload embedded in the page for the filter
// script.
type cardBook struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Authors   string `json:"authors"`
	Publisher string `json:"publisher,omitempty"`
	Year      string `json:"year,omitempty"`
	Language  string `json:"language,omitempty"`
	Format    string `json:"format,omitempty"`
	Status    string `json:"status"`
	Uploaded  bool   `json:"uploaded"`
}

// Catalog renders every record into one self-contained HTML page with
// client-side filtering by text, status, language and format.
func Catalog(w io.Writer, records []catalog.BookRecord, stats catalog.Statistics, opts Options) error {
	payload := make([]cardBook, len(records))
	for i, r := range records {
		payload[i] = cardBook{
			ID:        r.ID,
			Title:     r.Title,
			Authors:   r.AuthorLine(),
			Publisher: r.Publisher,
			Year:      r.Year,
			Language:  r.Language,
			Format:    strings.ToLower(r.Extension),
			Status:    r.Status.String(),
			Uploaded:  r.Uploaded(),
		}
	}
	// json.Marshal escapes <, > and & so the payload cannot close the
	// surrounding script element.
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding catalog data: %w", err)
	}

	var s strings.Builder
	title := html.EscapeString(opts.title())

	s.WriteString(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>` + title + `</title>
    <style>` + pageStyle + `    </style>
</head>
<body>
    <div class="sticky-nav">
        <header>
            <h1>📚 ` + title + `</h1>
            <div class="subtitle">` + countLabel(len(records), "book") + `</div>
        </header>
`)

	writeStatCards(&s, stats)

	s.WriteString(`
        <div class="controls">
            <input type="text" id="search" placeholder="Search by title, author or publisher...">
            <select id="status-filter">
                <option value="">All statuses</option>
`)
	for _, st := range catalog.Statuses {
		fmt.Fprintf(&s, "                <option value=\"%s\">%s (%d)</option>\n",
			st, st, stats.StatusCounts[st])
	}
	s.WriteString(`            </select>
            <select id="language-filter">
                <option value="">All languages</option>
`)
	for _, lang := range stats.Languages() {
		fmt.Fprintf(&s, "                <option value=\"%s\">%s (%d)</option>\n",
			html.EscapeString(lang), html.EscapeString(lang), stats.LanguageCounts[lang])
	}
	s.WriteString(`            </select>
            <select id="format-filter">
                <option value="">All formats</option>
`)
	for _, ext := range stats.Extensions() {
		fmt.Fprintf(&s, "                <option value=\"%s\">%s (%d)</option>\n",
			html.EscapeString(strings.ToLower(ext)), html.EscapeString(strings.ToUpper(ext)), stats.ExtensionCounts[ext])
	}
	s.WriteString(`            </select>
            <span class="filter-count" id="filter-count"></span>
        </div>
    </div>

    <div class="content-wrapper">
        <div class="book-grid" id="library">
`)

	for i, r := range records {
		renderBookCard(&s, r, i, opts)
	}

	s.WriteString(`        </div>

        <div id="no-results" class="no-results" style="display:none;">
            No books match your filters.
        </div>
    </div>

    <footer>Generated ` + html.EscapeString(opts.generatedAt().Format("2006-01-02 15:04")) + `</footer>

    <script type="application/json" id="book-data">`)
	s.Write(data)
	s.WriteString(`</script>
    <script>` + filterScript + `    </script>
</body>
</html>
`)

	_, err = io.WriteString(w, s.String())
	return err
}

func writeStatCards(s *strings.Builder, stats catalog.Statistics) {
	s.WriteString(`
        <div class="stats">
`)
	cards := []struct {
		label string
		value int
	}{
		{"Total Books", stats.TotalCount},
		{"Downloaded", stats.DownloadedCount},
		{"In Cloud", stats.BooksWithDriveLink},
		{"Languages", len(stats.LanguageCounts)},
	}
	for _, c := range cards {
		fmt.Fprintf(s, `            <div class="stat-card"><div class="stat-value">%s</div><div class="stat-label">%s</div></div>
`, humanize.Comma(int64(c.value)), c.label)
	}
	s.WriteString(`        </div>
`)
}

func renderBookCard(s *strings.Builder, r catalog.BookRecord, index int, opts Options) {
	fmt.Fprintf(s, `            <div class="book-card" data-index="%d" data-id="%s" data-status="%s" data-language="%s" data-format="%s">
                <div class="book-cover">`,
		index,
		html.EscapeString(r.ID),
		html.EscapeString(r.Status.String()),
		html.EscapeString(r.Language),
		html.EscapeString(strings.ToLower(r.Extension)),
	)

	if cover := coverSource(r, opts.BaseDir); cover != "" {
		fmt.Fprintf(s, `<img src="%s" alt="Cover" loading="lazy">`, html.EscapeString(cover))
	} else {
		s.WriteString("📚")
	}

	s.WriteString(`</div>
                <div class="book-title">` + html.EscapeString(r.Title) + `</div>
`)
	if authors := r.AuthorLine(); authors != "" {
		s.WriteString(`                <div class="book-author">` + html.EscapeString(authors) + `</div>
`)
	}

	s.WriteString(`                <div class="book-meta">
`)
	for _, tag := range []string{r.Year, r.Language, strings.ToUpper(r.Extension), r.Size} {
		if tag == "" {
			continue
		}
		fmt.Fprintf(s, "                    <span class=\"tag\">%s</span>\n", html.EscapeString(tag))
	}
	fmt.Fprintf(s, "                    <span class=\"tag status-%s\">%s</span>\n",
		html.EscapeString(r.Status.String()), html.EscapeString(r.Status.String()))
	s.WriteString(`                </div>
                <div class="book-links">
`)
	for _, l := range bookLinks(r, opts.BaseDir) {
		fmt.Fprintf(s, "                    <a href=\"%s\" target=\"_blank\" rel=\"noopener\">%s</a>\n",
			html.EscapeString(l.href), l.label)
	}
	s.WriteString(`                </div>
            </div>
`)
}

type link struct {
	label string
	href  string
}

func bookLinks(r catalog.BookRecord, baseDir string) []link {
	var links []link
	if r.DriveLink != "" {
		links = append(links, link{"Cloud", r.DriveLink})
	}
	if r.LocalPath != "" {
		links = append(links, link{"Local file", relLink(baseDir, r.LocalPath)})
	}
	if r.SourceURL != "" {
		links = append(links, link{"Source", r.SourceURL})
	}
	return links
}

// coverSource prefers the uploaded cover, then the local copy, then the
// source service's image.
func coverSource(r catalog.BookRecord, baseDir string) string {
	switch {
	case r.CoverDriveLink != "":
		return r.CoverDriveLink
	case r.CoverLocalPath != "":
		return relLink(baseDir, r.CoverLocalPath)
	default:
		return r.CoverURL
	}
}

func countLabel(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return humanize.Comma(int64(n)) + " " + noun + "s"
}

const filterScript = `
        const books = JSON.parse(document.getElementById('book-data').textContent);
        const search = document.getElementById('search');
        const statusFilter = document.getElementById('status-filter');
        const languageFilter = document.getElementById('language-filter');
        const formatFilter = document.getElementById('format-filter');
        const library = document.getElementById('library');
        const noResults = document.getElementById('no-results');
        const filterCount = document.getElementById('filter-count');

        [search, statusFilter, languageFilter, formatFilter].forEach(el => {
            el.addEventListener(el === search ? 'input' : 'change', applyFilters);
        });

        function applyFilters() {
            const query = search.value.toLowerCase().trim();
            const status = statusFilter.value;
            const language = languageFilter.value;
            const format = formatFilter.value;
            const filtering = query !== '' || status !== '' || language !== '' || format !== '';
            let visibleCount = 0;

            document.querySelectorAll('.book-card').forEach(card => {
                const book = books[parseInt(card.dataset.index, 10)];
                const text = [book.title, book.authors, book.publisher || ''].join(' ').toLowerCase();
                const visible = (query === '' || text.includes(query)) &&
                    (status === '' || book.status === status) &&
                    (language === '' || book.language === language) &&
                    (format === '' || book.format === format);
                card.style.display = visible ? 'block' : 'none';
                if (visible) visibleCount++;
            });

            filterCount.textContent = filtering ? visibleCount + ' of ' + books.length + ' books' : '';
            const empty = visibleCount === 0 && books.length > 0;
            library.style.display = empty ? 'none' : 'grid';
            noResults.style.display = empty ? 'block' : 'none';
        }
`

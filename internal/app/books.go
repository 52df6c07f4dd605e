package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/bookpipe/internal/catalog"
	"github.com/blackwell-systems/bookpipe/internal/pipeline"
	"github.com/blackwell-systems/bookpipe/internal/tui"
)

func newBooksCmd() *cobra.Command {
	var (
		status   string
		language string
		format   string
		search   string
		uploaded bool
		jsonOut  bool
	)

	cmd := &cobra.Command{
		Use:     "books",
		Aliases: []string{"ls", "list"},
		Short:   "List tracked books",
		Long: `List books in the metadata store, optionally filtered.

On a terminal this opens an interactive browser; --plain prints a table.

Examples:
  bookpipe books --status error
  bookpipe books --language english --format pdf
  bookpipe books --search tolkien --plain
  bookpipe books --uploaded --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := catalog.Filter{Language: language, Format: format, Search: search}
			if status != "" {
				st, err := catalog.ParseStatus(status)
				if err != nil {
					return err
				}
				f.Status = st
			}
			if cmd.Flags().Changed("uploaded") {
				f.Uploaded = &uploaded
			}
			books := f.Apply(store.GetAll())

			if jsonOut {
				if books == nil {
					books = []catalog.BookRecord{}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(books)
			}
			if len(books) == 0 {
				warn("No books match")
				return nil
			}
			if tui.ShouldUseTUI(cmd) {
				return browseBooks(cmd, books)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderBooksTable(books, 120))
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d books\n", len(books), len(store.GetAll()))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (pending, downloading, completed, error)")
	cmd.Flags().StringVar(&language, "language", "", "Filter by language")
	cmd.Flags().StringVar(&format, "format", "", "Filter by file format (pdf, epub, ...)")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Match title, authors or publisher")
	cmd.Flags().BoolVar(&uploaded, "uploaded", false, "Only books with (or, with =false, without) a cloud link")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	cmd.Flags().Bool("plain", false, "Print a table instead of the interactive browser")
	return cmd
}

func browseBooks(cmd *cobra.Command, books []catalog.BookRecord) error {
	res, err := tui.RunBrowser(fmt.Sprintf("Books (%d)", len(books)), tui.RecordItems(books))
	if err != nil {
		return err
	}
	if res == nil || res.Record == nil {
		return nil
	}
	rec := res.Record

	switch res.Action {
	case tui.ActionShowLink:
		header("%s", rec.Title)
		switch {
		case rec.DriveLink != "":
			fmt.Println(rec.DriveLink)
		case rec.LocalPath != "":
			fmt.Println(rec.LocalPath)
		case rec.SourceURL != "":
			fmt.Println(rec.SourceURL)
		default:
			warn("No link recorded yet")
		}
	case tui.ActionOpen:
		return openFile(rec.LocalPath)
	case tui.ActionDownload:
		ctx, cancel := commandContext(cmd)
		defer cancel()
		zl, err := zlibClient(ctx)
		if err != nil {
			return err
		}
		if err := lib.EnsureDir(); err != nil {
			return err
		}
		d := newDownloader(zl)
		results, err := runBatch(ctx, cmd, "Downloading "+rec.Title, downloaderHooks(d),
			func(ctx context.Context) ([]pipeline.Result, error) {
				return d.RunIDs(ctx, []string{rec.ID})
			})
		printCounts("Downloaded", results)
		return err
	}
	return nil
}

var (
	tableHeader = lipgloss.NewStyle().Bold(true).Underline(true)
	tableDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// renderBooksTable lays records out in fixed-width columns that fit width
// terminal cells.
func renderBooksTable(books []catalog.BookRecord, width int) string {
	idW := 2
	for _, b := range books {
		if n := xansi.StringWidth(b.ID); n > idW {
			idW = n
		}
	}
	if idW > 12 {
		idW = 12
	}
	const langW, fmtW, statusW, gaps = 10, 5, 11, 5
	flex := width - idW - langW - fmtW - statusW - gaps
	if flex < 30 {
		flex = 30
	}
	titleW := flex * 6 / 10
	authorW := flex - titleW

	var b strings.Builder
	row := func(style *lipgloss.Style, cols ...string) {
		widths := []int{idW, titleW, authorW, langW, fmtW, statusW}
		parts := make([]string, len(cols))
		for i, c := range cols {
			parts[i] = cell(c, widths[i])
		}
		line := strings.Join(parts, " ")
		if style != nil {
			line = style.Render(line)
		}
		b.WriteString(strings.TrimRight(line, " ") + "\n")
	}

	row(&tableHeader, "ID", "TITLE", "AUTHORS", "LANGUAGE", "FMT", "STATUS")
	for _, r := range books {
		st := string(r.Status)
		if r.Uploaded() {
			st = "uploaded"
		}
		var style *lipgloss.Style
		if r.Status == catalog.StatusError {
			style = &tableDim
		}
		row(style, r.ID, r.Title, r.AuthorLine(), r.Language, r.Extension, st)
	}
	return b.String()
}

// cell truncates s to width cells and pads it.
func cell(s string, width int) string {
	if xansi.StringWidth(s) > width {
		s = xansi.Truncate(s, width, "…")
	}
	return s + strings.Repeat(" ", width-xansi.StringWidth(s))
}

package app

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/blackwell-systems/bookpipe/internal/catalog"
	"github.com/blackwell-systems/bookpipe/internal/pipeline"
)

type statusOutput struct {
	catalog.Statistics
	StorePath    string `json:"store_path"`
	LibraryDir   string `json:"library_dir"`
	LibraryFiles int    `json:"library_files"`
	LibraryBytes int64  `json:"library_bytes"`
	Uploadable   int    `json:"uploadable_books"`
}

func newStatusCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:     "status",
		Aliases: []string{"stats"},
		Short:   "Show library statistics",
		Long: `Show counts by download status, language and format, plus how many
books have cloud links and how much space the library uses.

Examples:
  bookpipe status
  bookpipe status --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := collectStatus()
			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			printStatusText(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func collectStatus() statusOutput {
	records := store.GetAll()
	out := statusOutput{
		Statistics: catalog.ComputeStatistics(records),
		StorePath:  store.Path(),
		LibraryDir: lib.Dir(),
		Uploadable: len(pipeline.UploadCandidates(records)),
	}
	var err error
	if out.LibraryFiles, out.LibraryBytes, err = lib.Usage(); err != nil {
		logger.Warn("measuring library dir failed", zap.Error(err))
	}
	return out
}

func printStatusText(w io.Writer, s statusOutput) {
	fmt.Fprintln(w, color.CyanString("Library: %s books", humanize.Comma(int64(s.TotalCount))))
	fmt.Fprintf(w, "  store    %s\n", s.StorePath)
	fmt.Fprintf(w, "  files    %d in %s (%s)\n", s.LibraryFiles, s.LibraryDir, humanize.Bytes(uint64(s.LibraryBytes)))
	if s.TotalCount == 0 {
		fmt.Fprintln(w, "\nNo books yet. Run: bookpipe search <query>")
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, color.CyanString("By status"))
	for _, st := range catalog.Statuses {
		n := s.StatusCounts[st]
		if n == 0 {
			continue
		}
		fmt.Fprintf(w, "  %s %s\n", colorStatus(st), countWithShare(n, s.TotalCount))
	}
	fmt.Fprintf(w, "  %s %s\n", color.GreenString("%-12s", "in cloud"), countWithShare(s.BooksWithDriveLink, s.TotalCount))
	if s.Uploadable > 0 {
		fmt.Fprintf(w, "  %d downloaded books waiting for upload\n", s.Uploadable)
	}

	printBreakdown := func(title string, counts map[string]int) {
		if len(counts) == 0 {
			return
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, color.CyanString(title))
		for _, k := range byCount(counts) {
			fmt.Fprintf(w, "  %-12s %s\n", k, countWithShare(counts[k], s.TotalCount))
		}
	}
	printBreakdown("By language", s.LanguageCounts)
	printBreakdown("By format", s.ExtensionCounts)
}

// colorStatus pads before coloring so columns stay aligned.
func colorStatus(st catalog.Status) string {
	label := fmt.Sprintf("%-12s", st)
	switch st {
	case catalog.StatusCompleted:
		return color.GreenString(label)
	case catalog.StatusError:
		return color.RedString(label)
	case catalog.StatusDownloading:
		return color.YellowString(label)
	default:
		return label
	}
}

func countWithShare(n, total int) string {
	if total == 0 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%d (%.0f%%)", n, float64(n)*100/float64(total))
}

// byCount sorts keys by descending count, then name.
func byCount(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

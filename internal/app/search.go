package app

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/bookpipe/internal/catalog"
	"github.com/blackwell-systems/bookpipe/internal/pipeline"
)

func newSearchCmd() *cobra.Command {
	var (
		count  int
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search Z-Library and add the results as pending books",
		Long: `Search Z-Library and record every result in the metadata store with
status pending. Books already in the store are left untouched.

Examples:
  bookpipe search "python programming"
  bookpipe search dune --count 25
  bookpipe search "rust" --dry-run     Show results without storing them`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return fmt.Errorf("query is required")
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			zl, err := zlibClient(ctx)
			if err != nil {
				return err
			}

			n := cfg.Search.EffectiveCount(count)
			fmt.Printf("Searching for %q (up to %d results)…\n", query, n)
			records, err := pipeline.SearchRecords(ctx, zl, query, n)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			if len(records) == 0 {
				warn("No results for %q", query)
				return nil
			}

			printSearchResults(records)

			if dryRun {
				return nil
			}
			added, err := store.AddRecords(records)
			if err != nil {
				return fmt.Errorf("saving results: %w", err)
			}
			ok("Found %d, added %d new to %s", len(records), added, store.Path())
			if added > 0 {
				fmt.Printf("\nNext: %s\n", color.CyanString("bookpipe download"))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "Number of results (default: search.count)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print results without adding them to the store")
	return cmd
}

func printSearchResults(records []catalog.BookRecord) {
	for i, r := range records {
		meta := []string{}
		for _, v := range []string{r.Year, r.Language, r.Extension, r.Size} {
			if v != "" {
				meta = append(meta, v)
			}
		}
		known := ""
		if existing, found := store.GetByID(r.ID); found {
			known = color.HiBlackString(" [%s]", existing.Status)
		}
		fmt.Printf("%3d. %s%s\n", i+1, r.Title, known)
		if a := r.AuthorLine(); a != "" {
			fmt.Printf("     %s\n", color.HiBlackString(a))
		}
		if len(meta) > 0 {
			fmt.Printf("     %s\n", color.CyanString(strings.Join(meta, " · ")))
		}
	}
	fmt.Println()
}

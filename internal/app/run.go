package app

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/bookpipe/internal/catalog"
	"github.com/blackwell-systems/bookpipe/internal/pipeline"
)

func newRunCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "run <query>",
		Short: "Search, download, upload and rebuild the catalog in one go",
		Long: `Run the whole pipeline for one query.

The search results are stored as pending, the next download batch runs,
then the next upload batch when a cloud backend is configured, and finally
the catalog and statistics pages are regenerated.

A failed upload login is reported but does not stop catalog generation.

Examples:
  bookpipe run "python programming"
  bookpipe run "dune" --count 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			zl, err := zlibClient(ctx)
			if err != nil {
				return err
			}
			if err := lib.EnsureDir(); err != nil {
				return fmt.Errorf("creating library dir: %w", err)
			}

			st, err := cloudStorage()
			if err != nil {
				warn("Cloud storage unavailable, skipping uploads: %v", err)
			}

			d := newDownloader(zl)
			d.OnStart = func(index, total int, rec catalog.BookRecord) {
				fmt.Printf("  download [%d/%d] %s\n", index+1, total, rec.Title)
			}
			d.OnResult = printResult

			wf := &pipeline.Workflow{
				Searcher:   zl,
				Store:      store,
				Downloader: d,
				Pages:      newPages(true),
				Logger:     logger.Named("run"),
			}
			if st != nil {
				u := newUploader(st)
				u.OnStart = func(index, total int, rec catalog.BookRecord) {
					fmt.Printf("  upload [%d/%d] %s\n", index+1, total, rec.Title)
				}
				u.OnResult = printResult
				wf.Uploader = u
			}

			header("Running pipeline for %q", args[0])
			sum, err := wf.Run(ctx, args[0], cfg.Search.EffectiveCount(count))
			if sum != nil {
				printSummary(sum)
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "Maximum search results (default: search.count)")
	return cmd
}

func printSummary(sum *pipeline.Summary) {
	fmt.Println()
	header("Summary")
	fmt.Printf("  Search:    %d found, %d new\n", sum.Found, sum.Added)
	if len(sum.Downloads) > 0 {
		okN, failN := pipeline.Counts(sum.Downloads)
		fmt.Printf("  Downloads: %d ok, %d failed\n", okN, failN)
	}
	switch {
	case sum.UploadError != nil:
		fmt.Printf("  Uploads:   %s\n", color.RedString(sum.UploadError.Error()))
	case len(sum.Uploads) > 0:
		okN, failN := pipeline.Counts(sum.Uploads)
		fmt.Printf("  Uploads:   %d ok, %d failed\n", okN, failN)
	}
	if sum.CatalogPath != "" {
		fmt.Printf("  Catalog:   %s\n", sum.CatalogPath)
		fmt.Printf("  Library:   %d books, %d downloaded, %d uploaded\n",
			sum.Stats.TotalCount, sum.Stats.DownloadedCount, sum.Stats.BooksWithDriveLink)
	}
}

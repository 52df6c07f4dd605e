package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/bookpipe/internal/catalog"
	"github.com/blackwell-systems/bookpipe/internal/config"
	"github.com/blackwell-systems/bookpipe/internal/library"
	"github.com/blackwell-systems/bookpipe/internal/pipeline"
)

func newDownloadCmd() *cobra.Command {
	var (
		limit int
		ids   []string
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the next batch of pending books",
		Long: `Download pending books into the library directory.

Each book is marked downloading, fetched, and then marked completed with
its local path, or error when the fetch fails. A failed book never stops
the batch. Covers are fetched alongside and are best effort.

Examples:
  bookpipe download               Next batch (batch.download, default 5)
  bookpipe download --limit 20
  bookpipe download --id 123 --id 456`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(ids) == 0 && len(store.GetByStatus(catalog.StatusPending)) == 0 {
				warn("No pending books. Run: bookpipe search <query>")
				return nil
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			zl, err := zlibClient(ctx)
			if err != nil {
				return err
			}
			if err := lib.EnsureDir(); err != nil {
				return fmt.Errorf("creating library dir: %w", err)
			}

			d := newDownloader(zl)
			run := func(ctx context.Context) ([]pipeline.Result, error) {
				if len(ids) > 0 {
					return d.RunIDs(ctx, ids)
				}
				return d.Run(ctx, limit)
			}

			results, err := runBatch(ctx, cmd, "Downloading books", downloaderHooks(d), run)
			printCounts("Downloaded", results)
			if err != nil {
				return err
			}
			showPopplerHintIfNeeded(results)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum books to download (default: batch.download)")
	cmd.Flags().StringSliceVar(&ids, "id", nil, "Download specific book ids (repeatable)")
	return cmd
}

// showPopplerHintIfNeeded shows a one-time hint about installing poppler
// when a PDF was downloaded without a cover.
func showPopplerHintIfNeeded(results []pipeline.Result) {
	needed := false
	for _, r := range results {
		if r.OK && r.CoverPath == "" && strings.EqualFold(filepath.Ext(r.Path), ".pdf") {
			needed = true
			break
		}
	}
	if !needed || library.PopplerInstalled() {
		return
	}

	markerPath := filepath.Join(filepath.Dir(config.DefaultPath()), ".poppler-hint-shown")
	if _, err := os.Stat(markerPath); err == nil {
		return
	}

	fmt.Println()
	fmt.Println(color.HiBlackString(library.PopplerHint()))

	if err := os.MkdirAll(filepath.Dir(markerPath), 0750); err == nil {
		_ = os.WriteFile(markerPath, []byte("1"), 0600)
	}
}

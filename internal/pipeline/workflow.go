package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/blackwell-systems/bookpipe/internal/catalog"
	"github.com/blackwell-systems/bookpipe/internal/cloud"
	"github.com/blackwell-systems/bookpipe/internal/library"
	"github.com/blackwell-systems/bookpipe/internal/render"
)

// SearchRecords runs query and converts every hit into a pending record
// without touching the store.
func SearchRecords(ctx context.Context, searcher Searcher, query string, count int) ([]catalog.BookRecord, error) {
	results, err := searcher.Search(ctx, query, count)
	if err != nil {
		return nil, err
	}
	records := make([]catalog.BookRecord, 0, len(results))
	for _, r := range results {
		records = append(records, r.ToRecord(searcher.BaseURL(), query))
	}
	return records, nil
}

// Ingest searches for query and stores every hit as a pending record.
// It returns the number of results found and the number newly inserted.
func Ingest(ctx context.Context, searcher Searcher, store Store, query string, count int) (found, added int, err error) {
	records, err := SearchRecords(ctx, searcher, query, count)
	if err != nil {
		return 0, 0, err
	}
	added, err = store.AddRecords(records)
	return len(records), added, err
}

// Pages generates the HTML catalog and statistics pages from the store.
type Pages struct {
	Store       Store
	Library     *library.Manager
	Output      string
	StatsOutput string
	Title       string
}

// Generate writes the catalog page, and the stats page when StatsOutput is
// set. It returns the catalog path.
func (p Pages) Generate() (string, error) {
	records := p.Store.GetAll()
	stats := catalog.ComputeStatistics(records)
	opts := render.Options{Title: p.Title, BaseDir: filepath.Dir(p.Output)}
	if p.Library != nil {
		opts.LibraryFiles, opts.LibraryBytes, _ = p.Library.Usage()
	}

	if err := render.WriteFile(p.Output, func(w io.Writer) error {
		return render.Catalog(w, records, stats, opts)
	}); err != nil {
		return "", fmt.Errorf("generating catalog: %w", err)
	}
	if p.StatsOutput != "" {
		if err := render.WriteFile(p.StatsOutput, func(w io.Writer) error {
			return render.StatsPage(w, stats, opts)
		}); err != nil {
			return "", fmt.Errorf("generating stats page: %w", err)
		}
	}
	return p.Output, nil
}

// Publish uploads the generated catalog page through pub and returns its
// link.
func (p Pages) Publish(ctx context.Context, pub cloud.Publisher) (string, error) {
	data, err := os.ReadFile(p.Output)
	if err != nil {
		return "", fmt.Errorf("reading catalog: %w", err)
	}
	return pub.Publish(ctx, filepath.Base(p.Output), data)
}

// Workflow runs search, download, upload and catalog generation in order.
type Workflow struct {
	Searcher   Searcher
	Store      Store
	Downloader *Downloader
	// Uploader is nil when no cloud backend is configured.
	Uploader *Uploader
	Pages    Pages
	Logger   *zap.Logger
}

// Summary reports what a workflow run did.
type Summary struct {
	Query       string
	Found       int
	Added       int
	Downloads   []Result
	Uploads     []Result
	UploadError error
	CatalogPath string
	Stats       catalog.Statistics
}

// Run executes the full workflow for query. Search and download aborts are
// returned as errors. An upload authentication failure is recorded in the
// summary and the catalog is still generated.
func (w *Workflow) Run(ctx context.Context, query string, count int) (*Summary, error) {
	log := w.Logger
	if log == nil {
		log = zap.NewNop()
	}
	sum := &Summary{Query: query}

	found, added, err := Ingest(ctx, w.Searcher, w.Store, query, count)
	sum.Found, sum.Added = found, added
	if err != nil {
		return sum, fmt.Errorf("search: %w", err)
	}
	log.Info("search finished", zap.String("query", query), zap.Int("found", found), zap.Int("added", added))

	sum.Downloads, err = w.Downloader.Run(ctx, 0)
	if err != nil {
		return sum, fmt.Errorf("download: %w", err)
	}

	if w.Uploader != nil {
		sum.Uploads, sum.UploadError = w.Uploader.Run(ctx, 0)
		if sum.UploadError != nil {
			log.Warn("upload step failed", zap.Error(sum.UploadError))
		}
	}

	if sum.CatalogPath, err = w.Pages.Generate(); err != nil {
		return sum, err
	}
	sum.Stats = w.Store.ComputeStatistics()
	return sum, nil
}

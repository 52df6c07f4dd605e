// Package pipeline moves records through the download and upload stages.
package pipeline

import (
	"context"

	"github.com/blackwell-systems/bookpipe/internal/catalog"
	"github.com/blackwell-systems/bookpipe/internal/ingest"
	"github.com/blackwell-systems/bookpipe/internal/zlib"
)

// Store is the metadata store the orchestrators read and update.
type Store interface {
	AddRecords(records []catalog.BookRecord) (int, error)
	UpdateStatus(id string, status catalog.Status, upd catalog.Update) (bool, error)
	GetAll() []catalog.BookRecord
	GetByStatus(status catalog.Status) []catalog.BookRecord
	GetByID(id string) (catalog.BookRecord, bool)
	ComputeStatistics() catalog.Statistics
}

// Resolver turns a stored record into an authoritative download URL.
type Resolver interface {
	ResolveDownload(ctx context.Context, rec catalog.BookRecord) (string, error)
}

// Searcher finds books on the source service.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]zlib.Result, error)
	BaseURL() string
}

// Fetcher opens a URL or local path for streaming.
type Fetcher interface {
	Open(ctx context.Context, input string) (*ingest.Source, error)
}

// Result is the outcome of one record in a download or upload batch.
type Result struct {
	ID     string
	Title  string
	OK     bool
	Reason string // failure reason when !OK

	Path      string // downloaded book, or uploaded book link
	CoverPath string // local cover, or uploaded cover link
	Bytes     int64
	SHA256    string
}

// Counts returns how many results succeeded and failed.
func Counts(results []Result) (ok, failed int) {
	for _, r := range results {
		if r.OK {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}

func batchSize(limit, configured, fallback int) int {
	switch {
	case limit > 0:
		return limit
	case configured > 0:
		return configured
	default:
		return fallback
	}
}

func head(records []catalog.BookRecord, n int) []catalog.BookRecord {
	if len(records) > n {
		return records[:n]
	}
	return records
}

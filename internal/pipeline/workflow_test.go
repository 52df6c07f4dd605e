package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/bookpipe/internal/catalog"
	"github.com/blackwell-systems/bookpipe/internal/cloud"
	"github.com/blackwell-systems/bookpipe/internal/pipeline"
	"github.com/blackwell-systems/bookpipe/internal/zlib"
)

func searchResults() []zlib.Result {
	return []zlib.Result{
		{ID: "1", Title: "Dune", Author: "Frank Herbert", Extension: "EPUB", Language: "english", Href: "/book/1/abc/dune.html"},
		{ID: "2", Title: "Broken", Extension: "pdf", Language: "english"},
	}
}

func TestIngest(t *testing.T) {
	e := newEnv(t)
	s := &searcher{results: searchResults()}

	found, added, err := pipeline.Ingest(context.Background(), s, e.store, "dune", 10)
	require.NoError(t, err)
	assert.Equal(t, 2, found)
	assert.Equal(t, 2, added)

	rec := e.get(t, "1")
	assert.Equal(t, catalog.StatusPending, rec.Status)
	assert.Equal(t, "https://books.example/book/1/abc/dune.html", rec.SourceURL)
	assert.Equal(t, "dune", rec.SearchQuery)

	_, added, err = pipeline.Ingest(context.Background(), s, e.store, "dune", 10)
	require.NoError(t, err)
	assert.Zero(t, added)
}

func TestSearchRecords_DoesNotStore(t *testing.T) {
	e := newEnv(t)
	s := &searcher{results: searchResults()}

	records, err := pipeline.SearchRecords(context.Background(), s, "dune", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Dune", records[0].Title)
	assert.Equal(t, catalog.Authors{"Frank Herbert"}, records[0].Authors)
	assert.Empty(t, e.store.GetAll())
}

func (e *env) pages(t *testing.T) pipeline.Pages {
	dir := t.TempDir()
	return pipeline.Pages{
		Store:       e.store,
		Library:     e.lib,
		Output:      filepath.Join(dir, "catalog.html"),
		StatsOutput: filepath.Join(dir, "stats.html"),
		Title:       "Test Library",
	}
}

func TestWorkflow_Run(t *testing.T) {
	e := newEnv(t)
	e.serve("mem://book/1", "dune")
	e.fetcher.content["mem://book/2"] = payload{err: errBoom}
	st := &storage{}

	w := &pipeline.Workflow{
		Searcher:   &searcher{results: searchResults()},
		Store:      e.store,
		Downloader: e.downloader(),
		Uploader:   pipeline.NewUploader(e.store, st, "", nil, 0),
		Pages:      e.pages(t),
	}
	sum, err := w.Run(context.Background(), "dune", 10)
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Found)
	assert.Equal(t, 2, sum.Added)
	assert.Len(t, sum.Downloads, 2)
	require.Len(t, sum.Uploads, 1)
	assert.True(t, sum.Uploads[0].OK)
	assert.Equal(t, 1, sum.Stats.BooksWithDriveLink)

	page, err := os.ReadFile(sum.CatalogPath)
	require.NoError(t, err)
	assert.Contains(t, string(page), "Test Library")
	assert.Contains(t, string(page), "Frank Herbert")
	_, err = os.Stat(w.Pages.StatsOutput)
	assert.NoError(t, err)
}

func TestWorkflow_UploadAuthFailureStillRenders(t *testing.T) {
	e := newEnv(t)
	e.serve("mem://book/1", "dune")
	w := &pipeline.Workflow{
		Searcher:   &searcher{results: searchResults()[:1]},
		Store:      e.store,
		Downloader: e.downloader(),
		Uploader:   pipeline.NewUploader(e.store, &storage{authErr: cloud.ErrAuthentication}, "", nil, 0),
		Pages:      e.pages(t),
	}
	sum, err := w.Run(context.Background(), "dune", 10)
	require.NoError(t, err)
	assert.ErrorIs(t, sum.UploadError, cloud.ErrAuthentication)
	assert.FileExists(t, sum.CatalogPath)
}

func TestWorkflow_SearchError(t *testing.T) {
	e := newEnv(t)
	w := &pipeline.Workflow{
		Searcher:   &searcher{err: errBoom},
		Store:      e.store,
		Downloader: e.downloader(),
		Pages:      e.pages(t),
	}
	_, err := w.Run(context.Background(), "x", 10)
	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, e.store.GetAll())
}

type publisher struct{ name, data string }

func (p *publisher) Publish(_ context.Context, name string, data []byte) (string, error) {
	p.name, p.data = name, string(data)
	return "https://pages.example/" + name, nil
}

func TestPages_Publish(t *testing.T) {
	e := newEnv(t)
	pages := e.pages(t)
	_, err := pages.Generate()
	require.NoError(t, err)

	pub := &publisher{}
	link, err := pages.Publish(context.Background(), pub)
	require.NoError(t, err)
	assert.Equal(t, "https://pages.example/catalog.html", link)
	assert.True(t, strings.HasPrefix(pub.data, "<!DOCTYPE html>"))
}

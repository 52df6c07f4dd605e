package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/bookpipe/internal/catalog"
	"github.com/blackwell-systems/bookpipe/internal/pipeline"
	"github.com/blackwell-systems/bookpipe/internal/zlib"
)

func (e *env) downloader() *pipeline.Downloader {
	return pipeline.NewDownloader(e.store, e.res, e.fetcher, e.lib, nil, 0)
}

func TestDownloader_EndToEnd(t *testing.T) {
	e := newEnv(t)
	e.add(t,
		catalog.BookRecord{ID: "1", Title: "Dune", Authors: catalog.Authors{"Frank Herbert"}, Extension: "epub"},
		catalog.BookRecord{ID: "2", Title: "Broken", Extension: "pdf"},
	)
	assert.Len(t, e.store.GetByStatus(catalog.StatusPending), 2)

	e.serve("mem://book/1", "dune contents")
	e.fetcher.content["mem://book/2"] = payload{err: errBoom}

	results, err := e.downloader().Run(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].OK)
	assert.Equal(t, int64(len("dune contents")), results[0].Bytes)
	assert.Len(t, results[0].SHA256, 64)
	assert.False(t, results[1].OK)
	assert.Contains(t, results[1].Reason, "boom")

	one := e.get(t, "1")
	assert.Equal(t, catalog.StatusCompleted, one.Status)
	assert.NotEmpty(t, one.LocalPath)
	assert.Equal(t, e.lib.Path("Dune - Frank Herbert.epub"), one.LocalPath)
	assert.Equal(t, "mem://book/1", one.DownloadURL)
	data, err := os.ReadFile(one.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, "dune contents", string(data))

	two := e.get(t, "2")
	assert.Equal(t, catalog.StatusError, two.Status)
	assert.Empty(t, two.LocalPath)

	stats := e.store.ComputeStatistics()
	assert.Equal(t, map[catalog.Status]int{catalog.StatusCompleted: 1, catalog.StatusError: 1}, stats.StatusCounts)
	assert.Equal(t, 1, stats.DownloadedCount)
}

func TestDownloader_BatchLimit(t *testing.T) {
	e := newEnv(t)
	for _, id := range []string{"a", "b", "c"} {
		e.add(t, catalog.BookRecord{ID: id, Title: "Book " + id})
		e.serve("mem://book/"+id, "content "+id)
	}

	results, err := e.downloader().Run(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, catalog.StatusPending, e.get(t, "c").Status)

	d := pipeline.NewDownloader(e.store, e.res, e.fetcher, e.lib, nil, 1)
	results, err = d.Run(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c", results[0].ID)
}

func TestDownloader_ResolveFailureMarksError(t *testing.T) {
	e := newEnv(t)
	e.add(t, catalog.BookRecord{ID: "1", Title: "Gone"}, catalog.BookRecord{ID: "2", Title: "Fine"})
	e.res.errs["1"] = zlib.ErrNoDownload
	e.serve("mem://book/2", "x")

	results, err := e.downloader().Run(context.Background(), 0)
	require.NoError(t, err)
	assert.False(t, results[0].OK)
	assert.Contains(t, results[0].Reason, "resolve download")
	assert.Equal(t, catalog.StatusError, e.get(t, "1").Status)
	assert.Equal(t, catalog.StatusCompleted, e.get(t, "2").Status)
}

func TestDownloader_AuthFailureAborts(t *testing.T) {
	e := newEnv(t)
	e.add(t, catalog.BookRecord{ID: "1", Title: "A"}, catalog.BookRecord{ID: "2", Title: "B"})
	e.res.errs["1"] = &zlib.AuthenticationError{Operation: "download_link"}

	results, err := e.downloader().Run(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, zlib.IsAuth(err))
	assert.Len(t, results, 1)

	assert.Equal(t, catalog.StatusPending, e.get(t, "1").Status, "record returns to pending")
	assert.Equal(t, catalog.StatusPending, e.get(t, "2").Status, "rest of batch untouched")
}

func TestDownloader_CancelledContext(t *testing.T) {
	e := newEnv(t)
	e.add(t, catalog.BookRecord{ID: "1", Title: "A"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := e.downloader().Run(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
	assert.Equal(t, catalog.StatusPending, e.get(t, "1").Status)
}

func TestDownloader_Cover(t *testing.T) {
	e := newEnv(t)
	e.add(t,
		catalog.BookRecord{ID: "1", Title: "With Cover", Extension: "epub", CoverURL: "mem://cover/1"},
		catalog.BookRecord{ID: "2", Title: "Bad Cover", Extension: "epub", CoverURL: "mem://cover/missing"},
	)
	e.serve("mem://book/1", "book")
	e.serve("mem://cover/1", "jpeg")
	e.serve("mem://book/2", "book")

	results, err := e.downloader().Run(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, e.lib.Path("With Cover.jpg"), results[0].CoverPath)
	assert.Equal(t, e.lib.Path("With Cover.jpg"), e.get(t, "1").CoverLocalPath)

	assert.True(t, results[1].OK, "cover failure must not fail the book")
	assert.Empty(t, results[1].CoverPath)
	assert.Empty(t, e.get(t, "2").CoverLocalPath)
	assert.Equal(t, catalog.StatusCompleted, e.get(t, "2").Status)
}

func TestDownloader_RejectsHTML(t *testing.T) {
	e := newEnv(t)
	e.add(t, catalog.BookRecord{ID: "1", Title: "Quota"})
	e.fetcher.content["mem://book/1"] = payload{body: "<html>limit</html>", contentType: "text/html; charset=utf-8"}

	results, err := e.downloader().Run(context.Background(), 0)
	require.NoError(t, err)
	assert.False(t, results[0].OK)
	assert.Equal(t, catalog.StatusError, e.get(t, "1").Status)
	assert.False(t, e.lib.Exists("Quota.pdf"))
}

func TestDownloader_EmptyBody(t *testing.T) {
	e := newEnv(t)
	e.add(t, catalog.BookRecord{ID: "1", Title: "Empty"})
	e.serve("mem://book/1", "")

	results, err := e.downloader().Run(context.Background(), 0)
	require.NoError(t, err)
	assert.False(t, results[0].OK)
	assert.False(t, e.lib.Exists("Empty.pdf"))
}

func TestDownloader_ExtensionFromSource(t *testing.T) {
	e := newEnv(t)
	e.add(t, catalog.BookRecord{ID: "1", Title: "Unknown Format"})
	e.res.urls["1"] = "mem://files/book.djvu"
	e.serve("mem://files/book.djvu", "djvu")

	results, err := e.downloader().Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, e.lib.Path("Unknown Format.djvu"), results[0].Path)
}

func TestDownloader_NameCollision(t *testing.T) {
	e := newEnv(t)
	e.add(t,
		catalog.BookRecord{ID: "1", Title: "Same", Extension: "pdf"},
		catalog.BookRecord{ID: "2", Title: "Same", Extension: "pdf"},
	)
	e.serve("mem://book/1", "first")
	e.serve("mem://book/2", "second")

	results, err := e.downloader().Run(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Same.pdf", filepath.Base(results[0].Path))
	assert.Equal(t, "Same [2].pdf", filepath.Base(results[1].Path))
	first, _ := os.ReadFile(results[0].Path)
	assert.Equal(t, "first", string(first))
}

func TestDownloader_CoverNameCollision(t *testing.T) {
	e := newEnv(t)
	e.add(t,
		catalog.BookRecord{ID: "1", Title: "Same", Authors: catalog.Authors{"A"}, Extension: "pdf", CoverURL: "mem://cover/1"},
		catalog.BookRecord{ID: "2", Title: "Same", Authors: catalog.Authors{"A"}, Extension: "epub", CoverURL: "mem://cover/2"},
	)
	e.serve("mem://book/1", "pdf bytes")
	e.serve("mem://book/2", "epub bytes")
	e.serve("mem://cover/1", "cover-one")
	e.serve("mem://cover/2", "cover-two")

	results, err := e.downloader().Run(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, results, 2)

	one, two := e.get(t, "1"), e.get(t, "2")
	require.NotEqual(t, one.CoverLocalPath, two.CoverLocalPath)
	assert.Equal(t, "Same - A [2].epub", filepath.Base(two.LocalPath))
	assert.Equal(t, "Same - A [2].jpg", filepath.Base(two.CoverLocalPath))

	cover, err := os.ReadFile(one.CoverLocalPath)
	require.NoError(t, err)
	assert.Equal(t, "cover-one", string(cover))
	cover, err = os.ReadFile(two.CoverLocalPath)
	require.NoError(t, err)
	assert.Equal(t, "cover-two", string(cover))
}

func TestDownloader_RunIDs(t *testing.T) {
	e := newEnv(t)
	e.add(t, catalog.BookRecord{ID: "1", Title: "A"}, catalog.BookRecord{ID: "2", Title: "B"})
	e.serve("mem://book/2", "b")
	_, err := e.store.UpdateStatus("1", catalog.StatusDownloading, catalog.Update{})
	require.NoError(t, err)

	var seen []string
	d := e.downloader()
	d.OnResult = func(r pipeline.Result) { seen = append(seen, r.ID) }

	results, err := d.RunIDs(context.Background(), []string{"missing", "1", "2"})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.False(t, results[0].OK)
	assert.Contains(t, results[1].Reason, "downloading")
	assert.True(t, results[2].OK)
	assert.Equal(t, []string{"missing", "1", "2"}, seen)
	assert.Equal(t, catalog.StatusDownloading, e.get(t, "1").Status)
}

func TestDownloader_Progress(t *testing.T) {
	e := newEnv(t)
	e.add(t, catalog.BookRecord{ID: "1", Title: "A"})
	e.serve("mem://book/1", "abcdef")

	var last int64
	d := e.downloader()
	d.OnProgress = func(id string, read, total int64) { last = read }
	_, err := d.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(6), last)
}

func TestCounts(t *testing.T) {
	ok, failed := pipeline.Counts([]pipeline.Result{{OK: true}, {}, {OK: true}})
	assert.Equal(t, 2, ok)
	assert.Equal(t, 1, failed)
}

package pipeline_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/bookpipe/internal/catalog"
	"github.com/blackwell-systems/bookpipe/internal/cloud"
	"github.com/blackwell-systems/bookpipe/internal/ingest"
	"github.com/blackwell-systems/bookpipe/internal/library"
	"github.com/blackwell-systems/bookpipe/internal/zlib"
)

// resolver maps record ids to download URLs. Ids in errs fail.
type resolver struct {
	urls map[string]string
	errs map[string]error
}

func (r *resolver) ResolveDownload(_ context.Context, rec catalog.BookRecord) (string, error) {
	if err := r.errs[rec.ID]; err != nil {
		return "", err
	}
	if u, ok := r.urls[rec.ID]; ok {
		return u, nil
	}
	return "mem://book/" + rec.ID, nil
}

type payload struct {
	body        string
	contentType string
	err         error
}

// fetcher serves in-memory content by URL. Unknown URLs fail.
type fetcher struct {
	mu      sync.Mutex
	content map[string]payload
	opened  []string
}

func (f *fetcher) Open(_ context.Context, input string) (*ingest.Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, input)
	p, ok := f.content[input]
	if !ok {
		return nil, &ingest.StatusError{URL: input, StatusCode: 404}
	}
	if p.err != nil {
		return nil, p.err
	}
	ct := p.contentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &ingest.Source{
		Name:        filepath.Base(input),
		Size:        int64(len(p.body)),
		ContentType: ct,
		Body:        io.NopCloser(strings.NewReader(p.body)),
	}, nil
}

type env struct {
	store   *catalog.Store
	lib     *library.Manager
	fetcher *fetcher
	res     *resolver
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	clock := time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local)
	return &env{
		store:   catalog.NewStore(filepath.Join(dir, "books.csv"), nil).WithClock(func() time.Time { return clock }),
		lib:     library.New(filepath.Join(dir, "downloads")),
		fetcher: &fetcher{content: map[string]payload{}},
		res:     &resolver{urls: map[string]string{}, errs: map[string]error{}},
	}
}

func (e *env) add(t *testing.T, recs ...catalog.BookRecord) {
	t.Helper()
	n, err := e.store.AddRecords(recs)
	require.NoError(t, err)
	require.Equal(t, len(recs), n)
}

func (e *env) serve(url, body string) {
	e.fetcher.content[url] = payload{body: body}
}

func (e *env) get(t *testing.T, id string) catalog.BookRecord {
	t.Helper()
	r, ok := e.store.GetByID(id)
	require.True(t, ok, "record %s missing", id)
	return r
}

// storage is an in-memory cloud backend.
type storage struct {
	authErr   error
	uploadErr map[string]error // by file name
	public    error
	uploaded  []string
}

func (s *storage) Authenticate(context.Context) error { return s.authErr }

func (s *storage) UploadFile(_ context.Context, path, name, folderID string) (string, error) {
	if err := s.uploadErr[name]; err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	id := folderID + "/" + name
	s.uploaded = append(s.uploaded, id)
	return id, nil
}

func (s *storage) MakePublic(context.Context, string) error { return s.public }

func (s *storage) ShareableLink(_ context.Context, fileID string) (string, error) {
	return "https://cloud.example/" + fileID, nil
}

var _ cloud.Storage = (*storage)(nil)

// searcher returns fixed results.
type searcher struct {
	results []zlib.Result
	err     error
}

func (s *searcher) Search(context.Context, string, int) ([]zlib.Result, error) {
	return s.results, s.err
}

func (s *searcher) BaseURL() string { return "https://books.example" }

var errBoom = errors.New("boom")

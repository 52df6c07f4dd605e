package cloud

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blackwell-systems/bookpipe/internal/config"
)

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "Dune.epub", objectKey("", "Dune.epub"))
	assert.Equal(t, "books/Dune.epub", objectKey("/books/", "Dune.epub"))
}

func TestPublicPrefix(t *testing.T) {
	assert.Equal(t, "books/*", publicPrefix("books/Dune.epub"))
	assert.Equal(t, "index.html", publicPrefix("index.html"))
}

func TestGrantPublicRead(t *testing.T) {
	doc, changed, err := grantPublicRead("", "lib", "books/*")
	require.NoError(t, err)
	assert.True(t, changed)

	var pol bucketPolicy
	require.NoError(t, json.Unmarshal([]byte(doc), &pol))
	require.Len(t, pol.Statement, 1)
	assert.True(t, containsString(pol.Statement[0].Resource, "arn:aws:s3:::lib/books/*"))

	// Granting the same prefix again is a no-op.
	again, changed, err := grantPublicRead(doc, "lib", "books/*")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, doc, again)

	// A different prefix is appended, keeping the first statement.
	more, changed, err := grantPublicRead(doc, "lib", "covers/*")
	require.NoError(t, err)
	assert.True(t, changed)
	require.NoError(t, json.Unmarshal([]byte(more), &pol))
	assert.Len(t, pol.Statement, 2)

	_, _, err = grantPublicRead("{not json", "lib", "x")
	assert.Error(t, err)
}

func TestContainsString(t *testing.T) {
	assert.True(t, containsString("a", "a"))
	assert.True(t, containsString([]any{"x", "a"}, "a"))
	assert.False(t, containsString([]any{1, "b"}, "a"))
	assert.False(t, containsString(nil, "a"))
}

// fakeS3 answers the handful of path-style requests the backend makes.
type fakeS3 struct {
	mu      sync.Mutex
	status  int // for HEAD bucket
	created bool
	puts    []string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case r.Method == http.MethodHead && strings.Trim(r.URL.Path, "/") == "books":
		w.WriteHeader(f.status)
	case r.Method == http.MethodPut && strings.Trim(r.URL.Path, "/") == "books":
		f.created = true
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut:
		f.puts = append(f.puts, strings.TrimPrefix(r.URL.Path, "/books/"))
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func newTestS3(t *testing.T, fake *fakeS3, presign bool) *S3 {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	s, err := NewS3(config.S3Config{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "access",
		SecretKey: "secret",
		Bucket:    "books",
		Region:    "us-east-1",
		Presign:   presign,
	}, zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestS3_Authenticate(t *testing.T) {
	fake := &fakeS3{status: http.StatusOK}
	require.NoError(t, newTestS3(t, fake, false).Authenticate(context.Background()))
	assert.False(t, fake.created)

	fake = &fakeS3{status: http.StatusNotFound}
	require.NoError(t, newTestS3(t, fake, false).Authenticate(context.Background()))
	assert.True(t, fake.created, "missing bucket should be created")

	fake = &fakeS3{status: http.StatusForbidden}
	err := newTestS3(t, fake, false).Authenticate(context.Background())
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.True(t, IsAuth(err))
}

func TestS3_UploadAndLink(t *testing.T) {
	fake := &fakeS3{status: http.StatusOK}
	s := newTestS3(t, fake, false)

	path := filepath.Join(t.TempDir(), "Dune.epub")
	require.NoError(t, os.WriteFile(path, []byte("epub"), 0600))

	id, err := s.UploadFile(context.Background(), path, "Dune - Frank Herbert.epub", "library")
	require.NoError(t, err)
	assert.Equal(t, "library/Dune - Frank Herbert.epub", id)
	assert.Equal(t, []string{"library/Dune - Frank Herbert.epub"}, fake.puts)

	link, err := s.ShareableLink(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(link, "/books/library/Dune%20-%20Frank%20Herbert.epub"), link)
}

func TestS3_PresignedLink(t *testing.T) {
	s := newTestS3(t, &fakeS3{status: http.StatusOK}, true)

	require.NoError(t, s.MakePublic(context.Background(), "library/x.pdf"))
	link, err := s.ShareableLink(context.Background(), "library/x.pdf")
	require.NoError(t, err)
	assert.Contains(t, link, "X-Amz-Signature=")
	assert.Contains(t, link, "/books/library/x.pdf")
}

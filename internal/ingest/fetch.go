// Package ingest opens remote or local content for streaming into the
// library directory.
package ingest

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const userAgent = "bookpipe/1.0 (+https://github.com/blackwell-systems/bookpipe)"

// Source is an opened input ready for reading. The caller closes Body.
type Source struct {
	// Name is a best-effort filename (no directory) for the content.
	Name string
	// Size is the byte count if known in advance (-1 if unknown).
	Size        int64
	ContentType string
	Body        io.ReadCloser
}

// StatusError is returned when a remote server answers with a non-200 status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
}

// Fetcher opens HTTP URLs and local files.
type Fetcher struct {
	http *http.Client
}

// NewFetcher creates a Fetcher. A zero timeout means 10 minutes, enough for
// large books on slow mirrors.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Fetcher{http: &http.Client{Timeout: timeout}}
}

// NewFetcherWithClient wraps an existing HTTP client.
func NewFetcherWithClient(c *http.Client) *Fetcher {
	return &Fetcher{http: c}
}

// Open resolves input and opens it for reading.
// Supported formats:
//
//	https://example.com/f.pdf  HTTP(S) URL
//	file:///path/to/file.pdf   local file URL
//	/path/to/file.pdf          local file
func (f *Fetcher) Open(ctx context.Context, input string) (*Source, error) {
	switch {
	case strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://"):
		return f.openHTTP(ctx, input)
	case strings.HasPrefix(input, "file://"):
		return openFile(strings.TrimPrefix(input, "file://"))
	case input == "":
		return nil, fmt.Errorf("empty source")
	default:
		return openFile(input)
	}
}

func openFile(p string) (*Source, error) {
	fi, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", p, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%q is a directory", p)
	}
	fh, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	return &Source{
		Name: filepath.Base(p),
		Size: fi.Size(),
		Body: fh,
	}, nil
}

func (f *Fetcher) openHTTP(ctx context.Context, rawURL string) (*Source, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	size := int64(-1)
	if resp.ContentLength > 0 {
		size = resp.ContentLength
	}

	name := filenameFromDisposition(resp.Header.Get("Content-Disposition"))
	if name == "" {
		name = guessFilenameFromURL(resp.Request.URL.String())
	}

	return &Source{
		Name:        name,
		Size:        size,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        resp.Body,
	}, nil
}

func filenameFromDisposition(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return filepath.Base(params["filename"])
}

func guessFilenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "download"
	}
	base := path.Base(u.Path)
	if base == "" || base == "." || base == "/" {
		return "download"
	}
	return base
}

// Extension returns the lower-cased extension of the source name without
// the dot, or "" if there is none.
func (s *Source) Extension() string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(s.Name), "."))
}

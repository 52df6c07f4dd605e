package zlib

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/blackwell-systems/bookpipe/internal/catalog"
)

// Text decodes JSON strings, numbers and null into a string. The eAPI is
// not consistent about which it sends for ids, years and scores.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		*t = Text(data)
	}
	return nil
}

// Result is one search hit, the raw handle passed to FetchDetails.
type Result struct {
	ID           Text   `json:"id"`
	Hash         string `json:"hash"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	Year         Text   `json:"year"`
	Publisher    string `json:"publisher"`
	Language     string `json:"language"`
	Extension    string `json:"extension"`
	Size         string `json:"filesizeString"`
	Rating       Text   `json:"qualityScore"`
	Href         string `json:"href"`
	Cover        string `json:"cover"`
	ISBN         Text   `json:"identifier"`
	DownloadLink string `json:"-"`
}

// Authors splits the author string into names.
func (r Result) Authors() catalog.Authors {
	return catalog.SplitAuthors(r.Author)
}

// ToRecord converts a result into a pending store record.
func (r Result) ToRecord(baseURL, query string) catalog.BookRecord {
	source := r.Href
	if source != "" && !strings.HasPrefix(source, "http") {
		source = strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(source, "/")
	}
	return catalog.BookRecord{
		ID:          string(r.ID),
		Title:       r.Title,
		Authors:     r.Authors(),
		Year:        zeroless(string(r.Year)),
		Publisher:   r.Publisher,
		Language:    r.Language,
		Extension:   strings.ToLower(r.Extension),
		Size:        r.Size,
		Rating:      zeroless(string(r.Rating)),
		SourceURL:   source,
		CoverURL:    r.Cover,
		ISBN:        string(r.ISBN),
		SearchQuery: query,
		Status:      catalog.StatusPending,
		DownloadURL: r.DownloadLink,
	}
}

func zeroless(s string) string {
	if s == "0" {
		return ""
	}
	return s
}

// bookPathRe matches "/book/{id}/{hash}" in a book page URL.
var bookPathRe = regexp.MustCompile(`/book/([^/]+)/([0-9a-zA-Z]+)`)

// HandleFromURL recovers the id/hash handle from a stored source URL.
func HandleFromURL(sourceURL string) (Result, error) {
	m := bookPathRe.FindStringSubmatch(sourceURL)
	if m == nil {
		return Result{}, fmt.Errorf("cannot find book id/hash in %q", sourceURL)
	}
	return Result{ID: Text(m[1]), Hash: m[2]}, nil
}

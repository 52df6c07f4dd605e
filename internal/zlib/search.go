package zlib

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/blackwell-systems/bookpipe/internal/catalog"
)

// SearchOptions narrows a search. Zero values are ignored.
type SearchOptions struct {
	Languages  []string
	Extensions []string
	YearFrom   int
	YearTo     int
}

// Search returns up to limit results for query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	return c.SearchWith(ctx, query, limit, SearchOptions{})
}

// SearchWith is Search with filters.
func (c *Client) SearchWith(ctx context.Context, query string, limit int, opts SearchOptions) ([]Result, error) {
	if err := c.requireLogin("search"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	form := url.Values{
		"message": {query},
		"limit":   {strconv.Itoa(limit)},
	}
	for _, l := range opts.Languages {
		form.Add("languages[]", l)
	}
	for _, e := range opts.Extensions {
		form.Add("extensions[]", e)
	}
	if opts.YearFrom > 0 {
		form.Set("yearFrom", strconv.Itoa(opts.YearFrom))
	}
	if opts.YearTo > 0 {
		form.Set("yearTo", strconv.Itoa(opts.YearTo))
	}

	var resp struct {
		Books []Result `json:"books"`
	}
	if err := c.doForm(ctx, "search", http.MethodPost, "/eapi/book/search", form, &resp); err != nil {
		return nil, err
	}
	if len(resp.Books) > limit {
		resp.Books = resp.Books[:limit]
	}
	return resp.Books, nil
}

// FetchDetails resolves the download link for a search result.
func (c *Client) FetchDetails(ctx context.Context, r Result) (Result, error) {
	if err := c.requireLogin("download_link"); err != nil {
		return r, err
	}
	if r.ID == "" || r.Hash == "" {
		return r, fmt.Errorf("download_link: result is missing id or hash: %w", ErrNotFound)
	}

	var resp struct {
		File struct {
			DownloadLink string `json:"downloadLink"`
			Extension    string `json:"extension"`
		} `json:"file"`
	}
	path := fmt.Sprintf("/eapi/book/%s/%s/file", url.PathEscape(string(r.ID)), url.PathEscape(r.Hash))
	if err := c.doForm(ctx, "download_link", http.MethodGet, path, nil, &resp); err != nil {
		return r, err
	}
	if resp.File.DownloadLink == "" {
		return r, fmt.Errorf("book %s: %w", r.ID, ErrNoDownload)
	}

	r.DownloadLink = resp.File.DownloadLink
	if r.Extension == "" {
		r.Extension = resp.File.Extension
	}
	return r, nil
}

// ResolveDownload returns the authoritative download URL for a stored record.
func (c *Client) ResolveDownload(ctx context.Context, rec catalog.BookRecord) (string, error) {
	handle, err := HandleFromURL(rec.SourceURL)
	if err != nil {
		return "", fmt.Errorf("book %s: %w", rec.ID, err)
	}
	detailed, err := c.FetchDetails(ctx, handle)
	if err != nil {
		return "", err
	}
	return detailed.DownloadLink, nil
}

package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Asset is a file attached to a release.
type Asset struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Size               int64  `json:"size"`
	URL                string `json:"url"`
	BrowserDownloadURL string `json:"browser_download_url"`
	ContentType        string `json:"content_type"`
}

func id(n int64) string { return strconv.FormatInt(n, 10) }

// ListReleaseAssets returns every asset of a release, following pagination.
func (c *Client) ListReleaseAssets(ctx context.Context, owner, repo string, releaseID int64) ([]Asset, error) {
	next := c.endpoint("repos", owner, repo, "releases", id(releaseID), "assets") + "?per_page=100"
	var all []Asset
	for next != "" {
		var page []Asset
		h, err := c.call(ctx, http.MethodGet, next, nil, &page)
		if err != nil {
			return nil, fmt.Errorf("listing assets of release %d: %w", releaseID, err)
		}
		all = append(all, page...)
		next = nextPage(h)
	}
	return all, nil
}

// FindAsset looks an asset up by name. A missing asset is (nil, nil).
func (c *Client) FindAsset(ctx context.Context, owner, repo string, releaseID int64, name string) (*Asset, error) {
	assets, err := c.ListReleaseAssets(ctx, owner, repo, releaseID)
	if err != nil {
		return nil, err
	}
	for i, a := range assets {
		if a.Name == name {
			return &assets[i], nil
		}
	}
	return nil, nil
}

// GetAsset fetches one asset's metadata.
func (c *Client) GetAsset(ctx context.Context, owner, repo string, assetID int64) (*Asset, error) {
	a := new(Asset)
	if _, err := c.call(ctx, http.MethodGet, c.assetURL(owner, repo, assetID), nil, a); err != nil {
		return nil, err
	}
	return a, nil
}

// DeleteAsset removes a release asset.
func (c *Client) DeleteAsset(ctx context.Context, owner, repo string, assetID int64) error {
	_, err := c.call(ctx, http.MethodDelete, c.assetURL(owner, repo, assetID), nil, nil)
	return err
}

// UploadAsset streams size bytes from r into a new asset called name.
func (c *Client) UploadAsset(ctx context.Context, owner, repo string, releaseID int64, name string, r io.Reader, size int64, contentType string) (*Asset, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	u := c.uploadBase() + "/repos/" + owner + "/" + repo + "/releases/" + id(releaseID) +
		"/assets?name=" + url.QueryEscape(name)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, r)
	if err != nil {
		return nil, err
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)

	resp, err := c.send(req)
	if err != nil {
		return nil, fmt.Errorf("upload asset %q: %w", name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	a := new(Asset)
	if err := json.NewDecoder(resp.Body).Decode(a); err != nil {
		return nil, fmt.Errorf("upload asset %q: decoding reply: %w", name, err)
	}
	return a, nil
}

func (c *Client) assetURL(owner, repo string, assetID int64) string {
	return c.endpoint("repos", owner, repo, "releases", "assets", id(assetID))
}

// uploadBase maps the public API host to its upload host. Other hosts
// (GitHub Enterprise, test servers) accept uploads on the API root.
func (c *Client) uploadBase() string {
	return strings.Replace(c.base, "://api.github.com", "://uploads.github.com", 1)
}

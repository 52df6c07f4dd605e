package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// Release represents a GitHub Release.
type Release struct {
	ID      int64  `json:"id"`
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
}

// GetReleaseByTag fetches a release by its tag name.
// Returns ErrNotFound if the tag does not exist.
func (c *Client) GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*Release, error) {
	u := c.endpoint("repos", owner, repo, "releases", "tags", url.PathEscape(tag))
	var r Release
	if _, err := c.call(ctx, http.MethodGet, u, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

type newRelease struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	Body    string `json:"body"`
}

// CreateRelease publishes a non-draft release for tag.
func (c *Client) CreateRelease(ctx context.Context, owner, repo, tag, name string) (*Release, error) {
	in := newRelease{TagName: tag, Name: name, Body: "Books uploaded by bookpipe."}
	r := new(Release)
	if _, err := c.call(ctx, http.MethodPost, c.endpoint("repos", owner, repo, "releases"), in, r); err != nil {
		return nil, fmt.Errorf("create release %q: %w", tag, err)
	}
	return r, nil
}

// EnsureRelease returns the existing release for tag, creating it if absent.
func (c *Client) EnsureRelease(ctx context.Context, owner, repo, tag string) (*Release, error) {
	r, err := c.GetReleaseByTag(ctx, owner, repo, tag)
	if errors.Is(err, ErrNotFound) {
		return c.CreateRelease(ctx, owner, repo, tag, tag)
	}
	return r, err
}

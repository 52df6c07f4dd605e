package github

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// FileContent is the GitHub Contents API response for a file.
type FileContent struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	SHA         string `json:"sha"`
	Size        int    `json:"size"`
	HTMLURL     string `json:"html_url"`
	DownloadURL string `json:"download_url"`
}

// GetFileSHA returns the blob sha of path on branch, or "" when the file
// does not exist yet. The sha is required to overwrite a file.
func (c *Client) GetFileSHA(ctx context.Context, owner, repo, path, branch string) (string, error) {
	u := c.contentsURL(owner, repo, path)
	if branch != "" {
		u += "?ref=" + url.QueryEscape(branch)
	}
	var fc FileContent
	_, err := c.call(ctx, http.MethodGet, u, nil, &fc)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return fc.SHA, nil
}

// PutFile creates or replaces path with content in a single commit.
func (c *Client) PutFile(ctx context.Context, owner, repo, path, branch string, content []byte, message string) (*FileContent, error) {
	sha, err := c.GetFileSHA(ctx, owner, repo, path, branch)
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", path, err)
	}

	body := map[string]any{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(content),
	}
	if sha != "" {
		body["sha"] = sha
	}
	if branch != "" {
		body["branch"] = branch
	}

	var resp struct {
		Content FileContent `json:"content"`
	}
	if _, err := c.call(ctx, http.MethodPut, c.contentsURL(owner, repo, path), body, &resp); err != nil {
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}
	return &resp.Content, nil
}

func (c *Client) contentsURL(owner, repo, path string) string {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return c.endpoint("repos", owner, repo, "contents", strings.Join(segs, "/"))
}

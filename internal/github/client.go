// Package github is a small REST client for the parts of the GitHub API
// bookpipe stores books in: repositories, releases, release assets and the
// contents API.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	publicAPI  = "https://api.github.com"
	apiVersion = "2022-11-28"
	mediaType  = "application/vnd.github+json"
	userAgent  = "bookpipe"
)

// Client is an authenticated GitHub API client.
type Client struct {
	token string
	base  string
	hc    *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its CheckRedirect is
// left untouched.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithTimeout bounds every request, uploads included.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.hc.Timeout = d }
}

// New returns a client for token. An empty apiBase means api.github.com.
func New(token, apiBase string, opts ...Option) *Client {
	if apiBase == "" {
		apiBase = publicAPI
	}
	c := &Client{
		token: token,
		base:  strings.TrimRight(apiBase, "/"),
		hc: &http.Client{
			Timeout:       10 * time.Minute,
			CheckRedirect: dropAuthOnForeignRedirect,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// APIBase returns the API root the client talks to.
func (c *Client) APIBase() string { return c.base }

// endpoint joins escaped path segments onto the API root.
func (c *Client) endpoint(segs ...string) string {
	var b strings.Builder
	b.WriteString(c.base)
	for _, s := range segs {
		b.WriteByte('/')
		b.WriteString(s)
	}
	return b.String()
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	h := req.Header
	if c.token != "" {
		h.Set("Authorization", "Bearer "+c.token)
	}
	if h.Get("Accept") == "" {
		h.Set("Accept", mediaType)
	}
	if h.Get("Content-Type") == "" && req.Body != nil {
		h.Set("Content-Type", "application/json")
	}
	h.Set("X-GitHub-Api-Version", apiVersion)
	h.Set("User-Agent", userAgent)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	if err := statusError(resp); err != nil {
		_ = resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// call sends in as a JSON body (when non-nil) and decodes the reply into out
// (when non-nil). It returns the response headers for callers that page.
func (c *Client) call(ctx context.Context, method, u string, in, out any) (http.Header, error) {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("decoding %s %s: %w", method, req.URL.Path, err)
		}
	}
	return resp.Header, nil
}

func statusError(resp *http.Response) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}
	switch code {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return ErrConflict
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	return &APIError{StatusCode: code, Message: strings.TrimSpace(string(msg))}
}

var nextLink = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// nextPage extracts the rel="next" URL from a Link header, or "".
func nextPage(h http.Header) string {
	m := nextLink.FindStringSubmatch(h.Get("Link"))
	if m == nil {
		return ""
	}
	return m[1]
}

// dropAuthOnForeignRedirect keeps the token from following asset downloads
// to their storage host.
func dropAuthOnForeignRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= 10 {
		return fmt.Errorf("stopped after %d redirects", len(via))
	}
	if len(via) > 0 && !sameAuthority(via[0].URL, req.URL) {
		req.Header.Del("Authorization")
	}
	return nil
}

func sameAuthority(from, to *url.URL) bool {
	if from.Host == to.Host {
		return true
	}
	h := to.Hostname()
	return h == "github.com" || strings.HasSuffix(h, ".github.com")
}

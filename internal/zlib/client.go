// Package zlib is a client for the Z-Library eAPI: login, search and
// download-link resolution.
package zlib

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const defaultBaseURL = "https://z-library.sk"

// Client is a Z-Library eAPI client. Login must succeed before any other
// call.
type Client struct {
	baseURL string
	http    *http.Client

	mu      sync.RWMutex
	userID  string
	userKey string
}

// New creates a Client for baseURL. An empty baseURL uses the public
// mirror; a zero timeout means one minute.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the service root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// LoggedIn reports whether Login has succeeded.
func (c *Client) LoggedIn() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userKey != ""
}

// envelope is the common shape of every eAPI response.
type envelope struct {
	Success int    `json:"success"`
	Error   string `json:"error"`
}

// do executes the request with the session cookies and standard headers.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	c.mu.RLock()
	if c.userKey != "" {
		req.AddCookie(&http.Cookie{Name: "remix_userid", Value: c.userID})
		req.AddCookie(&http.Cookie{Name: "remix_userkey", Value: c.userKey})
	}
	c.mu.RUnlock()

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "bookpipe/1.0")
	if req.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return c.http.Do(req)
}

// doForm sends form (as POST body when non-nil, otherwise GET) and decodes
// the JSON response into out. op names the operation in returned errors.
func (c *Client) doForm(ctx context.Context, op, method, path string, form url.Values, out interface{}) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return &NetworkError{Operation: op, APIMessage: err.Error(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(op, resp); err != nil {
		return err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Operation: op, StatusCode: resp.StatusCode, APIMessage: err.Error(), Err: err}
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return &NetworkError{Operation: op, StatusCode: resp.StatusCode, APIMessage: "malformed response", Err: err}
	}
	if env.Success != 1 {
		return apiError(op, env.Error)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &NetworkError{Operation: op, StatusCode: resp.StatusCode, APIMessage: "malformed response", Err: err}
		}
	}
	return nil
}

// url builds a service URL from a path.
func (c *Client) url(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// checkStatus returns a typed error for non-2xx responses.
func checkStatus(op string, resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return &AuthenticationError{Operation: op, Message: http.StatusText(resp.StatusCode)}
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &NetworkError{Operation: op, StatusCode: resp.StatusCode, APIMessage: strings.TrimSpace(string(body))}
	}
}

// apiError maps a {"success":0} message to the error taxonomy.
func apiError(op, msg string) error {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "login") || strings.Contains(lower, "password") || strings.Contains(lower, "auth"):
		return &AuthenticationError{Operation: op, Message: msg}
	case strings.Contains(lower, "not found"):
		return fmt.Errorf("%s: %w: %s", op, ErrNotFound, msg)
	default:
		if msg == "" {
			msg = "request failed"
		}
		return &NetworkError{Operation: op, APIMessage: msg}
	}
}

// Login authenticates and keeps the session for later calls.
func (c *Client) Login(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return &AuthenticationError{Operation: "login", Message: "email and password are required"}
	}

	var resp struct {
		User struct {
			ID      json.Number `json:"id"`
			UserKey string      `json:"remix_userkey"`
		} `json:"user"`
	}
	form := url.Values{"email": {email}, "password": {password}}
	if err := c.doForm(ctx, "login", http.MethodPost, "/eapi/user/login", form, &resp); err != nil {
		return err
	}
	if resp.User.UserKey == "" {
		return &AuthenticationError{Operation: "login", Message: "no session key in response"}
	}

	c.mu.Lock()
	c.userID = resp.User.ID.String()
	c.userKey = resp.User.UserKey
	c.mu.Unlock()
	return nil
}

func (c *Client) requireLogin(op string) error {
	if !c.LoggedIn() {
		return &AuthenticationError{Operation: op, Err: ErrNotLoggedIn}
	}
	return nil
}

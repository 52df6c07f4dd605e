package zlib

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a book or its file does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotLoggedIn is returned by calls made before a successful Login.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrNoDownload is returned when a book has no downloadable file.
	ErrNoDownload = errors.New("no download link available")
)

// AuthenticationError represents login failures and 401/403 responses.
type AuthenticationError struct {
	Operation string // The operation that required authentication
	Message   string // Message from the service, if any
	Err       error  // Underlying error, if any
}

func (e *AuthenticationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("authentication failed during %s: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("authentication failed during %s", e.Operation)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// NetworkError represents transport failures and unexpected API responses.
type NetworkError struct {
	Operation  string // The operation that failed (e.g. "search", "download_link")
	StatusCode int    // HTTP status code, if applicable (0 for non-HTTP errors)
	APIMessage string // Error message from the API or network layer
	Err        error  // Underlying error, if any
}

func (e *NetworkError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("network error during %s (HTTP %d): %s", e.Operation, e.StatusCode, e.APIMessage)
	}
	return fmt.Sprintf("network error during %s: %s", e.Operation, e.APIMessage)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool {
	var ae *AuthenticationError
	return errors.As(err, &ae) || errors.Is(err, ErrNotLoggedIn)
}

package catalog

import "errors"

var (
	// ErrNotFound is returned when an id is not present in the store.
	ErrNotFound = errors.New("record not found")

	// ErrCorrupt marks a store file that could not be decoded.
	ErrCorrupt = errors.New("store file is corrupt")

	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidUpdate     = errors.New("invalid record update")
)

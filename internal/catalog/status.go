package catalog

import (
	"fmt"
	"strings"
)

// Status is a record's position in the download lifecycle.
type Status string

const (
	StatusPending     Status = "pending"
	StatusDownloading Status = "downloading"
	StatusCompleted   Status = "completed"
	StatusError       Status = "error"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusPending, StatusDownloading, StatusCompleted, StatusError}

// transitions holds the allowed moves out of each status. Staying in the
// same status is always allowed so fields can be merged.
var transitions = map[Status][]Status{
	StatusPending:     {StatusDownloading},
	StatusDownloading: {StatusCompleted, StatusError, StatusPending},
	StatusError:       {StatusPending},
	StatusCompleted:   nil,
}

func (s Status) String() string { return string(s) }

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether a record in status s may move to next.
func (s Status) CanTransition(next Status) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseStatus maps user input to a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown status %q (want pending, downloading, completed or error)", s)
	}
	return st, nil
}

// normalizeStatus treats a blank or unrecognized status from a hand-edited
// file as pending.
func normalizeStatus(s Status) Status {
	st := Status(strings.ToLower(strings.TrimSpace(string(s))))
	if !st.Valid() {
		return StatusPending
	}
	return st
}

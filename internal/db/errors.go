package db

import (
	"errors"
	"fmt"
)

// Shared fetch errors used across Store implementations
var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidQuery = errors.New("invalid query")
	ErrUnavailable  = errors.New("database unavailable")
)

// FetchError is returned when the row query service fails. Message is safe to
// show to visitors.
type FetchError struct {
	Collection string
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

var fetchMessages = map[string]string{
	CollectionBranches:    "Failed to load branch data",
	CollectionEvents:      "Failed to load events",
	CollectionTeamMembers: "Failed to load team members",
	CollectionData:        "Failed to load page content",
}

func fetchFailed(collection string, err error) error {
	msg, ok := fetchMessages[collection]
	if !ok {
		msg = "An unexpected error occurred"
	}
	return &FetchError{Collection: collection, Message: msg, Err: err}
}

// UserMessage returns the visitor-facing text for err.
func UserMessage(err error) string {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Message
	}
	if errors.Is(err, ErrNotFound) {
		return "Not found"
	}
	return "An unexpected error occurred"
}

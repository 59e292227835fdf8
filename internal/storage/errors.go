package storage

import "fmt"

// ListError is returned when an image folder could not be listed. It is
// scoped to the folder; callers show it on the affected card only.
type ListError struct {
	Prefix string
	Err    error
}

func (e *ListError) Error() string {
	return fmt.Sprintf("list %s: %v", e.Prefix, e.Err)
}

func (e *ListError) Unwrap() error { return e.Err }

// Message is the visitor-facing text.
func (e *ListError) Message() string { return "Failed to load images" }

// Package shell holds the render-state machinery shared by every page:
// per-section result states, the stale-result guard, the lightbox overlay and
// the concurrent batch helper.
package shell

import (
	"errors"

	"github.com/curingwithcare/care-site/internal/db"
	"github.com/curingwithcare/care-site/internal/storage"
)

// State is the render state of a page section.
type State string

const (
	StateLoading  State = "loading"
	StateSuccess  State = "success"
	StateEmpty    State = "empty"
	StateError    State = "error"
	StateNotFound State = "not_found"
)

// Section is one independently loaded block of a page.
type Section[T any] struct {
	Name    string `json:"name"`
	State   State  `json:"state"`
	Items   []T    `json:"items"`
	Message string `json:"message,omitempty"`
	// RetryURL re-runs only this section's fetch.
	RetryURL string `json:"retry_url,omitempty"`
}

// NewSection returns a section in the loading state.
func NewSection[T any](name, retryURL string) Section[T] {
	return Section[T]{Name: name, State: StateLoading, Items: []T{}, RetryURL: retryURL}
}

// Settle moves the section to its terminal state. Items are only kept on
// success; an error never shows partial data.
func (s *Section[T]) Settle(items []T, err error) {
	s.Items = []T{}
	s.Message = ""
	switch {
	case errors.Is(err, db.ErrNotFound):
		s.State = StateNotFound
		s.Message = db.UserMessage(err)
	case err != nil:
		s.State = StateError
		s.Message = Message(err)
	case len(items) == 0:
		s.State = StateEmpty
	default:
		s.State = StateSuccess
		s.Items = items
	}
}

// Visible reports whether the section should be rendered at all. Empty
// sections are omitted from the page.
func (s Section[T]) Visible() bool { return s.State != StateEmpty }

// Failed reports whether the section shows an error banner.
func (s Section[T]) Failed() bool { return s.State == StateError }

// Message returns the visitor-facing text for err.
func Message(err error) string {
	var le *storage.ListError
	if errors.As(err, &le) {
		return le.Message()
	}
	return db.UserMessage(err)
}

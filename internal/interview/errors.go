package interview

import "errors"

var (
	// ErrNotFound indicates an unknown candidate id.
	ErrNotFound = errors.New("candidate not found")
	// ErrUnavailable indicates the AI collaborators are not configured.
	ErrUnavailable = errors.New("ai unavailable")
	// ErrEmptyAnswer indicates a manual submission with no answer text.
	ErrEmptyAnswer = errors.New("answer text required")
)

package corpus

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a hymn number that is not part of the corpus.
var ErrNotFound = errors.New("hymn not found")

// CorruptError reports an unusable corpus database. Loading is
// all-or-nothing: a CorruptError means no records are available.
type CorruptError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *CorruptError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corpus corrupt: %s: %v", e.Reason, e.Err)
	}
	return "corpus corrupt: " + e.Reason
}

// Unwrap returns the underlying cause, if any.
func (e *CorruptError) Unwrap() error {
	return e.Err
}

package assessment

import (
	"errors"
	"fmt"
)

var (
	// ErrNoQuestions means every generation tier came back empty.
	ErrNoQuestions = errors.New("failed to generate questions from PDF")

	ErrInvalidRequest = errors.New("invalid request")
)

// PersistenceError wraps a storage failure. Scoring has no fallback, so it
// surfaces as a server error.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

package study

import (
	"errors"
	"fmt"

	"github.com/abhisek/studyloop/internal/review"
)

// ErrPersistence reports that a computed schedule could not be saved. The
// operation is safe to retry.
var ErrPersistence = errors.New("study: persistence failed")

// ErrInvalidInput reports a malformed create or update request.
var ErrInvalidInput = errors.New("study: invalid input")

// PersistenceError keeps the computed result of a review whose write failed,
// so callers can show it or retry.
type PersistenceError struct {
	ItemID   string
	Attempts int
	Result   review.Result
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("save review of %s after %d attempt(s): %v", e.ItemID, e.Attempts, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Is makes every PersistenceError match ErrPersistence.
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

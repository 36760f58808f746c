package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write violates a unique constraint.
var ErrConflict = errors.New("unique constraint violation")

const uniqueViolation = pq.ErrorCode("23505")

// ConflictError names the unique constraint a write violated.
type ConflictError struct {
	Constraint string
	Err        error
}

func (e *ConflictError) Error() string {
	return "unique constraint " + e.Constraint + " violated"
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// mapWriteError turns postgres unique violations into *ConflictError and
// returns every other error unchanged.
func mapWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return &ConflictError{Constraint: pqErr.Constraint, Err: err}
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

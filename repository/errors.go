package repository

import "errors"

var (
	// ErrNotFound means no record matched the lookup predicate.
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicateEntry means an insert violated a unique constraint.
	ErrDuplicateEntry = errors.New("repository: duplicate entry")
	// ErrVersionConflict means a conditional write lost an optimistic
	// concurrency race and the whole sequence should be retried.
	ErrVersionConflict = errors.New("repository: version conflict")
)

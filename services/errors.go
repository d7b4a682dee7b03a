package services

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure categories surfaced by the services.
// Controllers map kinds to HTTP status codes; the services never pick a
// status themselves.
type ErrorKind string

const (
	KindValidation    ErrorKind = "VALIDATION_ERROR"
	KindNotFound      ErrorKind = "NOT_FOUND_ERROR"
	KindAuthorization ErrorKind = "AUTHORIZATION_ERROR"
	KindConflict      ErrorKind = "CONFLICT_ERROR"
	KindPersistence   ErrorKind = "PERSISTENCE_ERROR"
)

// Error carries a machine-readable kind and a human-readable message.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func newNotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func newAuthorizationError(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

func newConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func newPersistenceError(message string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: message, Err: err}
}

// KindOf extracts the error kind, defaulting to persistence for errors that
// escaped the taxonomy.
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindPersistence
}

// MessageOf extracts the human-readable message of a service error.
func MessageOf(err error) string {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Message
	}
	return "internal server error"
}

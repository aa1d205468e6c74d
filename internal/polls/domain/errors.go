package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateVote  = errors.New("user has already voted in this project")
	ErrProjectExpired = errors.New("project has already expired")
)

// ValidationError reports malformed input. Client error, never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a reference that did not resolve, carrying the
// entity kind, the field searched, and the value that missed.
type NotFoundError struct {
	Resource string
	Field    string
	Value    any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with %s: %v", e.Resource, e.Field, e.Value)
}

func NotFound(resource, field string, value any) error {
	return &NotFoundError{Resource: resource, Field: field, Value: value}
}

// ConflictError wraps the two terminal voting conflicts: expiration and the
// storage-layer duplicate-vote signal.
type ConflictError struct {
	Err error
}

func (e *ConflictError) Error() string { return e.Err.Error() }
func (e *ConflictError) Unwrap() error { return e.Err }

func Conflict(err error) error {
	return &ConflictError{Err: err}
}

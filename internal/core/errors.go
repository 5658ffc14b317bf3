package core

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors: caller-correctable, never retried.
var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidKind     = errors.New("invalid kind")
	ErrInvalidDate     = errors.New("invalid date")
	ErrEmptyUser       = errors.New("empty user id")
	ErrEmptyCategory   = errors.New("empty category name")
	ErrEmptyTag        = errors.New("empty tag name")
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownTags     = errors.New("unknown tags")
	ErrInvalidRange    = errors.New("invalid range")
)

var (
	// ErrConflict marks a concurrent modification of the same user's ledger.
	ErrConflict = errors.New("conflicting concurrent update")

	// ErrStorage marks an infrastructure failure in the persistence layer.
	ErrStorage = errors.New("storage error")

	// ErrAccountNotFound is returned by balance queries for unseeded users.
	ErrAccountNotFound = errors.New("account not found")
)

// UnknownCategoryError names the category that failed validation.
type UnknownCategoryError struct {
	UserID string
	Name   string
	Kind   Kind
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category: %q (%s) for user %s", e.Name, e.Kind, e.UserID)
}

func (e *UnknownCategoryError) Unwrap() error {
	return ErrUnknownCategory
}

// UnknownTagsError lists every requested tag that does not exist.
type UnknownTagsError struct {
	UserID  string
	Missing []string
}

func (e *UnknownTagsError) Error() string {
	return fmt.Sprintf("unknown tags for user %s: %s", e.UserID, strings.Join(e.Missing, ", "))
}

func (e *UnknownTagsError) Unwrap() error {
	return ErrUnknownTags
}

// ConflictError is surfaced once the retry budget is exhausted.
type ConflictError struct {
	UserID   string
	Attempts int
	Err      error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict for user %s after %d attempts: %v", e.UserID, e.Attempts, e.Err)
}

func (e *ConflictError) Unwrap() []error {
	return []error{ErrConflict, e.Err}
}

// StorageError wraps a driver error with the operation that failed.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

// IsValidation returns true if the error is due to invalid caller input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidKind) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrEmptyUser) ||
		errors.Is(err, ErrEmptyCategory) ||
		errors.Is(err, ErrEmptyTag) ||
		errors.Is(err, ErrUnknownCategory) ||
		errors.Is(err, ErrUnknownTags) ||
		errors.Is(err, ErrInvalidRange)
}

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}

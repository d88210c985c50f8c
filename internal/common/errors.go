// Package common holds the error taxonomy shared by the store, service and API layers.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an update or delete matched no row, or when
	// the service required a lookup to succeed. Repository lookups signal
	// absence with a nil result instead.
	ErrNotFound = errors.New("not found")

	// ErrCategoryInUse blocks deleting a category that transactions still reference.
	ErrCategoryInUse = errors.New("category is referenced by transactions")

	// ErrEmptyReport is returned when a report is requested over zero transactions.
	ErrEmptyReport = errors.New("no transactions to export")

	ErrDuplicateEmail     = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidSession     = errors.New("invalid or expired session")

	// ErrShareFailed wraps any failure of the export surface.
	ErrShareFailed = errors.New("failed to share report")
)

// ValidationError reports a rejected input field. The operation it guards is never attempted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// StoreError marks an I/O failure coming from the persistence layer.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// WrapStore wraps err as a StoreError. A nil err stays nil.
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// IsStore reports whether err is, or wraps, a StoreError.
func IsStore(err error) bool {
	var s *StoreError
	return errors.As(err, &s)
}

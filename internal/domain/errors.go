package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrKeyMismatch     = errors.New("key mismatch")
	ErrIncompleteIndex = errors.New("incomplete index")
	ErrCorruptStore    = errors.New("corrupt store")
	ErrEmptyStore      = errors.New("store is empty")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
// It is returned for malformed build input and for internal size mismatches.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// KeyMismatchError reports an entry whose key the index does not know.
type KeyMismatchError struct {
	Key string
}

func (e *KeyMismatchError) Error() string {
	return fmt.Sprintf("key mismatch: entry key %q is not in the index", e.Key)
}

func (e *KeyMismatchError) Unwrap() error { return ErrKeyMismatch }

// IncompleteIndexError reports index IDs that received no entry.
// Missing holds at most a handful of IDs; Count is the full number.
type IncompleteIndexError struct {
	Count   int
	Missing []uint32
	Keys    []string
}

func (e *IncompleteIndexError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "incomplete index: %d ids have no entry", e.Count)
	for i, id := range e.Missing {
		if i == 0 {
			b.WriteString(" (")
		} else {
			b.WriteString(", ")
		}
		if i < len(e.Keys) {
			fmt.Fprintf(&b, "%d=%q", id, e.Keys[i])
		} else {
			fmt.Fprintf(&b, "%d", id)
		}
	}
	if len(e.Missing) > 0 {
		if e.Count > len(e.Missing) {
			b.WriteString(", ...")
		}
		b.WriteString(")")
	}
	return b.String()
}

func (e *IncompleteIndexError) Unwrap() error { return ErrIncompleteIndex }

// CorruptStoreError is returned when persisted artifacts cannot be loaded as
// a consistent pair. ID is -1 when the problem is not tied to one record.
type CorruptStoreError struct {
	Path   string
	Reason string
	ID     int
	Want   int
	Got    int
	cause  error
}

// NewCorruptStoreError creates a CorruptStoreError not tied to a record.
func NewCorruptStoreError(path, reason string, cause error) *CorruptStoreError {
	return &CorruptStoreError{Path: path, Reason: reason, ID: -1, cause: cause}
}

// NewCorruptRecordError creates a CorruptStoreError for the record with the
// given identifier.
func NewCorruptRecordError(path, reason string, id int, cause error) *CorruptStoreError {
	return &CorruptStoreError{Path: path, Reason: reason, ID: id, cause: cause}
}

func (e *CorruptStoreError) Error() string {
	msg := fmt.Sprintf("corrupt store %s: %s", e.Path, e.Reason)
	if e.ID >= 0 {
		msg += fmt.Sprintf(" (id %d)", e.ID)
	}
	if e.Want != e.Got {
		msg += fmt.Sprintf(" (want %d, got %d)", e.Want, e.Got)
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

// Unwrap exposes both ErrCorruptStore and the underlying cause, if any.
func (e *CorruptStoreError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrCorruptStore}
	}
	return []error{ErrCorruptStore, e.cause}
}

package model

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict marks duplicate-id or unique-constraint violations.
	ErrConflict = errors.New("conflict")
	// ErrValidation marks a value that failed entity validation.
	ErrValidation = errors.New("validation error")
)

// ValidationError reports an invalid field with a user-facing message.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

// IsValidationError checks if an error is a validation error (including wrapped errors).
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// ConflictError represents a unique-constraint or duplicate-resource error.
type ConflictError struct {
	Field   string
	Message string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %s", e.Field, e.Message)
}

func (e ConflictError) Unwrap() error { return ErrConflict }

// NewConflictError constructs ConflictError.
func NewConflictError(field, message string) ConflictError {
	return ConflictError{Field: field, Message: message}
}

// IsConflictError checks if error is ConflictError.
func IsConflictError(err error) bool {
	var ce ConflictError
	return errors.As(err, &ce)
}

// NotFoundError represents a missing related resource, e.g. a post created
// against a persona that does not exist. Plain point reads on a missing id
// return nil instead of this error.
type NotFoundError struct {
	Field   string
	Message string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("not found %s: %s", e.Field, e.Message)
}

// NewNotFoundError constructs NotFoundError.
func NewNotFoundError(field, message string) NotFoundError {
	return NotFoundError{Field: field, Message: message}
}

// IsNotFoundError checks if error is NotFoundError.
func IsNotFoundError(err error) bool {
	var ne NotFoundError
	return errors.As(err, &ne)
}

// MappingError reports a stored record that cannot be decoded into its
// entity (corrupt or partial data). It is distinct from not-found.
type MappingError struct {
	Entity string
	Field  string
	Cause  error
}

func (e MappingError) Error() string {
	return fmt.Sprintf("mapping %s.%s: %v", e.Entity, e.Field, e.Cause)
}

func (e MappingError) Unwrap() error { return e.Cause }

// NewMappingError constructs MappingError.
func NewMappingError(entity, field string, cause error) MappingError {
	return MappingError{Entity: entity, Field: field, Cause: cause}
}

// IsMappingError checks if error is MappingError.
func IsMappingError(err error) bool {
	var me MappingError
	return errors.As(err, &me)
}

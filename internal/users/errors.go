package users

import (
	"errors"
	"fmt"
)

// ValidationError represents malformed input such as a blank name or a badly shaped email
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s' (value: %v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ConflictError represents a uniqueness violation, e.g. an email that is already claimed
type ConflictError struct {
	Field   string
	Value   interface{}
	Message string
	Cause   error
}

func (e *ConflictError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("conflict error for field '%s' (value: %v): %s (caused by: %v)", e.Field, e.Value, e.Message, e.Cause)
	}
	return fmt.Sprintf("conflict error for field '%s' (value: %v): %s", e.Field, e.Value, e.Message)
}

func (e *ConflictError) Unwrap() error {
	return e.Cause
}

// NewEmailConflictError creates an error for an email owned by another user
func NewEmailConflictError(email string) *ConflictError {
	return &ConflictError{
		Field:   "email",
		Value:   email,
		Message: fmt.Sprintf("user with email '%s' already exists", email),
	}
}

// NewEmailConflictErrorWithCause is used when the store's unique constraint rejected the write
func NewEmailConflictErrorWithCause(email string, cause error) *ConflictError {
	err := NewEmailConflictError(email)
	err.Cause = cause
	return err
}

// NotFoundError represents a lookup by id or email that matched nothing
type NotFoundError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found error for field '%s' (value: %v): %s", e.Field, e.Value, e.Message)
}

// NewUserNotFoundByIDError creates an error for a missing user id
func NewUserNotFoundByIDError(id int64) *NotFoundError {
	return &NotFoundError{
		Field:   "id",
		Value:   id,
		Message: fmt.Sprintf("user with ID '%d' not found", id),
	}
}

// NewUserNotFoundByEmailError creates an error for a missing email
func NewUserNotFoundByEmailError(email string) *NotFoundError {
	return &NotFoundError{
		Field:   "email",
		Value:   email,
		Message: fmt.Sprintf("user with email '%s' not found", email),
	}
}

func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsConflictError(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsNotFoundError(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

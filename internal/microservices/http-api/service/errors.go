package service

import (
	"errors"
	"fmt"

	"yamdb/internal/microservices/http-api/policy"
	"yamdb/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

var (
	ErrPermissionDenied = errors.New("you do not have permission to perform this action")
	ErrNotAuthenticated = errors.New("authentication credentials were not provided")
	ErrInvalidToken     = errors.New("invalid token")
)

// ValidationError is a client mistake tied to one input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ConflictError wraps a unique-index violation the pre-checks did not catch.
type ConflictError struct {
	Resource string
	Err      error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists", e.Resource)
}

func (e *ConflictError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// translate maps repository errors onto the service error types. Anything
// unrecognised is returned untouched and ends up as a 500.
func translate(resource string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &NotFoundError{Resource: resource}
	case errors.Is(err, repository.ErrDuplicate):
		return &ConflictError{Resource: resource, Err: err}
	default:
		return err
	}
}

// authorize turns a policy decision into the matching service error.
func authorize(d policy.Decision) error {
	switch d {
	case policy.Allow:
		return nil
	case policy.Unauthenticated:
		return ErrNotAuthenticated
	case policy.Forbidden:
		return ErrPermissionDenied
	}
	return ErrPermissionDenied
}

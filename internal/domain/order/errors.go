package order

import (
	"fmt"
	"strings"

	"github.com/ikkasa/orderhub/internal/domain/shared"
)

// ValidationError reports the single field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("Missing or invalid field: %s", e.Field)
	}
	return fmt.Sprintf("Missing or invalid field: %s (%s)", e.Field, e.Reason)
}

// Unwrap lets callers match with errors.Is(err, shared.ErrInvalidInput).
func (e *ValidationError) Unwrap() error {
	return shared.ErrInvalidInput
}

// ConflictError lists the order ids that already exist.
type ConflictError struct {
	OrderIDs []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("orders already exist: %s", strings.Join(e.OrderIDs, ", "))
}

// Unwrap lets callers match with errors.Is(err, shared.ErrAlreadyExists).
func (e *ConflictError) Unwrap() error {
	return shared.ErrAlreadyExists
}

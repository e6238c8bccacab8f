// Package shared holds the error taxonomy and value helpers used across the
// order domain.
package shared

import "fmt"

// Error codes of the domain taxonomy. The HTTP and GraphQL layers map each one
// to an API code.
const (
	CodeNotFound      = "NOT_FOUND"
	CodeAlreadyExists = "ALREADY_EXISTS"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeUpstream      = "UPSTREAM_FAILURE"
)

// DomainError is a classified failure. Two DomainErrors with the same code
// match under errors.Is, so a sentinel can be refined with a message or a
// cause without losing its classification.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func (e *DomainError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.cause }

// Is matches any DomainError carrying the same code
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// Withf returns a copy of e with a formatted message
func (e *DomainError) Withf(format string, args ...any) *DomainError {
	return &DomainError{Code: e.Code, Message: fmt.Sprintf(format, args...), cause: e.cause}
}

// Wrap returns a copy of e recording cause
func (e *DomainError) Wrap(cause error) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, cause: cause}
}

var (
	ErrNotFound      = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput  = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrUpstream      = NewDomainError(CodeUpstream, "Upstream service request failed")
)

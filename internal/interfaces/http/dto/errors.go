package dto

import (
	"net/http"

	"github.com/ikkasa/orderhub/internal/domain/shared"
)

// API error codes. Format: ERR_<CATEGORY>
const (
	// ErrCodeValidation is used for missing or invalid input fields
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests, such as invalid JSON or ids
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeUnauthorized is used when a bearer token is missing or invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeConflict is used when records already exist
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeTooLarge is used when the request body exceeds the configured limit
	ErrCodeTooLarge = "ERR_REQUEST_TOO_LARGE"
	// ErrCodeUpstream is used when Shopify or the carrier fails
	ErrCodeUpstream = "ERR_UPSTREAM"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeConflict:     http.StatusConflict,
	ErrCodeTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeUpstream:     http.StatusInternalServerError,
	ErrCodeInternal:     http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps shared.DomainError codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	shared.CodeInvalidInput:  ErrCodeValidation,
	shared.CodeNotFound:      ErrCodeNotFound,
	shared.CodeAlreadyExists: ErrCodeConflict,
	shared.CodeUpstream:      ErrCodeUpstream,
}

// NormalizeErrorCode converts a domain error code to its API code.
// Unmapped codes become ErrCodeInternal.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return ErrCodeInternal
}

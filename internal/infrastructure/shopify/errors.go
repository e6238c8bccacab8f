package shopify

import (
	"errors"
	"fmt"

	"github.com/ikkasa/orderhub/internal/domain/shared"
)

var (
	// ErrMalformedPage is returned for a page that cannot be decoded or that
	// carries API errors
	ErrMalformedPage = errors.New("malformed shopify page")

	// ErrTooManyPages is returned when a walk exceeds the configured page limit
	ErrTooManyPages = errors.New("shopify page limit exceeded")
)

// HTTPError is a non-2xx Admin API response
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("shopify responded %d: %s", e.StatusCode, e.Body)
}

// Unwrap classifies the failure as an upstream error.
func (e *HTTPError) Unwrap() error {
	return shared.ErrUpstream
}

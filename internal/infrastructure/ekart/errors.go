package ekart

import (
	"encoding/json"
	"fmt"

	"github.com/ikkasa/orderhub/internal/domain/shared"
)

// UpstreamError is a non-2xx carrier response
type UpstreamError struct {
	StatusCode int
	Body       []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("ekart responded %d: %s", e.StatusCode, e.Body)
}

// Unwrap classifies the failure as an upstream error.
func (e *UpstreamError) Unwrap() error {
	return shared.ErrUpstream
}

// BodyValue returns the body as decoded JSON when it is valid JSON and as a
// string otherwise.
func (e *UpstreamError) BodyValue() any {
	if json.Valid(e.Body) {
		return json.RawMessage(e.Body)
	}
	return string(e.Body)
}

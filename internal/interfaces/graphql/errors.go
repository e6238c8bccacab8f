package graphql

import (
	"context"
	"errors"

	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/ikkasa/orderhub/internal/domain/order"
	"github.com/ikkasa/orderhub/internal/domain/shared"
	"github.com/ikkasa/orderhub/internal/infrastructure/logger"
	"github.com/ikkasa/orderhub/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// codedError carries an API error code in the GraphQL extensions
type codedError struct {
	code       string
	message    string
	extensions map[string]any
	err        error
}

var _ gqlerrors.ExtendedError = (*codedError)(nil)

func (e *codedError) Error() string { return e.message }

func (e *codedError) Unwrap() error { return e.err }

// Extensions implements gqlerrors.ExtendedError
func (e *codedError) Extensions() map[string]any {
	ext := map[string]any{"code": e.code}
	for k, v := range e.extensions {
		ext[k] = v
	}
	return ext
}

// toGraphQLError classifies a service error the same way the REST handlers do.
// Unclassified errors are logged and masked.
func toGraphQLError(ctx context.Context, err error) error {
	var (
		validationErr *order.ValidationError
		conflictErr   *order.ConflictError
		domainErr     *shared.DomainError
	)
	switch {
	case errors.As(err, &validationErr):
		return &codedError{
			code:       dto.ErrCodeValidation,
			message:    validationErr.Error(),
			extensions: map[string]any{"field": validationErr.Field},
			err:        err,
		}
	case errors.As(err, &conflictErr):
		return &codedError{
			code:       dto.ErrCodeConflict,
			message:    conflictErr.Error(),
			extensions: map[string]any{"orderIds": conflictErr.OrderIDs},
			err:        err,
		}
	case errors.Is(err, shared.ErrNotFound):
		return &codedError{code: dto.ErrCodeNotFound, message: "Order not found", err: err}
	case errors.As(err, &domainErr):
		code := dto.NormalizeErrorCode(domainErr.Code)
		message := domainErr.Message
		if code == dto.ErrCodeValidation || code == dto.ErrCodeUpstream {
			message = err.Error()
		}
		return &codedError{code: code, message: message, err: err}
	default:
		logger.FromContext(ctx).Error("GraphQL resolver failed", zap.Error(err))
		return &codedError{code: dto.ErrCodeInternal, message: "An unexpected error occurred", err: err}
	}
}

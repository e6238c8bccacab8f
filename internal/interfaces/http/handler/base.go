// Package handler implements the orderhub HTTP endpoints.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkasa/orderhub/internal/domain/order"
	"github.com/ikkasa/orderhub/internal/domain/shared"
	"github.com/ikkasa/orderhub/internal/infrastructure/ekart"
	"github.com/ikkasa/orderhub/internal/infrastructure/logger"
	"github.com/ikkasa/orderhub/internal/infrastructure/shopify"
	"github.com/ikkasa/orderhub/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// RequestIDHeader is the header carrying the request id
const RequestIDHeader = "X-Request-ID"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(logger.RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDHeader)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Message sends a success response carrying only a message
func (h *BaseHandler) Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, dto.NewMessageResponse(message))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponse(code, message, getRequestID(c)))
}

// ErrorWithDetails sends an error response carrying structured details
func (h *BaseHandler) ErrorWithDetails(c *gin.Context, statusCode int, code, message string, details any) {
	c.JSON(statusCode, dto.NewErrorResponseWithDetails(code, message, getRequestID(c), details))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError translates service errors into HTTP responses.
//
// Validation errors answer 400 with the field, conflicts 409 with the
// colliding ids, and upstream failures 500 with the verbatim upstream status
// and body. Anything unclassified is logged and answered as a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var (
		validationErr *order.ValidationError
		conflictErr   *order.ConflictError
		carrierErr    *ekart.UpstreamError
		shopifyErr    *shopify.HTTPError
		domainErr     *shared.DomainError
	)
	switch {
	case errors.As(err, &validationErr):
		h.ErrorWithDetails(c, http.StatusBadRequest, dto.ErrCodeValidation, validationErr.Error(),
			dto.ValidationDetails{Field: validationErr.Field})
	case errors.As(err, &conflictErr):
		h.ErrorWithDetails(c, http.StatusConflict, dto.ErrCodeConflict, conflictErr.Error(),
			dto.ConflictDetails{OrderIDs: conflictErr.OrderIDs})
	case errors.As(err, &carrierErr):
		h.ErrorWithDetails(c, http.StatusInternalServerError, dto.ErrCodeUpstream, "Ekart create failed",
			dto.UpstreamDetails{Status: carrierErr.StatusCode, Body: carrierErr.BodyValue()})
	case errors.As(err, &shopifyErr):
		h.ErrorWithDetails(c, http.StatusInternalServerError, dto.ErrCodeUpstream, "Shopify request failed",
			dto.UpstreamDetails{Status: shopifyErr.StatusCode, Body: shopifyErr.Body})
	case errors.As(err, &domainErr):
		code := dto.NormalizeErrorCode(domainErr.Code)
		message := domainErr.Message
		if code == dto.ErrCodeValidation || code == dto.ErrCodeUpstream {
			message = err.Error()
		}
		h.Error(c, dto.GetHTTPStatus(code), code, message)
	default:
		logger.FromContext(c.Request.Context()).Error("Request failed", zap.Error(err))
		h.InternalError(c, "An unexpected error occurred")
	}
}

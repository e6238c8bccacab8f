package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	orderapp "github.com/ikkasa/orderhub/internal/application/order"
	"github.com/ikkasa/orderhub/internal/infrastructure/ekart"
	"github.com/ikkasa/orderhub/internal/interfaces/http/dto"
)

// ReturnService is the reverse-logistics surface the handler depends on
type ReturnService interface {
	CreateReturn(ctx context.Context, req ekart.ReturnRequest) (*orderapp.ReturnResult, error)
}

// EkartHandler books return shipments with Ekart
type EkartHandler struct {
	BaseHandler
	svc ReturnService
}

// NewEkartHandler creates a new EkartHandler
func NewEkartHandler(svc ReturnService) *EkartHandler {
	return &EkartHandler{svc: svc}
}

// RegisterRoutes mounts the return endpoint on rg
func (h *EkartHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ekart/return", h.CreateReturn)
}

// CreateReturn handles POST /ekart/return
func (h *EkartHandler) CreateReturn(c *gin.Context) {
	var req ekart.ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeTooLarge, "Request body exceeds maximum allowed size")
			return
		}
		h.BadRequest(c, "Invalid JSON body: "+err.Error())
		return
	}

	result, err := h.svc.CreateReturn(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "Ekart return shipment created successfully",
		Data:    result,
	})
}

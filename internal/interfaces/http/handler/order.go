package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderapp "github.com/ikkasa/orderhub/internal/application/order"
	"github.com/ikkasa/orderhub/internal/domain/order"
	"github.com/ikkasa/orderhub/internal/domain/shared"
	"github.com/ikkasa/orderhub/internal/interfaces/http/dto"
)

// OrderService is the order use-case surface the handler depends on.
// *orderapp.OrderService satisfies it.
type OrderService interface {
	Create(ctx context.Context, input order.Patch) (*orderapp.OrderResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*orderapp.OrderResponse, error)
	List(ctx context.Context, page, limit int) (*orderapp.ListResponse, error)
	Update(ctx context.Context, id uuid.UUID, input order.Patch) (*orderapp.OrderResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderHandler handles manual order endpoints
type OrderHandler struct {
	BaseHandler
	svc OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// RegisterRoutes mounts the order endpoints on rg
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	orders.POST("", h.Create)
	orders.GET("", h.List)
	orders.GET("/:id", h.Get)
	orders.PUT("/:id", h.Update)
	orders.DELETE("/:id", h.Delete)
}

// Create handles POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	var input order.Patch
	if !h.bindPatch(c, &input) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List handles GET /orders?page=&limit=
func (h *OrderHandler) List(c *gin.Context) {
	page := queryInt(c, "page")
	limit := queryInt(c, "limit")

	resp, err := h.svc.List(c.Request.Context(), page, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(resp, resp.Total, resp.Page, resp.Limit))
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleOrderError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update handles PUT /orders/:id. Keys missing from the body are left as stored.
func (h *OrderHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var input order.Patch
	if !h.bindPatch(c, &input) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, input)
	if err != nil {
		h.handleOrderError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /orders/:id
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.handleOrderError(c, err)
		return
	}
	h.Message(c, "Order deleted")
}

func (h *OrderHandler) handleOrderError(c *gin.Context, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		h.NotFound(c, "Order not found")
		return
	}
	h.HandleError(c, err)
}

func (h *OrderHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *OrderHandler) bindPatch(c *gin.Context, p *order.Patch) bool {
	if err := c.ShouldBindJSON(p); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeTooLarge, "Request body exceeds maximum allowed size")
			return false
		}
		h.BadRequest(c, "Invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// queryInt parses a query parameter, returning 0 when it is missing or not
// a number so the service defaults apply.
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

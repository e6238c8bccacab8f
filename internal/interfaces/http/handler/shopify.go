package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	orderapp "github.com/ikkasa/orderhub/internal/application/order"
)

// SyncService is the Shopify sync surface the handler depends on
type SyncService interface {
	Sync(ctx context.Context, api string, mode orderapp.SyncMode) (*orderapp.SyncResult, error)
}

// ShopifyHandler triggers Shopify order pulls
type ShopifyHandler struct {
	BaseHandler
	svc SyncService
}

// NewShopifyHandler creates a new ShopifyHandler
func NewShopifyHandler(svc SyncService) *ShopifyHandler {
	return &ShopifyHandler{svc: svc}
}

// RegisterRoutes mounts the sync endpoint on rg
func (h *ShopifyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/shopify/sync-orders", h.SyncOrders)
}

// SyncOrders handles GET /shopify/sync-orders?api=rest|graphql&mode=overwrite|insert-only.
// Empty parameters fall back to the configured defaults.
func (h *ShopifyHandler) SyncOrders(c *gin.Context) {
	result, err := h.svc.Sync(c.Request.Context(), c.Query("api"), orderapp.SyncMode(c.Query("mode")))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

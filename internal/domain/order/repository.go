package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the order store.
type Repository interface {
	// Create inserts one order. Duplicate natural keys return shared.ErrAlreadyExists.
	Create(ctx context.Context, o *Order) error
	// CreateAll inserts every order in one transaction, or none of them.
	CreateAll(ctx context.Context, orders []*Order) error
	// Save writes every column of an existing order.
	Save(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByOrderID(ctx context.Context, orderID string) (*Order, error)
	FindByShopifyID(ctx context.Context, shopifyID string) (*Order, error)
	// FindPage returns one page, newest order date first, and the total count.
	FindPage(ctx context.Context, page, limit int) ([]*Order, int64, error)
	// ExistingOrderIDs returns the subset of ids already stored.
	ExistingOrderIDs(ctx context.Context, ids []string) ([]string, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ikkasa/orderhub/internal/domain/order"
	"github.com/ikkasa/orderhub/internal/domain/shared"
	"github.com/ikkasa/orderhub/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// existingIDsChunk bounds the IN list of one ExistingOrderIDs query.
const existingIDsChunk = 500

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

var _ order.Repository = (*GormOrderRepository)(nil)

// Create inserts one order
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	m, err := models.NewOrderModelFromDomain(o)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	o.CreatedAt, o.UpdatedAt, o.Status = m.CreatedAt, m.UpdatedAt, m.Status
	return nil
}

// CreateAll inserts every order in one transaction. Any failure rolls back the
// whole batch.
func (r *GormOrderRepository) CreateAll(ctx context.Context, orders []*order.Order) error {
	if len(orders) == 0 {
		return nil
	}
	batch := make([]*models.OrderModel, 0, len(orders))
	for _, o := range orders {
		m, err := models.NewOrderModelFromDomain(o)
		if err != nil {
			return err
		}
		batch = append(batch, m)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(batch, 100).Error
	})
	if err != nil {
		return translateError(err)
	}
	for i, m := range batch {
		orders[i].CreatedAt, orders[i].UpdatedAt, orders[i].Status = m.CreatedAt, m.UpdatedAt, m.Status
	}
	return nil
}

// Save writes every column of an existing order
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	o.EnsureStatus()
	m, err := models.NewOrderModelFromDomain(o)
	if err != nil {
		return err
	}
	m.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).Model(m).
		Select("*").Omit("id", "created_at").
		Updates(m)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	o.UpdatedAt, o.Status = m.UpdatedAt, m.Status
	return nil
}

// FindByID finds an order by its surrogate id
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByOrderID finds an order by its merchant order id
func (r *GormOrderRepository) FindByOrderID(ctx context.Context, orderID string) (*order.Order, error) {
	if orderID == "" {
		return nil, shared.ErrNotFound
	}
	return r.findOne(ctx, "order_id = ?", orderID)
}

// FindByShopifyID finds an order by its Shopify id
func (r *GormOrderRepository) FindByShopifyID(ctx context.Context, shopifyID string) (*order.Order, error) {
	if shopifyID == "" {
		return nil, shared.ErrNotFound
	}
	return r.findOne(ctx, "shopify_id = ?", shopifyID)
}

func (r *GormOrderRepository) findOne(ctx context.Context, query string, arg any) (*order.Order, error) {
	var m models.OrderModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain()
}

// FindPage returns a page of orders, newest order date first
func (r *GormOrderRepository) FindPage(ctx context.Context, page, limit int) ([]*order.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.OrderModel
	err := r.db.WithContext(ctx).
		Order("order_date DESC").Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	orders := make([]*order.Order, 0, len(rows))
	for i := range rows {
		o, err := rows[i].ToDomain()
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, nil
}

// ExistingOrderIDs returns the subset of ids that are already stored
func (r *GormOrderRepository) ExistingOrderIDs(ctx context.Context, ids []string) ([]string, error) {
	found := make([]string, 0)
	for start := 0; start < len(ids); start += existingIDsChunk {
		end := min(start+existingIDsChunk, len(ids))
		var chunk []string
		err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
			Where("order_id IN ?", ids[start:end]).
			Pluck("order_id", &chunk).Error
		if err != nil {
			return nil, fmt.Errorf("query existing order ids: %w", err)
		}
		found = append(found, chunk...)
	}
	return found, nil
}

// Delete removes an order by id
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.OrderModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

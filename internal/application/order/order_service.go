package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ikkasa/orderhub/internal/domain/order"
	"github.com/ikkasa/orderhub/internal/domain/shared"
	"go.uber.org/zap"
)

// Paging defaults for order listings
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// OrderService handles manual order operations
type OrderService struct {
	repo    order.Repository
	logger  *zap.Logger
	metrics Metrics
}

// ServiceOption configures the order application services
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	logger  *zap.Logger
	metrics Metrics
	workers int
}

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) ServiceOption {
	return func(o *serviceOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m Metrics) ServiceOption {
	return func(o *serviceOptions) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithWorkers bounds the number of records processed concurrently
func WithWorkers(n int) ServiceOption {
	return func(o *serviceOptions) {
		if n > 0 {
			o.workers = n
		}
	}
}

func buildOptions(opts []ServiceOption) serviceOptions {
	o := serviceOptions{logger: zap.NewNop(), metrics: nopMetrics{}, workers: 8}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewOrderService creates a new OrderService
func NewOrderService(repo order.Repository, opts ...ServiceOption) *OrderService {
	o := buildOptions(opts)
	return &OrderService{repo: repo, logger: o.logger, metrics: o.metrics}
}

// Create stores one order built from a manual patch
func (s *OrderService) Create(ctx context.Context, input order.Patch) (*OrderResponse, error) {
	p := ManualNormalizer{InferPayment: true}.Normalize(input).WithDerivedFields()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	o := order.NewFromPatch(p)
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, o); err != nil {
		s.metrics.OrderIngested(ctx, SourceManual, OutcomeFailed, 1)
		return nil, err
	}

	s.metrics.OrderIngested(ctx, SourceManual, OutcomeCreated, 1)
	s.logger.Info("Order created",
		zap.String("id", o.ID.String()),
		zap.String("order_id", o.OrderID),
	)
	resp := ToOrderResponse(o)
	return &resp, nil
}

// Get returns one order by id
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// List returns one page of orders, newest first. Page and limit below 1 take
// the defaults and limit is capped at MaxLimit.
func (s *OrderService) List(ctx context.Context, page, limit int) (*ListResponse, error) {
	page, limit = normalizePaging(page, limit)
	orders, total, err := s.repo.FindPage(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	return &ListResponse{
		Total:  total,
		Page:   page,
		Limit:  limit,
		Orders: ToOrderResponses(orders),
	}, nil
}

func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// Update applies the present fields of input to an existing order
func (s *OrderService) Update(ctx context.Context, id uuid.UUID, input order.Patch) (*OrderResponse, error) {
	p := ManualNormalizer{}.Normalize(input)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Apply(o)
	if dimensionsChanged(p) && !p.VolumetricWeight.IsPresent() {
		recomputeVolumetric(o)
	}
	o.EnsureStatus()
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("Order updated",
		zap.String("id", o.ID.String()),
		zap.Strings("fields", p.Fields()),
	)
	resp := ToOrderResponse(o)
	return &resp, nil
}

func dimensionsChanged(p order.Patch) bool {
	return p.Length.IsPresent() || p.Breadth.IsPresent() || p.Height.IsPresent()
}

func recomputeVolumetric(o *order.Order) {
	if o.Length == nil || o.Breadth == nil || o.Height == nil {
		return
	}
	v := order.VolumetricWeight(*o.Length, *o.Breadth, *o.Height)
	o.VolumetricWeight = &v
}

// Delete removes one order
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete order %s: %w", id, err)
	}
	s.logger.Info("Order deleted", zap.String("id", id.String()))
	return nil
}

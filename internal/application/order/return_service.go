package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ikkasa/orderhub/internal/domain/order"
	"github.com/ikkasa/orderhub/internal/domain/shared"
	"github.com/ikkasa/orderhub/internal/infrastructure/ekart"
	"go.uber.org/zap"
)

// Carrier creates reverse-logistics shipments. *ekart.Client satisfies it.
type Carrier interface {
	CreateReturn(ctx context.Context, req ekart.ReturnRequest) (*ekart.Result, error)
}

// ReturnService dispatches return shipments and records them on the order
type ReturnService struct {
	repo    order.Repository
	carrier Carrier
	logger  *zap.Logger
	metrics Metrics
	now     func() time.Time
}

// NewReturnService creates a new ReturnService
func NewReturnService(repo order.Repository, carrier Carrier, opts ...ServiceOption) *ReturnService {
	o := buildOptions(opts)
	return &ReturnService{
		repo:    repo,
		carrier: carrier,
		logger:  o.logger,
		metrics: o.metrics,
		now:     time.Now,
	}
}

// CreateReturn validates req, submits it to the carrier and moves the
// matching order to InfoReceived. An invalid request never reaches the
// carrier. A carrier success for an unknown order id is still returned, with
// OrderUpdated false.
func (s *ReturnService) CreateReturn(ctx context.Context, req ekart.ReturnRequest) (*ReturnResult, error) {
	req = req.Trimmed()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	created, err := s.carrier.CreateReturn(ctx, req)
	if err != nil {
		s.metrics.CarrierRequest(ctx, OutcomeFailed)
		return nil, err
	}
	s.metrics.CarrierRequest(ctx, OutcomeSuccess)

	result := &ReturnResult{TrackingID: created.TrackingID, Response: created.Response}

	o, err := s.repo.FindByOrderID(ctx, req.OrderID)
	if errors.Is(err, shared.ErrNotFound) {
		s.logger.Warn("Return shipment created for an unknown order",
			zap.String("order_id", req.OrderID),
			zap.String("tracking_id", created.TrackingID),
		)
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load order %s: %w", req.OrderID, err)
	}

	o.RecordReturnRequested(created.TrackingID, created.Response, s.now())
	if err := s.repo.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("record return on order %s: %w", req.OrderID, err)
	}

	resp := ToOrderResponse(o)
	result.OrderUpdated = true
	result.Order = &resp
	return result, nil
}

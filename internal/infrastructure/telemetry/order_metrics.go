package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// ErrMeterNil is returned when no meter is supplied.
var ErrMeterNil = errors.New("meter cannot be nil")

// Attribute keys shared by the order metrics
var (
	AttrSource  = attribute.Key("source")
	AttrOutcome = attribute.Key("outcome")
	AttrAPI     = attribute.Key("api")
)

// OrderMetrics counts ingestion, carrier and Shopify paging activity
type OrderMetrics struct {
	ingested metric.Int64Counter
	carrier  metric.Int64Counter
	pages    metric.Int64Counter
}

// NewOrderMetrics registers the order counters on meter
func NewOrderMetrics(meter metric.Meter) (*OrderMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	ingested, err := meter.Int64Counter("orders_ingested_total",
		metric.WithDescription("Orders written or skipped per ingestion source"),
		metric.WithUnit("{orders}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter orders_ingested_total: %w", err)
	}
	carrier, err := meter.Int64Counter("carrier_requests_total",
		metric.WithDescription("Return shipment requests sent to the carrier"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter carrier_requests_total: %w", err)
	}
	pages, err := meter.Int64Counter("shopify_pages_fetched_total",
		metric.WithDescription("Shopify order pages fetched"),
		metric.WithUnit("{pages}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter shopify_pages_fetched_total: %w", err)
	}

	return &OrderMetrics{ingested: ingested, carrier: carrier, pages: pages}, nil
}

// NewNoopOrderMetrics returns counters that record nothing
func NewNoopOrderMetrics() *OrderMetrics {
	m, _ := NewOrderMetrics(noop.NewMeterProvider().Meter("orderhub"))
	return m
}

// OrderIngested adds n orders for source with outcome (inserted, updated,
// skipped, failed)
func (m *OrderMetrics) OrderIngested(ctx context.Context, source, outcome string, n int) {
	if n <= 0 {
		return
	}
	m.ingested.Add(ctx, int64(n), metric.WithAttributes(AttrSource.String(source), AttrOutcome.String(outcome)))
}

// CarrierRequest records one carrier call
func (m *OrderMetrics) CarrierRequest(ctx context.Context, outcome string) {
	m.carrier.Add(ctx, 1, metric.WithAttributes(AttrOutcome.String(outcome)))
}

// ShopifyPageFetched records one fetched page
func (m *OrderMetrics) ShopifyPageFetched(ctx context.Context, api string) {
	m.pages.Add(ctx, 1, metric.WithAttributes(AttrAPI.String(api)))
}

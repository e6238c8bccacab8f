package order

import "context"

// Ingestion sources
const (
	SourceManual  = "manual"
	SourceCSV     = "csv"
	SourceShopify = "shopify"
)

// Ingestion and carrier outcomes
const (
	OutcomeCreated  = "created"
	OutcomeUpdated  = "updated"
	OutcomeSkipped  = "skipped"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeFailed   = "failed"
	OutcomeSuccess  = "success"
)

// Metrics receives ingestion and carrier counters.
// telemetry.OrderMetrics satisfies it.
type Metrics interface {
	OrderIngested(ctx context.Context, source, outcome string, n int)
	CarrierRequest(ctx context.Context, outcome string)
}

type nopMetrics struct{}

func (nopMetrics) OrderIngested(context.Context, string, string, int) {}
func (nopMetrics) CarrierRequest(context.Context, string)             {}

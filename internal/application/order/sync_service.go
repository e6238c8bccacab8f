package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ikkasa/orderhub/internal/domain/order"
	"github.com/ikkasa/orderhub/internal/domain/shared"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SyncMode selects how fetched Shopify orders are reconciled with the store
type SyncMode string

// Sync modes
const (
	SyncOverwrite  SyncMode = "overwrite"
	SyncInsertOnly SyncMode = "insert-only"
)

// ParseSyncMode validates a mode name. An empty name yields def.
func ParseSyncMode(s string, def SyncMode) (SyncMode, error) {
	switch SyncMode(s) {
	case "":
		return def, nil
	case SyncOverwrite, SyncInsertOnly:
		return SyncMode(s), nil
	}
	return "", order.NewValidationError("mode", "must be overwrite or insert-only")
}

// OrderSource fetches every order of a store as normalized patches.
// shopify.RESTSource and shopify.GraphQLSource satisfy it.
type OrderSource interface {
	FetchOrders(ctx context.Context) ([]order.Patch, error)
}

// SyncService pulls orders from Shopify into the store
type SyncService struct {
	repo        order.Repository
	sources     map[string]OrderSource
	defaultAPI  string
	defaultMode SyncMode
	logger      *zap.Logger
	metrics     Metrics
	workers     int
}

// NewSyncService creates a new SyncService. sources is keyed by API name
// ("rest", "graphql").
func NewSyncService(
	repo order.Repository,
	sources map[string]OrderSource,
	defaultAPI string,
	defaultMode SyncMode,
	opts ...ServiceOption,
) *SyncService {
	o := buildOptions(opts)
	if defaultMode == "" {
		defaultMode = SyncOverwrite
	}
	return &SyncService{
		repo:        repo,
		sources:     sources,
		defaultAPI:  defaultAPI,
		defaultMode: defaultMode,
		logger:      o.logger,
		metrics:     o.metrics,
		workers:     o.workers,
	}
}

// DefaultMode returns the mode used when a caller does not pick one
func (s *SyncService) DefaultMode() SyncMode {
	return s.defaultMode
}

// Sync fetches all pages from the chosen API and upserts them by Shopify id.
//
// Any fetch failure aborts the sync before anything is written. Per-order
// store failures are listed in the result.
func (s *SyncService) Sync(ctx context.Context, api string, mode SyncMode) (*SyncResult, error) {
	if api == "" {
		api = s.defaultAPI
	}
	source, ok := s.sources[strings.ToLower(api)]
	if !ok {
		return nil, order.NewValidationError("api", "must be one of "+strings.Join(s.apiNames(), ", "))
	}
	if mode == "" {
		mode = s.defaultMode
	}
	if mode != SyncOverwrite && mode != SyncInsertOnly {
		return nil, order.NewValidationError("mode", "must be overwrite or insert-only")
	}

	patches, err := source.FetchOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch shopify orders: %w", err)
	}
	patches = foldByShopifyID(patches)

	outcomes := make([]recordOutcome, len(patches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, p := range patches {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = s.upsert(gctx, p, mode)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &SyncResult{Orders: []OrderResponse{}}
	for _, oc := range outcomes {
		switch oc.outcome {
		case OutcomeCreated:
			result.Created++
			result.Orders = append(result.Orders, ToOrderResponse(oc.order))
		case OutcomeUpdated:
			result.Updated++
			result.Orders = append(result.Orders, ToOrderResponse(oc.order))
		case OutcomeSkipped:
			result.Skipped++
		case OutcomeFailed:
			result.Failed = append(result.Failed, *oc.failure)
		}
	}
	result.Count = len(result.Orders)

	for outcome, n := range map[string]int{
		OutcomeCreated: result.Created,
		OutcomeUpdated: result.Updated,
		OutcomeSkipped: result.Skipped,
		OutcomeFailed:  len(result.Failed),
	} {
		s.metrics.OrderIngested(ctx, SourceShopify, outcome, n)
	}

	s.logger.Info("Shopify sync finished",
		zap.String("api", api),
		zap.String("mode", string(mode)),
		zap.Int("fetched", len(patches)),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

func (s *SyncService) upsert(ctx context.Context, p order.Patch, mode SyncMode) recordOutcome {
	shopifyID, ok := p.ShopifyID.Get()
	orderID, _ := p.OrderID.Get()
	fail := func(err error) recordOutcome {
		return recordOutcome{
			outcome: OutcomeFailed,
			failure: &FailedRecord{OrderID: orderID, Error: err.Error()},
		}
	}
	if !ok {
		return fail(order.NewValidationError("shopifyId", "missing from the Shopify order"))
	}
	if err := p.Validate(); err != nil {
		return fail(err)
	}

	existing, err := s.repo.FindByShopifyID(ctx, shopifyID)
	switch {
	case err == nil:
		if mode == SyncInsertOnly {
			return recordOutcome{outcome: OutcomeSkipped}
		}
		p.Apply(existing)
		existing.EnsureStatus()
		if err := s.repo.Save(ctx, existing); err != nil {
			return fail(err)
		}
		return recordOutcome{order: existing, outcome: OutcomeUpdated}
	case !errors.Is(err, shared.ErrNotFound):
		return fail(err)
	}

	o := order.NewFromPatch(p)
	if err := s.repo.Create(ctx, o); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			// Shopify order numbers share the key space of uploaded order numbers.
			s.logger.Warn("Shopify order collides with an existing order id",
				zap.String("shopify_id", shopifyID),
				zap.String("order_id", orderID),
			)
		}
		return fail(err)
	}
	return recordOutcome{order: o, outcome: OutcomeCreated}
}

func (s *SyncService) apiNames() []string {
	names := make([]string, 0, len(s.sources))
	for name := range s.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// foldByShopifyID collapses repeated Shopify ids so concurrent upserts never
// race on the same key. Later pages win.
func foldByShopifyID(patches []order.Patch) []order.Patch {
	index := make(map[string]int, len(patches))
	out := make([]order.Patch, 0, len(patches))
	for _, p := range patches {
		id, ok := p.ShopifyID.Get()
		if !ok {
			out = append(out, p)
			continue
		}
		if i, seen := index[id]; seen {
			out[i] = out[i].Merge(p)
			continue
		}
		index[id] = len(out)
		out = append(out, p)
	}
	return out
}

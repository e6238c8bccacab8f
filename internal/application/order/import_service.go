package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/ikkasa/orderhub/internal/domain/order"
	"github.com/ikkasa/orderhub/internal/domain/shared"
	csvimport "github.com/ikkasa/orderhub/internal/infrastructure/import"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ImportMode selects how uploaded rows are reconciled with the store
type ImportMode string

// Import modes
const (
	ModeMerge          ImportMode = "merge"
	ModeStrict         ImportMode = "strict"
	ModeSkipDuplicates ImportMode = "skip-duplicates"
)

// ParseImportMode validates a mode name. An empty name yields def.
func ParseImportMode(s string, def ImportMode) (ImportMode, error) {
	switch ImportMode(s) {
	case "":
		return def, nil
	case ModeMerge, ModeStrict, ModeSkipDuplicates:
		return ImportMode(s), nil
	}
	return "", order.NewValidationError("mode", "must be merge, strict or skip-duplicates")
}

// ImportRecord is one normalized row together with its line in the file
type ImportRecord struct {
	Line  int
	Patch order.Patch
}

// ImportService reconciles spreadsheet uploads with the order store
type ImportService struct {
	repo    order.Repository
	logger  *zap.Logger
	metrics Metrics
	workers int
}

// NewImportService creates a new ImportService
func NewImportService(repo order.Repository, opts ...ServiceOption) *ImportService {
	o := buildOptions(opts)
	return &ImportService{repo: repo, logger: o.logger, metrics: o.metrics, workers: o.workers}
}

// ImportFile reads the upload stored at path. The reader is chosen by the
// extension of originalName.
func (s *ImportService) ImportFile(ctx context.Context, path, originalName string, mode ImportMode) (*ImportResult, error) {
	rows, err := csvimport.ReadFile(path, originalName)
	if err != nil {
		if csvimport.IsFileError(err) {
			return nil, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
		}
		return nil, err
	}
	return s.ImportRows(ctx, rows, mode)
}

// ImportRows normalizes spreadsheet rows and imports them
func (s *ImportService) ImportRows(ctx context.Context, rows []*csvimport.Row, mode ImportMode) (*ImportResult, error) {
	normalizer := csvimport.RowNormalizer{}
	records := make([]ImportRecord, len(rows))
	for i, row := range rows {
		records[i] = ImportRecord{Line: row.LineNumber, Patch: normalizer.Normalize(row)}
	}
	return s.Import(ctx, records, mode)
}

// Import reconciles normalized records with the store using mode.
//
// Records without an order number are reported as invalid rows and never
// written.
func (s *ImportService) Import(ctx context.Context, records []ImportRecord, mode ImportMode) (*ImportResult, error) {
	valid, invalid := splitValid(records)
	if len(invalid) > 0 {
		s.metrics.OrderIngested(ctx, SourceCSV, OutcomeInvalid, len(invalid))
	}

	var (
		result *ImportResult
		err    error
	)
	switch mode {
	case ModeMerge:
		result, err = s.merge(ctx, valid)
	case ModeStrict:
		result, err = s.strict(ctx, valid)
	case ModeSkipDuplicates:
		result, err = s.skipDuplicates(ctx, valid)
	default:
		return nil, order.NewValidationError("mode", "must be merge, strict or skip-duplicates")
	}
	if err != nil {
		return nil, err
	}

	result.Mode = mode
	result.InvalidRows = invalid
	s.logger.Info("Order import finished",
		zap.String("mode", string(mode)),
		zap.Int("rows", len(records)),
		zap.Int("invalid", len(invalid)),
		zap.Int("updated", result.Updated),
		zap.Int("inserted", result.Inserted),
		zap.Int("skipped", result.Skipped),
		zap.Int("not_found", result.NotFound),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

func splitValid(records []ImportRecord) ([]ImportRecord, []csvimport.RowError) {
	valid := make([]ImportRecord, 0, len(records))
	var invalid []csvimport.RowError
	for _, r := range records {
		if !r.Patch.OrderID.IsPresent() {
			invalid = append(invalid, csvimport.RowErrorf(r.Line, csvimport.ColOrderNo, "order number is required"))
			continue
		}
		valid = append(valid, r)
	}
	return valid, invalid
}

// recordOutcome is the per-record result of a concurrent import step.
type recordOutcome struct {
	order   *order.Order
	outcome string
	failure *FailedRecord
}

// runBounded calls fn for every index with at most s.workers in flight.
// fn reports per-record failures through its outcome; only context
// cancellation aborts the batch.
func (s *ImportService) runBounded(ctx context.Context, n int, fn func(ctx context.Context, i int) recordOutcome) ([]recordOutcome, error) {
	outcomes := make([]recordOutcome, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range n {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = fn(gctx, i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func failure(r ImportRecord, err error) recordOutcome {
	id, _ := r.Patch.OrderID.Get()
	return recordOutcome{
		outcome: OutcomeFailed,
		failure: &FailedRecord{OrderID: id, Line: r.Line, Error: err.Error()},
	}
}

// merge folds repeated order numbers in file order and updates existing
// orders with the present fields only.
func (s *ImportService) merge(ctx context.Context, records []ImportRecord) (*ImportResult, error) {
	folded := foldByOrderID(records)

	outcomes, err := s.runBounded(ctx, len(folded), func(ctx context.Context, i int) recordOutcome {
		r := folded[i]
		if err := r.Patch.Validate(); err != nil {
			return failure(r, err)
		}
		id, _ := r.Patch.OrderID.Get()
		o, err := s.repo.FindByOrderID(ctx, id)
		if errors.Is(err, shared.ErrNotFound) {
			return recordOutcome{outcome: OutcomeNotFound}
		}
		if err != nil {
			return failure(r, err)
		}
		if o.ShopifyID != "" {
			// order numbers are not globally unique; a file row may target a
			// Shopify order it was never meant for
			s.logger.Warn("CSV row matched a Shopify order by order number",
				zap.String("order_id", id),
				zap.String("shopify_id", o.ShopifyID),
				zap.Int("line", r.Line),
			)
		}
		r.Patch.Apply(o)
		o.EnsureStatus()
		if err := s.repo.Save(ctx, o); err != nil {
			return failure(r, err)
		}
		return recordOutcome{order: o, outcome: OutcomeUpdated}
	})
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Orders: []OrderResponse{}}
	for _, oc := range outcomes {
		switch oc.outcome {
		case OutcomeUpdated:
			result.Updated++
			result.Orders = append(result.Orders, ToOrderResponse(oc.order))
		case OutcomeNotFound:
			result.NotFound++
		case OutcomeFailed:
			result.Failed = append(result.Failed, *oc.failure)
		}
	}
	s.recordCounts(ctx, map[string]int{
		OutcomeUpdated:  result.Updated,
		OutcomeNotFound: result.NotFound,
		OutcomeFailed:   len(result.Failed),
	})
	return result, nil
}

// foldByOrderID merges records sharing an order number. The merged record
// keeps the position and line of the first occurrence.
func foldByOrderID(records []ImportRecord) []ImportRecord {
	index := make(map[string]int, len(records))
	folded := make([]ImportRecord, 0, len(records))
	for _, r := range records {
		id, _ := r.Patch.OrderID.Get()
		if i, ok := index[id]; ok {
			folded[i].Patch = folded[i].Patch.Merge(r.Patch)
			continue
		}
		index[id] = len(folded)
		folded = append(folded, r)
	}
	return folded
}

// strict inserts every record in one transaction, or rejects the whole file
// when any order number repeats in the file or already exists.
func (s *ImportService) strict(ctx context.Context, records []ImportRecord) (*ImportResult, error) {
	if len(records) == 0 {
		return nil, order.NewValidationError(csvimport.ColOrderNo, "no rows with an order number")
	}

	ids, repeated := uniqueOrderIDs(records)
	existing, err := s.repo.ExistingOrderIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("check existing orders: %w", err)
	}
	if colliding := collidingIDs(ids, repeated, existing); len(colliding) > 0 {
		s.metrics.OrderIngested(ctx, SourceCSV, OutcomeSkipped, len(records))
		return nil, &order.ConflictError{OrderIDs: colliding}
	}

	orders := make([]*order.Order, 0, len(records))
	for _, r := range records {
		if err := r.Patch.Validate(); err != nil {
			return nil, err
		}
		o := order.NewFromPatch(r.Patch)
		if err := o.Validate(); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := s.repo.CreateAll(ctx, orders); err != nil {
		s.metrics.OrderIngested(ctx, SourceCSV, OutcomeFailed, len(orders))
		return nil, err
	}

	s.metrics.OrderIngested(ctx, SourceCSV, OutcomeCreated, len(orders))
	return &ImportResult{Inserted: len(orders), Orders: ToOrderResponses(orders)}, nil
}

// uniqueOrderIDs returns the distinct order numbers in file order and the
// set of numbers seen more than once.
func uniqueOrderIDs(records []ImportRecord) ([]string, map[string]bool) {
	seen := make(map[string]bool, len(records))
	repeated := make(map[string]bool)
	ids := make([]string, 0, len(records))
	for _, r := range records {
		id, _ := r.Patch.OrderID.Get()
		if seen[id] {
			repeated[id] = true
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, repeated
}

func collidingIDs(ids []string, repeated map[string]bool, existing []string) []string {
	stored := make(map[string]bool, len(existing))
	for _, id := range existing {
		stored[id] = true
	}
	var out []string
	for _, id := range ids {
		if repeated[id] || stored[id] {
			out = append(out, id)
		}
	}
	return out
}

// skipDuplicates inserts the order numbers that are new. Repeats within the
// file after the first occurrence and numbers already stored are skipped.
func (s *ImportService) skipDuplicates(ctx context.Context, records []ImportRecord) (*ImportResult, error) {
	if len(records) == 0 {
		return nil, order.NewValidationError(csvimport.ColOrderNo, "no rows with an order number")
	}

	ids, _ := uniqueOrderIDs(records)
	existing, err := s.repo.ExistingOrderIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("check existing orders: %w", err)
	}
	stored := make(map[string]bool, len(existing))
	for _, id := range existing {
		stored[id] = true
	}

	result := &ImportResult{}
	fresh := make([]ImportRecord, 0, len(records))
	taken := make(map[string]bool, len(records))
	for _, r := range records {
		id, _ := r.Patch.OrderID.Get()
		if stored[id] || taken[id] {
			result.Skipped++
			continue
		}
		taken[id] = true
		fresh = append(fresh, r)
	}
	if len(fresh) == 0 {
		s.metrics.OrderIngested(ctx, SourceCSV, OutcomeSkipped, result.Skipped)
		return nil, &order.ConflictError{OrderIDs: existing}
	}

	outcomes, err := s.runBounded(ctx, len(fresh), func(ctx context.Context, i int) recordOutcome {
		r := fresh[i]
		if err := r.Patch.Validate(); err != nil {
			return failure(r, err)
		}
		o := order.NewFromPatch(r.Patch)
		if err := s.repo.Create(ctx, o); err != nil {
			// Inserted concurrently by another request since the lookup.
			if errors.Is(err, shared.ErrAlreadyExists) {
				return recordOutcome{outcome: OutcomeSkipped}
			}
			return failure(r, err)
		}
		return recordOutcome{order: o, outcome: OutcomeCreated}
	})
	if err != nil {
		return nil, err
	}

	for _, oc := range outcomes {
		switch oc.outcome {
		case OutcomeCreated:
			result.Inserted++
			result.Orders = append(result.Orders, ToOrderResponse(oc.order))
		case OutcomeSkipped:
			result.Skipped++
		case OutcomeFailed:
			result.Failed = append(result.Failed, *oc.failure)
		}
	}
	s.recordCounts(ctx, map[string]int{
		OutcomeCreated: result.Inserted,
		OutcomeSkipped: result.Skipped,
		OutcomeFailed:  len(result.Failed),
	})
	return result, nil
}

func (s *ImportService) recordCounts(ctx context.Context, counts map[string]int) {
	for outcome, n := range counts {
		s.metrics.OrderIngested(ctx, SourceCSV, outcome, n)
	}
}

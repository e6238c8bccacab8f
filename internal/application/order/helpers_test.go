package order

import (
	"context"
	"sync"
	"testing"

	"github.com/ikkasa/orderhub/internal/domain/order"
	"github.com/ikkasa/orderhub/internal/domain/shared"
	"github.com/ikkasa/orderhub/internal/infrastructure/persistence"
	"github.com/ikkasa/orderhub/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) *persistence.GormOrderRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.OrderModel{}))
	return persistence.NewGormOrderRepository(db)
}

func seedOrder(t *testing.T, repo order.Repository, p order.Patch) *order.Order {
	t.Helper()
	o := order.NewFromPatch(p)
	require.NoError(t, repo.Create(context.Background(), o))
	return o
}

type countKey struct {
	source  string
	outcome string
}

type recordingMetrics struct {
	mu       sync.Mutex
	ingested map[countKey]int
	carrier  map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{ingested: map[countKey]int{}, carrier: map[string]int{}}
}

func (m *recordingMetrics) OrderIngested(_ context.Context, source, outcome string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n > 0 {
		m.ingested[countKey{source, outcome}] += n
	}
}

func (m *recordingMetrics) CarrierRequest(_ context.Context, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carrier[outcome]++
}

func (m *recordingMetrics) count(source, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ingested[countKey{source, outcome}]
}

func some[T any](v T) shared.Optional[T] {
	return shared.Some(v)
}

func ptr(v float64) *float64 {
	return &v
}

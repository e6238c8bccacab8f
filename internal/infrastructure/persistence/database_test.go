package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/ikkasa/orderhub/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestOpen_WithDialector(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, &config.DatabaseConfig{MaxOpenConns: 1, MaxIdleConns: 1},
		WithDialector(sqlite.Open(":memory:")),
		WithLogger(zaptest.NewLogger(t)),
	)
	require.NoError(t, err)

	assert.NoError(t, db.Ping(ctx))
	assert.Equal(t, 1, db.SQL().Stats().MaxOpenConnections)

	err = db.Transaction(ctx, func(tx *gorm.DB) error {
		return tx.Exec("CREATE TABLE probe (id INTEGER)").Error
	})
	require.NoError(t, err)
	assert.True(t, db.DB.Migrator().HasTable("probe"))

	require.NoError(t, db.Close())
	assert.Error(t, db.Ping(ctx))
}

func TestOpen_RetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// An unreachable postgres port keeps every ping failing.
	_, err := Open(ctx, &config.DatabaseConfig{URL: "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1"},
		WithConnectRetry(5, time.Hour),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

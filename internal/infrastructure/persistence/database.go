// Package persistence implements the order store on top of gorm.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ikkasa/orderhub/internal/infrastructure/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database is the gorm handle of the order store together with its pool
type Database struct {
	DB  *gorm.DB
	sql *sql.DB
}

type openOptions struct {
	dialector  gorm.Dialector
	gormLogger gormlogger.Interface
	logger     *zap.Logger
	attempts   int
	backoff    time.Duration
}

// Option configures Open
type Option func(*openOptions)

// WithGormLogger routes gorm's statement log through l
func WithGormLogger(l gormlogger.Interface) Option {
	return func(o *openOptions) { o.gormLogger = l }
}

// WithLogger sets the logger used to report connection attempts
func WithLogger(l *zap.Logger) Option {
	return func(o *openOptions) { o.logger = l }
}

// WithDialector replaces the postgres dialector built from the config
func WithDialector(d gorm.Dialector) Option {
	return func(o *openOptions) { o.dialector = d }
}

// WithConnectRetry pings up to attempts times, doubling the wait after each failure
func WithConnectRetry(attempts int, backoff time.Duration) Option {
	return func(o *openOptions) {
		if attempts > 0 {
			o.attempts = attempts
		}
		o.backoff = backoff
	}
}

// Open connects to the order store and sizes the pool from cfg. The database
// may still be starting, so the first ping is retried.
func Open(ctx context.Context, cfg *config.DatabaseConfig, opts ...Option) (*Database, error) {
	o := openOptions{
		gormLogger: gormlogger.Default.LogMode(gormlogger.Silent),
		logger:     zap.NewNop(),
		attempts:   1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.dialector == nil {
		o.dialector = postgres.Open(cfg.DSN())
	}

	db, err := gorm.Open(o.dialector, &gorm.Config{
		Logger:                 o.gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		TranslateError:         true,
		DisableAutomaticPing:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open order store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get connection pool: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := ping(ctx, sqlDB, o); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return &Database{DB: db, sql: sqlDB}, nil
}

func ping(ctx context.Context, sqlDB *sql.DB, o openOptions) error {
	wait := o.backoff
	var err error
	for attempt := 1; attempt <= o.attempts; attempt++ {
		if err = sqlDB.PingContext(ctx); err == nil {
			return nil
		}
		if attempt == o.attempts {
			break
		}
		o.logger.Warn("Order store not reachable yet",
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", wait),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return fmt.Errorf("failed to ping database: %w", ctx.Err())
		case <-time.After(wait):
		}
		wait *= 2
	}
	return fmt.Errorf("failed to ping database after %d attempts: %w", o.attempts, err)
}

// SQL returns the underlying connection pool
func (d *Database) SQL() *sql.DB {
	return d.sql
}

// Close releases the connection pool
func (d *Database) Close() error {
	return d.sql.Close()
}

// Ping reports whether the store answers within ctx
func (d *Database) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

// Transaction runs fn in a transaction bound to ctx
func (d *Database) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.DB.WithContext(ctx).Transaction(fn)
}

package cache

import (
	"fmt"
	"io"

	"github.com/ikkasa/orderhub/internal/infrastructure/config"
	"github.com/ikkasa/orderhub/internal/infrastructure/ekart"
	"go.uber.org/zap"
)

// TokenCache is a closable ekart.TokenCache
type TokenCache interface {
	ekart.TokenCache
	io.Closer
}

// Factory creates token caches based on configuration
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	connect               func(config.RedisConfig) (TokenCache, error)
}

// FactoryOption configures a Factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// the in-memory cache. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		connect: func(c config.RedisConfig) (TokenCache, error) {
			return NewRedisTokenCache(c)
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns nil when Redis is disabled. Otherwise it returns a Redis
// cache, or the in-memory cache when Redis is unreachable and fallback is
// allowed.
func (f *Factory) Create() (TokenCache, error) {
	if !f.redisConfig.Enabled {
		return nil, nil
	}

	c, err := f.connect(f.redisConfig)
	if err == nil {
		f.logger.Info("Using Redis token cache", zap.String("addr", f.redisConfig.Addr()))
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for token cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory token cache", zap.Error(err))
	return NewInMemoryTokenCache(), nil
}

package cache

import (
	"fmt"
	"time"

	"github.com/callbridge/backend/internal/domain/shared"
	"github.com/callbridge/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const inMemorySweepInterval = time.Minute

// Factory creates the profile cache from configuration
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to a
// process-local cache. Default is true.
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
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisCache creates a Redis-backed cache
func (f *Factory) CreateRedisCache() (shared.Cache, error) {
	c, err := NewRedisCache(RedisConfig{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis cache: %w", err)
	}
	return c, nil
}

// CreateInMemoryCache creates a process-local cache. Profiles cached by one
// instance are not invalidated by outcomes committed on another, so a stale
// profile can be served for up to the cache TTL.
func (f *Factory) CreateInMemoryCache() shared.Cache {
	return NewInMemoryCache(inMemorySweepInterval)
}

// CreateCache tries Redis first and falls back to memory when allowed
func (f *Factory) CreateCache() (shared.Cache, error) {
	c, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis profile cache", zap.String("addr", f.redisConfig.Addr()))
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for profile cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory profile cache. "+
		"Profiles may be stale on other instances until their TTL expires.",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}

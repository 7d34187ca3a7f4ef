package cache

import (
	"fmt"
	"io"

	"github.com/Nassimghoulane/Dionos-1/internal/domain/shopping"
	"github.com/Nassimghoulane/Dionos-1/internal/infrastructure/config"
	"go.uber.org/zap"
)

// PickupCodeStore is a registry that owns resources to release on shutdown
type PickupCodeStore interface {
	shopping.PickupCodeRegistry
	io.Closer
}

// PickupCodeRegistryFactory picks the registry implementation from configuration
type PickupCodeRegistryFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// PickupCodeRegistryFactoryOption is a functional option for configuring the factory
type PickupCodeRegistryFactoryOption func(*PickupCodeRegistryFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) PickupCodeRegistryFactoryOption {
	return func(f *PickupCodeRegistryFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to
// the in-memory registry. Default is true.
func WithInMemoryFallback(allow bool) PickupCodeRegistryFactoryOption {
	return func(f *PickupCodeRegistryFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewPickupCodeRegistryFactory creates a new factory
func NewPickupCodeRegistryFactory(cfg config.RedisConfig, opts ...PickupCodeRegistryFactoryOption) *PickupCodeRegistryFactory {
	f := &PickupCodeRegistryFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns the Redis registry when enabled and reachable, the
// in-memory one otherwise
func (f *PickupCodeRegistryFactory) Create() (PickupCodeStore, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory pickup code registry")
		return NewInMemoryPickupCodeRegistry(), nil
	}

	store, err := NewRedisPickupCodeRegistry(RedisConfig{
		Host:      f.redisConfig.Host,
		Port:      f.redisConfig.Port,
		Password:  f.redisConfig.Password,
		DB:        f.redisConfig.DB,
		KeyPrefix: f.redisConfig.KeyPrefix,
	})
	if err == nil {
		f.logger.Info("using Redis pickup code registry", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for pickup codes but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory pickup code registry. "+
		"Codes are then only unique within this instance.",
		zap.Error(err),
	)
	return NewInMemoryPickupCodeRegistry(), nil
}

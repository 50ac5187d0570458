package cache

import (
	"context"
	"fmt"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewIdempotencyStore builds the store selected by configuration. A
// configured Redis that cannot be reached is an error: silently falling
// back would let two gateway instances commit the same key.
func NewIdempotencyStore(ctx context.Context, cfg config.IdempotencyConfig, redisCfg config.RedisConfig, logger *zap.Logger) (shared.IdempotencyStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Store {
	case "redis":
		store, err := NewRedisIdempotencyStore(ctx, RedisConfig{
			Addr:     redisCfg.Addr(),
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("redis idempotency store: %w", err)
		}
		logger.Info("using Redis idempotency store", zap.String("addr", redisCfg.Addr()))
		return store, nil
	case "", "memory":
		logger.Info("using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(0), nil
	default:
		return nil, fmt.Errorf("unknown idempotency store %q", cfg.Store)
	}
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/erp/pos/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisIdempotencyStore_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := NewRedisIdempotencyStore(ctx, RedisConfig{Addr: "127.0.0.1:1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}

func TestRedisIdempotencyStore_WrapsErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	store := NewRedisIdempotencyStoreWithClient(client, "")
	defer store.Close()
	ctx := context.Background()

	assert.Equal(t, defaultKeyPrefix, store.keyPrefix)

	_, err := store.MarkProcessed(ctx, "k", time.Minute)
	assert.ErrorContains(t, err, "failed to claim idempotency key")

	_, err = store.IsProcessed(ctx, "k")
	assert.ErrorContains(t, err, "failed to check idempotency key")

	err = store.Release(ctx, "k")
	assert.ErrorContains(t, err, "failed to release idempotency key")
}

func TestNewIdempotencyStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		store, err := NewIdempotencyStore(ctx, config.IdempotencyConfig{Store: "memory"}, config.RedisConfig{}, nil)
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("redis unreachable is an error", func(t *testing.T) {
		_, err := NewIdempotencyStore(ctx, config.IdempotencyConfig{Store: "redis"},
			config.RedisConfig{Host: "127.0.0.1", Port: 1}, nil)
		assert.Error(t, err)
	})

	t.Run("unknown store", func(t *testing.T) {
		_, err := NewIdempotencyStore(ctx, config.IdempotencyConfig{Store: "etcd"}, config.RedisConfig{}, nil)
		assert.Error(t, err)
	})
}

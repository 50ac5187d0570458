package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(t *testing.T) (*InMemoryIdempotencyStore, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	store := NewInMemoryIdempotencyStore(time.Hour)
	store.now = clock.Now
	t.Cleanup(func() { _ = store.Close() })
	return store, clock
}

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	ctx := context.Background()

	t.Run("first claim wins", func(t *testing.T) {
		store, _ := newTestStore(t)

		fresh, err := store.MarkProcessed(ctx, "key-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, fresh)

		fresh, err = store.MarkProcessed(ctx, "key-1", time.Hour)
		require.NoError(t, err)
		assert.False(t, fresh)
	})

	t.Run("expired claim can be taken again", func(t *testing.T) {
		store, clock := newTestStore(t)

		_, _ = store.MarkProcessed(ctx, "key-2", time.Minute)
		clock.Advance(2 * time.Minute)

		fresh, err := store.MarkProcessed(ctx, "key-2", time.Minute)
		require.NoError(t, err)
		assert.True(t, fresh)
	})

	t.Run("released claim can be taken again", func(t *testing.T) {
		store, _ := newTestStore(t)

		_, _ = store.MarkProcessed(ctx, "key-3", time.Hour)
		require.NoError(t, store.Release(ctx, "key-3"))

		processed, err := store.IsProcessed(ctx, "key-3")
		require.NoError(t, err)
		assert.False(t, processed)

		fresh, err := store.MarkProcessed(ctx, "key-3", time.Hour)
		require.NoError(t, err)
		assert.True(t, fresh)
	})

	t.Run("concurrent claims have one winner", func(t *testing.T) {
		store, _ := newTestStore(t)

		var winners atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if fresh, _ := store.MarkProcessed(ctx, "shared", time.Hour); fresh {
					winners.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), winners.Load())
	})
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	processed, err := store.IsProcessed(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, processed)

	_, _ = store.MarkProcessed(ctx, "key", time.Minute)
	processed, _ = store.IsProcessed(ctx, "key")
	assert.True(t, processed)

	clock.Advance(time.Minute)
	processed, _ = store.IsProcessed(ctx, "key")
	assert.False(t, processed)
}

func TestInMemoryIdempotencyStore_Sweep(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	_, _ = store.MarkProcessed(ctx, "short", time.Minute)
	_, _ = store.MarkProcessed(ctx, "long", time.Hour)
	clock.Advance(10 * time.Minute)

	store.sweep()
	assert.Equal(t, 1, store.Len())
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Millisecond)
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

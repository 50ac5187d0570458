package cache

import (
	"context"
	"sync"
	"time"

	"github.com/erp/pos/internal/domain/shared"
)

// InMemoryIdempotencyStore keeps sale commit keys in a process-local map.
// Suitable for a single gateway instance and for tests.
type InMemoryIdempotencyStore struct {
	mu        sync.Mutex
	keys      map[string]time.Time // key -> expiry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore creates the store and starts its expiry sweeper
func NewInMemoryIdempotencyStore(sweepInterval time.Duration) *InMemoryIdempotencyStore {
	if sweepInterval <= 0 {
		sweepInterval = 5 * time.Minute
	}
	store := &InMemoryIdempotencyStore{
		keys:     make(map[string]time.Time),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	store.wg.Add(1)
	go store.sweepLoop(sweepInterval)
	return store
}

// MarkProcessed claims key for ttl. False means a live claim already exists.
func (s *InMemoryIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if expiry, ok := s.keys[key]; ok && now.Before(expiry) {
		return false, nil
	}
	s.keys[key] = now.Add(ttl)
	return true, nil
}

// IsProcessed reports whether key holds a live claim
func (s *InMemoryIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.keys[key]
	return ok && s.now().Before(expiry), nil
}

// Release drops the claim on key
func (s *InMemoryIdempotencyStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.keys, key)
	s.mu.Unlock()
	return nil
}

// Close stops the sweeper. Safe to call multiple times.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// Len returns the number of stored keys, expired ones included until swept
func (s *InMemoryIdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

func (s *InMemoryIdempotencyStore) sweepLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *InMemoryIdempotencyStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, expiry := range s.keys {
		if !now.Before(expiry) {
			delete(s.keys, key)
		}
	}
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)

package pos

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TerminalRegistry keeps one Terminal per cashier and evicts idle ones
type TerminalRegistry struct {
	mu        sync.Mutex
	terminals map[string]*Terminal
	deps      TerminalDeps
	idleTTL   time.Duration
	logger    *zap.Logger

	stopCh    chan struct{}
	closeOnce sync.Once
}

// NewTerminalRegistry creates a registry. idleTTL zero disables eviction.
func NewTerminalRegistry(deps TerminalDeps, idleTTL time.Duration) *TerminalRegistry {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TerminalRegistry{
		terminals: make(map[string]*Terminal),
		deps:      deps,
		idleTTL:   idleTTL,
		logger:    logger,
		stopCh:    make(chan struct{}),
	}
}

// Get returns the cashier's terminal, creating it on first use. The
// terminal is marked used so the eviction loop keeps it.
func (r *TerminalRegistry) Get(cashierID string) *Terminal {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.terminals[cashierID]
	if !ok {
		t = NewTerminal(cashierID, r.deps)
		r.terminals[cashierID] = t
		r.logger.Debug("terminal created", zap.String("cashier_id", cashierID))
		return t
	}
	t.touch()
	return t
}

// Len returns the number of live terminals
func (r *TerminalRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.terminals)
}

// Start runs the eviction loop until ctx is done or Close is called
func (r *TerminalRegistry) Start(ctx context.Context, interval time.Duration) {
	if r.idleTTL <= 0 || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-r.stopCh:
				return
			case now := <-ticker.C:
				r.EvictIdle(now)
			}
		}
	}()
}

// EvictIdle drops terminals unused since before now-idleTTL.
// A terminal with a commit in flight is kept.
func (r *TerminalRegistry) EvictIdle(now time.Time) int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, t := range r.terminals {
		if t.submitting.Load() || t.LastUsed().After(cutoff) {
			continue
		}
		delete(r.terminals, id)
		evicted++
	}
	if evicted > 0 {
		r.logger.Info("evicted idle terminals", zap.Int("count", evicted))
	}
	return evicted
}

// Close stops the eviction loop
func (r *TerminalRegistry) Close() error {
	r.closeOnce.Do(func() {
		close(r.stopCh)
	})
	return nil
}

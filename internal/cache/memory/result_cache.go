// Package memory provides an in-process result cache used when Redis is
// not configured. It keeps the API surface usable in single-process
// deployments; serve mode still requires the Redis cache because it runs
// without the monitor loop in the same process.
package memory

import (
	"context"
	"sync"

	"github.com/leowang-dev/polytriage/internal/domain"
)

// ResultCache is a mutex-guarded single-slot cache for the latest result
// and snapshot batch.
type ResultCache struct {
	mu        sync.RWMutex
	result    domain.StrategyResult
	hasResult bool
	snapshots []domain.MarketSnapshot
}

var _ domain.ResultCache = (*ResultCache)(nil)

// NewResultCache creates an empty ResultCache.
func NewResultCache() *ResultCache {
	return &ResultCache{}
}

// SetResult stores the latest strategy result.
func (c *ResultCache) SetResult(_ context.Context, result domain.StrategyResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result = result
	c.hasResult = true
	return nil
}

// GetResult returns the latest strategy result, or domain.ErrNoResult if
// no analysis has been stored yet.
func (c *ResultCache) GetResult(_ context.Context) (domain.StrategyResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.hasResult {
		return domain.StrategyResult{}, domain.ErrNoResult
	}
	return c.result, nil
}

// SetSnapshots stores the snapshot batch behind the latest result.
func (c *ResultCache) SetSnapshots(_ context.Context, snapshots []domain.MarketSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots = snapshots
	return nil
}

// GetSnapshots returns the stored snapshot batch, or domain.ErrNotFound
// when nothing has been stored.
func (c *ResultCache) GetSnapshots(_ context.Context) ([]domain.MarketSnapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshots == nil {
		return nil, domain.ErrNotFound
	}
	return c.snapshots, nil
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/leowang-dev/polytriage/internal/domain"
)

// Key schema:
//
//	polytriage:result:latest    JSON-encoded domain.StrategyResult
//	polytriage:snapshots:latest JSON-encoded []domain.MarketSnapshot
const (
	resultKey    = "polytriage:result:latest"
	snapshotsKey = "polytriage:snapshots:latest"
)

// ResultCache stores the latest analysis result and the snapshot batch it
// was produced from, so the HTTP shell can serve reads without waiting on
// the next monitor cycle.
type ResultCache struct {
	client *Client
	ttl    time.Duration
}

var _ domain.ResultCache = (*ResultCache)(nil)

// NewResultCache creates a ResultCache on top of an existing Client. A
// zero ttl means entries never expire.
func NewResultCache(client *Client, ttl time.Duration) *ResultCache {
	return &ResultCache{client: client, ttl: ttl}
}

// SetResult stores the latest strategy result.
func (c *ResultCache) SetResult(ctx context.Context, result domain.StrategyResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("redis: marshal result: %w", err)
	}
	if err := c.client.rdb.Set(ctx, resultKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set result: %w", err)
	}
	return nil
}

// GetResult returns the latest strategy result, or domain.ErrNoResult if
// no analysis has been cached yet.
func (c *ResultCache) GetResult(ctx context.Context) (domain.StrategyResult, error) {
	data, err := c.client.rdb.Get(ctx, resultKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.StrategyResult{}, domain.ErrNoResult
	}
	if err != nil {
		return domain.StrategyResult{}, fmt.Errorf("redis: get result: %w", err)
	}

	var result domain.StrategyResult
	if err := json.Unmarshal(data, &result); err != nil {
		return domain.StrategyResult{}, fmt.Errorf("redis: unmarshal result: %w", err)
	}
	return result, nil
}

// SetSnapshots stores the snapshot batch behind the latest result.
func (c *ResultCache) SetSnapshots(ctx context.Context, snapshots []domain.MarketSnapshot) error {
	data, err := json.Marshal(snapshots)
	if err != nil {
		return fmt.Errorf("redis: marshal snapshots: %w", err)
	}
	if err := c.client.rdb.Set(ctx, snapshotsKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set snapshots: %w", err)
	}
	return nil
}

// GetSnapshots returns the cached snapshot batch, or domain.ErrNotFound
// when nothing has been cached.
func (c *ResultCache) GetSnapshots(ctx context.Context) ([]domain.MarketSnapshot, error) {
	data, err := c.client.rdb.Get(ctx, snapshotsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get snapshots: %w", err)
	}

	var snapshots []domain.MarketSnapshot
	if err := json.Unmarshal(data, &snapshots); err != nil {
		return nil, fmt.Errorf("redis: unmarshal snapshots: %w", err)
	}
	return snapshots, nil
}

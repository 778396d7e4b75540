package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"postdeck/internal/model"
)

const (
	// AnalyticsCachePrefix is the key prefix for per-draft stats.
	AnalyticsCachePrefix = "analytics:draft:"

	// AnalyticsCacheTTL bounds how stale displayed stats can be. Ayrshare
	// rate limits are tight enough that we never fetch per page view.
	AnalyticsCacheTTL = 15 * time.Minute
)

// AnalyticsCache stores fetched engagement stats as JSON with a TTL.
type AnalyticsCache interface {
	// Get returns the cached stats, or (nil, false, nil) on a miss.
	Get(ctx context.Context, draftID int64) (*model.PostAnalytics, bool, error)

	// Set stores the stats with the default TTL.
	Set(ctx context.Context, draftID int64, stats *model.PostAnalytics) error
}

// RedisAnalyticsCache implements AnalyticsCache on plain Redis strings.
type RedisAnalyticsCache struct {
	client *redis.Client
}

// NewAnalyticsCache creates an AnalyticsCache backed by Redis.
func NewAnalyticsCache(client *redis.Client) AnalyticsCache {
	return &RedisAnalyticsCache{client: client}
}

func analyticsKey(draftID int64) string {
	return fmt.Sprintf("%s%d", AnalyticsCachePrefix, draftID)
}

func (c *RedisAnalyticsCache) Get(ctx context.Context, draftID int64) (*model.PostAnalytics, bool, error) {
	data, err := c.client.Get(ctx, analyticsKey(draftID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("analytics get: %w", err)
	}

	var stats model.PostAnalytics
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, false, fmt.Errorf("analytics unmarshal: %w", err)
	}
	return &stats, true, nil
}

func (c *RedisAnalyticsCache) Set(ctx context.Context, draftID int64, stats *model.PostAnalytics) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("analytics marshal: %w", err)
	}
	if err := c.client.Set(ctx, analyticsKey(draftID), data, AnalyticsCacheTTL).Err(); err != nil {
		return fmt.Errorf("analytics set: %w", err)
	}
	return nil
}

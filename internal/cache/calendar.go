package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// CalendarCachePrefix is the key prefix for per-user calendar caches.
	CalendarCachePrefix = "calendar:user:"

	// CalendarCacheCap is the maximum number of scheduled posts cached per
	// user.
	CalendarCacheCap = 500

	// CalendarCacheTTL refreshes on every write.
	CalendarCacheTTL = 30 * 24 * time.Hour
)

// ScheduledPost is one draft with its publish-time score for caching.
type ScheduledPost struct {
	DraftID     int64
	ScheduledAt int64 // Unix timestamp
}

// CalendarCache is the interface for the scheduled-post calendar cache.
// An interface keeps services and workers testable with in-memory fakes.
type CalendarCache interface {
	// Add inserts or updates a scheduled post in a user's calendar.
	// Pipeline: ZADD + ZREMRANGEBYRANK (maintain cap) + EXPIRE.
	Add(ctx context.Context, userID, draftID int64, scheduledAt int64) error

	// Remove drops a post from a user's calendar (unschedule, publish).
	Remove(ctx context.Context, userID, draftID int64) error

	// Range returns draft IDs scheduled in [from, to], ascending by time.
	Range(ctx context.Context, userID int64, from, to int64) ([]int64, []int64, error)

	// Warm bulk-loads scheduled posts into a user's calendar.
	Warm(ctx context.Context, userID int64, posts []ScheduledPost) error

	// Exists reports whether the user has a calendar cache entry. False
	// means new user or expired TTL; the service should warm it.
	Exists(ctx context.Context, userID int64) (bool, error)
}

// RedisCalendarCache implements CalendarCache on Redis Sorted Sets, scored
// by publish unix time.
type RedisCalendarCache struct {
	client *redis.Client
}

// NewCalendarCache creates a CalendarCache backed by Redis.
func NewCalendarCache(client *redis.Client) CalendarCache {
	return &RedisCalendarCache{client: client}
}

func calendarKey(userID int64) string {
	return fmt.Sprintf("%s%d", CalendarCachePrefix, userID)
}

func (c *RedisCalendarCache) Add(ctx context.Context, userID, draftID int64, scheduledAt int64) error {
	key := calendarKey(userID)

	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(scheduledAt), Member: draftID})
	pipe.ZRemRangeByRank(ctx, key, 0, -(CalendarCacheCap + 1))
	pipe.Expire(ctx, key, CalendarCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("calendar add: %w", err)
	}
	return nil
}

func (c *RedisCalendarCache) Remove(ctx context.Context, userID, draftID int64) error {
	if err := c.client.ZRem(ctx, calendarKey(userID), draftID).Err(); err != nil {
		return fmt.Errorf("calendar remove: %w", err)
	}
	return nil
}

func (c *RedisCalendarCache) Range(ctx context.Context, userID int64, from, to int64) ([]int64, []int64, error) {
	results, err := c.client.ZRangeByScoreWithScores(ctx, calendarKey(userID), &redis.ZRangeBy{
		Min: strconv.FormatInt(from, 10),
		Max: strconv.FormatInt(to, 10),
	}).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("calendar range: %w", err)
	}

	draftIDs := make([]int64, 0, len(results))
	times := make([]int64, 0, len(results))
	for _, z := range results {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		draftIDs = append(draftIDs, id)
		times = append(times, int64(z.Score))
	}
	return draftIDs, times, nil
}

func (c *RedisCalendarCache) Warm(ctx context.Context, userID int64, posts []ScheduledPost) error {
	if len(posts) == 0 {
		return nil
	}

	key := calendarKey(userID)
	members := make([]redis.Z, len(posts))
	for i, p := range posts {
		members[i] = redis.Z{Score: float64(p.ScheduledAt), Member: p.DraftID}
	}

	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, key, members...)
	pipe.Expire(ctx, key, CalendarCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("calendar warm: %w", err)
	}
	return nil
}

func (c *RedisCalendarCache) Exists(ctx context.Context, userID int64) (bool, error) {
	n, err := c.client.Exists(ctx, calendarKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("calendar exists: %w", err)
	}
	return n > 0, nil
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskpilot/taskpilot/internal/allocation/domain"
)

// SnapshotCache caches computed workload reports. A miss returns (nil, nil);
// errors are degradation signals, never failures, since the report can
// always be recomputed.
type SnapshotCache interface {
	Get(ctx context.Context, personID int64, windowStart time.Time) (*domain.WorkloadReport, error)
	Set(ctx context.Context, report domain.WorkloadReport) error
	Invalidate(ctx context.Context, personID int64) error
}

// DefaultSnapshotTTL bounds how stale a cached report may be.
const DefaultSnapshotTTL = 5 * time.Minute

// RedisSnapshotCache stores workload reports in Redis, keyed by person and
// window start.
type RedisSnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSnapshotCache creates a cache with the given TTL; ttl <= 0 uses
// the default.
func NewRedisSnapshotCache(client *redis.Client, ttl time.Duration) *RedisSnapshotCache {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &RedisSnapshotCache{client: client, ttl: ttl}
}

func snapshotKey(personID int64, windowStart time.Time) string {
	return fmt.Sprintf("taskpilot:workload:%d:%s", personID, domain.DayKey(windowStart))
}

func personKeyPattern(personID int64) string {
	return fmt.Sprintf("taskpilot:workload:%d:*", personID)
}

// Get returns the cached report or (nil, nil) on a miss.
func (c *RedisSnapshotCache) Get(ctx context.Context, personID int64, windowStart time.Time) (*domain.WorkloadReport, error) {
	data, err := c.client.Get(ctx, snapshotKey(personID, windowStart)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var report domain.WorkloadReport
	if err := json.Unmarshal(data, &report); err != nil {
		// A corrupt entry is treated as a miss.
		return nil, nil
	}
	return &report, nil
}

// Set stores the report under its person and window start.
func (c *RedisSnapshotCache) Set(ctx context.Context, report domain.WorkloadReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, snapshotKey(report.PersonID, report.WindowStart), data, c.ttl).Err()
}

// Invalidate drops all cached windows for a person, called after anything
// that changes their load.
func (c *RedisSnapshotCache) Invalidate(ctx context.Context, personID int64) error {
	iter := c.client.Scan(ctx, 0, personKeyPattern(personID), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Package cache provides the Redis-backed dashboard summary cache.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/quickcut/backend/internal/booking/application/queries"
	"github.com/redis/go-redis/v9"
)

const summaryTTL = 5 * time.Minute

// RedisSummaryCache caches dashboard summaries in Redis. All failures
// are logged and swallowed; callers fall back to direct computation.
type RedisSummaryCache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisSummaryCache creates a cache backed by the given client.
func NewRedisSummaryCache(client *redis.Client, logger *slog.Logger) *RedisSummaryCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisSummaryCache{client: client, logger: logger}
}

func summaryKey(barberID uuid.UUID, date string) string {
	return fmt.Sprintf("dashboard:%s:%s", barberID, date)
}

// Get returns the cached summary for a barber-date, if present.
func (c *RedisSummaryCache) Get(ctx context.Context, barberID uuid.UUID, date string) (*queries.DashboardSummary, bool) {
	data, err := c.client.Get(ctx, summaryKey(barberID, date)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("summary cache read failed", "error", err)
		}
		return nil, false
	}

	var summary queries.DashboardSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		c.logger.Warn("summary cache entry corrupt", "error", err)
		return nil, false
	}
	return &summary, true
}

// Set stores a computed summary.
func (c *RedisSummaryCache) Set(ctx context.Context, summary *queries.DashboardSummary) {
	data, err := json.Marshal(summary)
	if err != nil {
		c.logger.Warn("summary cache encode failed", "error", err)
		return
	}
	key := summaryKey(summary.BarberID, summary.Date)
	if err := c.client.Set(ctx, key, data, summaryTTL).Err(); err != nil {
		c.logger.Warn("summary cache write failed", "error", err)
	}
}

// Invalidate drops the cached summary for a barber-date. Called after
// every booking lifecycle transition.
func (c *RedisSummaryCache) Invalidate(ctx context.Context, barberID uuid.UUID, date time.Time) error {
	key := summaryKey(barberID, date.UTC().Format("2006-01-02"))
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("summary cache invalidate failed", "error", err)
		return err
	}
	return nil
}

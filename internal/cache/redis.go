// Package cache keeps rating summaries in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jobboard/apiserver/config"
	"github.com/jobboard/apiserver/internal/metrics"
	"github.com/jobboard/apiserver/types"
	"github.com/redis/go-redis/v9"
)

const (
	defaultTimeout = 5 * time.Second
	ratingTTL      = 10 * time.Minute
)

// Connect opens a Redis client and checks it with a ping.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// RatingCache stores rating averages under rating:avg:<user id>.
type RatingCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRatingCache(client redis.Cmdable) *RatingCache {
	return &RatingCache{client: client, ttl: ratingTTL}
}

// Get reports a miss with ok=false and a nil error.
func (c *RatingCache) Get(ctx context.Context, userID int) (types.RatingSummary, bool, error) {
	raw, err := c.client.Get(ctx, ratingKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RatingCacheLookups.WithLabelValues("miss").Inc()
		return types.RatingSummary{}, false, nil
	}
	if err != nil {
		metrics.RatingCacheLookups.WithLabelValues("error").Inc()
		return types.RatingSummary{}, false, fmt.Errorf("rating cache get: %w", err)
	}

	var summary types.RatingSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		metrics.RatingCacheLookups.WithLabelValues("error").Inc()
		return types.RatingSummary{}, false, fmt.Errorf("rating cache decode: %w", err)
	}
	metrics.RatingCacheLookups.WithLabelValues("hit").Inc()
	return summary, true, nil
}

func (c *RatingCache) Set(ctx context.Context, userID int, summary types.RatingSummary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, ratingKey(userID), raw, c.ttl).Err()
}

func (c *RatingCache) Invalidate(ctx context.Context, userID int) error {
	return c.client.Del(ctx, ratingKey(userID)).Err()
}

func ratingKey(userID int) string {
	return "rating:avg:" + strconv.Itoa(userID)
}

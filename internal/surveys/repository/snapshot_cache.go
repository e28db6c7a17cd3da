package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/crowdsourcing/surveyadmin/internal/surveys/domain"
	"github.com/redis/go-redis/v9"
)

const (
	surveyListKey      = "survey:api:list" // full survey list as served by the API
	DefaultSnapshotTTL = 10 * time.Minute
)

// SnapshotCache keeps the rendered survey list in Redis
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotCache creates a cache whose entries expire after ttl
func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &SnapshotCache{client: client, ttl: ttl}
}

// Get returns the cached list. ok is false on a miss.
func (c *SnapshotCache) Get(ctx context.Context) (surveys []domain.Survey, ok bool, err error) {
	data, err := c.client.Get(ctx, surveyListKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get survey snapshot: %w", err)
	}

	if err := json.Unmarshal(data, &surveys); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal survey snapshot: %w", err)
	}
	return surveys, true, nil
}

// Set stores the list
func (c *SnapshotCache) Set(ctx context.Context, surveys []domain.Survey) error {
	data, err := json.Marshal(surveys)
	if err != nil {
		return fmt.Errorf("failed to marshal survey snapshot: %w", err)
	}
	if err := c.client.Set(ctx, surveyListKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set survey snapshot: %w", err)
	}
	return nil
}

// Invalidate drops the cached list
func (c *SnapshotCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, surveyListKey).Err(); err != nil {
		return fmt.Errorf("failed to delete survey snapshot: %w", err)
	}
	return nil
}

package querycache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/gundriai/merovote-app/internal/domain"
	"github.com/gundriai/merovote-app/internal/metrics"
)

const feedKey = "feed:aggregated"

// RedisCache shares poll snapshots between processes, for deployments where
// several dashboard or watch instances sit in front of the same backend.
// Staleness is expressed as the key TTL.
type RedisCache struct {
	client    *redis.Client
	staleTime time.Duration
}

func NewRedisCache(client *redis.Client, staleTime time.Duration) *RedisCache {
	return &RedisCache{client: client, staleTime: staleTime}
}

func pollKey(pollID string) string {
	return fmt.Sprintf("poll:%s", pollID)
}

func (c *RedisCache) GetPoll(ctx context.Context, pollID string) (*domain.Poll, error) {
	data, err := c.client.Get(ctx, pollKey(pollID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheOperation("get_poll", false)
			return nil, nil
		}
		return nil, fmt.Errorf("get poll from cache: %w", err)
	}

	var poll domain.Poll
	if err := json.Unmarshal(data, &poll); err != nil {
		return nil, fmt.Errorf("unmarshal cached poll: %w", err)
	}

	metrics.RecordCacheOperation("get_poll", true)
	return &poll, nil
}

func (c *RedisCache) SetPoll(ctx context.Context, poll *domain.Poll) error {
	data, err := json.Marshal(poll)
	if err != nil {
		return fmt.Errorf("marshal poll: %w", err)
	}
	if err := c.client.Set(ctx, pollKey(poll.ID), data, c.staleTime).Err(); err != nil {
		return fmt.Errorf("set poll in cache: %w", err)
	}
	return nil
}

func (c *RedisCache) InvalidatePoll(ctx context.Context, pollID string) error {
	if err := c.client.Del(ctx, pollKey(pollID)).Err(); err != nil {
		return fmt.Errorf("invalidate poll: %w", err)
	}
	return nil
}

func (c *RedisCache) GetFeed(ctx context.Context) (*domain.FeedSnapshot, error) {
	data, err := c.client.Get(ctx, feedKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheOperation("get_feed", false)
			return nil, nil
		}
		return nil, fmt.Errorf("get feed from cache: %w", err)
	}

	var snapshot domain.FeedSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal cached feed: %w", err)
	}

	metrics.RecordCacheOperation("get_feed", true)
	return &snapshot, nil
}

func (c *RedisCache) SetFeed(ctx context.Context, snapshot *domain.FeedSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal feed: %w", err)
	}
	if err := c.client.Set(ctx, feedKey, data, c.staleTime).Err(); err != nil {
		return fmt.Errorf("set feed in cache: %w", err)
	}
	return nil
}

func (c *RedisCache) InvalidateFeed(ctx context.Context) error {
	if err := c.client.Del(ctx, feedKey).Err(); err != nil {
		return fmt.Errorf("invalidate feed: %w", err)
	}
	return nil
}

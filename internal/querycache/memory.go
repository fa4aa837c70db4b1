package querycache

import (
	"context"
	"sync"
	"time"

	"github.com/gundriai/merovote-app/internal/domain"
	"github.com/gundriai/merovote-app/internal/metrics"
)

type pollEntry struct {
	poll      *domain.Poll
	fetchedAt time.Time
}

type feedEntry struct {
	snapshot  *domain.FeedSnapshot
	fetchedAt time.Time
}

// MemoryCache is the in-process Cache used by the CLI: entries older than
// staleTime are treated as misses.
type MemoryCache struct {
	mu        sync.RWMutex
	staleTime time.Duration
	polls     map[string]pollEntry
	feed      *feedEntry
	now       func() time.Time
}

func NewMemoryCache(staleTime time.Duration) *MemoryCache {
	return &MemoryCache{
		staleTime: staleTime,
		polls:     make(map[string]pollEntry),
		now:       time.Now,
	}
}

func (c *MemoryCache) fresh(fetchedAt time.Time) bool {
	return c.now().Sub(fetchedAt) < c.staleTime
}

func (c *MemoryCache) GetPoll(_ context.Context, pollID string) (*domain.Poll, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.polls[pollID]
	if !ok || !c.fresh(entry.fetchedAt) {
		metrics.RecordCacheOperation("get_poll", false)
		return nil, nil
	}
	metrics.RecordCacheOperation("get_poll", true)
	return entry.poll, nil
}

func (c *MemoryCache) SetPoll(_ context.Context, poll *domain.Poll) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.polls[poll.ID] = pollEntry{poll: poll, fetchedAt: c.now()}
	return nil
}

func (c *MemoryCache) InvalidatePoll(_ context.Context, pollID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.polls, pollID)
	return nil
}

func (c *MemoryCache) GetFeed(_ context.Context) (*domain.FeedSnapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.feed == nil || !c.fresh(c.feed.fetchedAt) {
		metrics.RecordCacheOperation("get_feed", false)
		return nil, nil
	}
	metrics.RecordCacheOperation("get_feed", true)
	return c.feed.snapshot, nil
}

func (c *MemoryCache) SetFeed(_ context.Context, snapshot *domain.FeedSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.feed = &feedEntry{snapshot: snapshot, fetchedAt: c.now()}
	return nil
}

func (c *MemoryCache) InvalidateFeed(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.feed = nil
	return nil
}

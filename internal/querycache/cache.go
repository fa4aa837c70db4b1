package querycache

import (
	"context"

	"github.com/gundriai/merovote-app/internal/domain"
)

// Cache holds fetched poll snapshots keyed by poll ID, plus the aggregated
// feed, each with a staleness window. A miss (absent or stale) returns nil
// without error; mutations invalidate keys so the next read refetches
// authoritative state.
type Cache interface {
	GetPoll(ctx context.Context, pollID string) (*domain.Poll, error)
	SetPoll(ctx context.Context, poll *domain.Poll) error
	InvalidatePoll(ctx context.Context, pollID string) error

	GetFeed(ctx context.Context) (*domain.FeedSnapshot, error)
	SetFeed(ctx context.Context, snapshot *domain.FeedSnapshot) error
	InvalidateFeed(ctx context.Context) error
}

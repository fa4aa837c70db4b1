package events

import (
	"context"
	"time"

	"github.com/gundriai/merovote-app/internal/domain"
)

const (
	TypeVoteCast       = "vote.cast"
	TypeCommentPosted  = "comment.posted"
	TypeCommentReacted = "comment.reacted"
)

type VoteCastEvent struct {
	PollID   string    `json:"pollId"`
	OptionID string    `json:"optionId"`
	UserID   string    `json:"userId,omitempty"`
	At       time.Time `json:"at"`
}

type CommentPostedEvent struct {
	PollID string    `json:"pollId"`
	Author string    `json:"author"`
	At     time.Time `json:"at"`
}

type CommentReactedEvent struct {
	PollID       string              `json:"pollId"`
	CommentID    string              `json:"commentId"`
	ReactionType domain.ReactionKind `json:"reactionType"`
	At           time.Time           `json:"at"`
}

// Publisher receives an event after every successful mutation the session
// performs. Publish failures are logged by the caller and never fail the
// mutation itself.
type Publisher interface {
	PublishVoteCast(ctx context.Context, event VoteCastEvent) error
	PublishCommentPosted(ctx context.Context, event CommentPostedEvent) error
	PublishCommentReacted(ctx context.Context, event CommentReactedEvent) error
	Close() error
}

// NopPublisher drops events; the default when no publisher is configured.
type NopPublisher struct{}

func (NopPublisher) PublishVoteCast(context.Context, VoteCastEvent) error           { return nil }
func (NopPublisher) PublishCommentPosted(context.Context, CommentPostedEvent) error { return nil }
func (NopPublisher) PublishCommentReacted(context.Context, CommentReactedEvent) error {
	return nil
}
func (NopPublisher) Close() error { return nil }

// MultiPublisher fans every event out to all wrapped publishers. The first
// error wins; later publishers still run.
type MultiPublisher struct {
	publishers []Publisher
}

func Multi(publishers ...Publisher) *MultiPublisher {
	return &MultiPublisher{publishers: publishers}
}

func (m *MultiPublisher) PublishVoteCast(ctx context.Context, event VoteCastEvent) error {
	var firstErr error
	for _, p := range m.publishers {
		if err := p.PublishVoteCast(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *MultiPublisher) PublishCommentPosted(ctx context.Context, event CommentPostedEvent) error {
	var firstErr error
	for _, p := range m.publishers {
		if err := p.PublishCommentPosted(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *MultiPublisher) PublishCommentReacted(ctx context.Context, event CommentReactedEvent) error {
	var firstErr error
	for _, p := range m.publishers {
		if err := p.PublishCommentReacted(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *MultiPublisher) Close() error {
	var firstErr error
	for _, p := range m.publishers {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Channel carries all client events on Redis pub/sub; `merovote watch`
// subscribes to it from another process.
const Channel = "merovote:events"

type wireEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// RedisPublisher fans events out over Redis pub/sub.
type RedisPublisher struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisPublisher(client *redis.Client, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, logger: logger}
}

func (p *RedisPublisher) publish(ctx context.Context, eventType string, data interface{}) error {
	payload, err := json.Marshal(wireEvent{Type: eventType, Data: data})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}
	if err := p.client.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}
	p.logger.Debug("published event",
		zap.String("type", eventType),
	)
	return nil
}

func (p *RedisPublisher) PublishVoteCast(ctx context.Context, event VoteCastEvent) error {
	return p.publish(ctx, TypeVoteCast, event)
}

func (p *RedisPublisher) PublishCommentPosted(ctx context.Context, event CommentPostedEvent) error {
	return p.publish(ctx, TypeCommentPosted, event)
}

func (p *RedisPublisher) PublishCommentReacted(ctx context.Context, event CommentReactedEvent) error {
	return p.publish(ctx, TypeCommentReacted, event)
}

// Close is a no-op: the injected redis client is shared with other
// components and closed by its owner.
func (p *RedisPublisher) Close() error {
	return nil
}

// RawEvent is what the consumer hands to its callback: the type plus the
// undecoded payload.
type RawEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Consume subscribes to the event channel and invokes handle for each event
// until the context is cancelled.
func Consume(ctx context.Context, client *redis.Client, logger *zap.Logger, handle func(RawEvent)) error {
	sub := client.Subscribe(ctx, Channel)
	defer func() {
		_ = sub.Close()
	}()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event RawEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				logger.Warn("discarding malformed event payload",
					zap.Error(err),
				)
				continue
			}
			handle(event)
		}
	}
}

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const exchangeName = "merovote"

// RabbitMQPublisher exports client events to an analytics broker, for kiosk
// and booth deployments that report voting activity centrally.
type RabbitMQPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *zap.Logger
}

func cleanup(ch *amqp.Channel, conn *amqp.Connection, logger *zap.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close RabbitMQ channel", zap.Error(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close RabbitMQ connection", zap.Error(err))
		}
	}
}

func NewRabbitMQPublisher(host string, port int, user, password, vhost string, logger *zap.Logger) (*RabbitMQPublisher, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%d/%s", user, password, host, port, vhost)
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		cleanup(nil, conn, logger)
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchangeName,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		cleanup(ch, conn, logger)
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &RabbitMQPublisher{
		conn:    conn,
		channel: ch,
		logger:  logger,
	}, nil
}

func (p *RabbitMQPublisher) publish(ctx context.Context, eventType string, data interface{}) error {
	payload, err := json.Marshal(wireEvent{Type: eventType, Data: data})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	err = p.channel.PublishWithContext(ctx,
		exchangeName,
		eventType,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        payload,
			Timestamp:   time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.Debug("published event to broker",
		zap.String("type", eventType),
	)
	return nil
}

func (p *RabbitMQPublisher) PublishVoteCast(ctx context.Context, event VoteCastEvent) error {
	return p.publish(ctx, TypeVoteCast, event)
}

func (p *RabbitMQPublisher) PublishCommentPosted(ctx context.Context, event CommentPostedEvent) error {
	return p.publish(ctx, TypeCommentPosted, event)
}

func (p *RabbitMQPublisher) PublishCommentReacted(ctx context.Context, event CommentReactedEvent) error {
	return p.publish(ctx, TypeCommentReacted, event)
}

func (p *RabbitMQPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		p.logger.Error("failed to close RabbitMQ channel", zap.Error(err))
	}
	return p.conn.Close()
}

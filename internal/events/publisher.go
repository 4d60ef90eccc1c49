package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Event types
const (
	TypeExtracted = "extracted"
	TypeSaved     = "saved"
)

// SessionEvent describes a capture session status transition.
type SessionEvent struct {
	SessionID    string    `json:"sessionId"`
	Type         string    `json:"type"`
	Status       string    `json:"status"`
	VideoPath    string    `json:"videoPath,omitempty"`
	PreviewTotal int       `json:"previewTotal"`
	SavedCount   int       `json:"savedCount,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Publisher delivers session events.
type Publisher interface {
	Publish(ctx context.Context, event SessionEvent) error
	Close() error
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, SessionEvent) error { return nil }
func (Noop) Close() error                                { return nil }

// Config holds RabbitMQ settings
type Config struct {
	URL        string
	Exchange   string
	RoutingKey string
}

// channel is the subset of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher publishes session events to a topic exchange.
type RabbitPublisher struct {
	conn       *amqp.Connection
	channel    channel
	exchange   string
	routingKey string
	logger     *zap.Logger
}

// NewRabbitPublisher dials RabbitMQ and declares the exchange.
func NewRabbitPublisher(cfg Config, logger *zap.Logger) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open publisher channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}

	logger.Info("rabbitmq publisher initialized",
		zap.String("exchange", cfg.Exchange),
		zap.String("routing_key", cfg.RoutingKey),
	)

	p := newRabbitPublisher(ch, cfg.Exchange, cfg.RoutingKey, logger)
	p.conn = conn
	return p, nil
}

func newRabbitPublisher(ch channel, exchange, routingKey string, logger *zap.Logger) *RabbitPublisher {
	return &RabbitPublisher{
		channel:    ch,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     logger,
	}
}

func (p *RabbitPublisher) Publish(ctx context.Context, event SessionEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal session event: %w", err)
	}

	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		p.routingKey,
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.Timestamp,
			Type:         event.Type,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}
	return nil
}

func (p *RabbitPublisher) Close() error {
	var firstErr error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			firstErr = err
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Envelope wraps every message published by this service.
type Envelope struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Client publishes mail jobs to a durable queue and domain events to a
// topic exchange over one channel.
type Client struct {
	mu        sync.Mutex
	conn      *amqp.Connection
	channel   publisher
	closer    func() error
	mailQueue string
	exchange  string
	logger    *zap.Logger
}

func New(url, mailQueue, exchange string, logger *zap.Logger) (*Client, error) {
	const op = "queue.New"
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := ch.QueueDeclare(mailQueue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("%s: declare queue: %w", op, err)
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("%s: declare exchange: %w", op, err)
	}

	logger.Info("Connected to RabbitMQ",
		zap.String("mail_queue", mailQueue),
		zap.String("exchange", exchange),
	)

	return &Client{
		conn:      conn,
		channel:   ch,
		closer:    func() error { ch.Close(); return conn.Close() },
		mailQueue: mailQueue,
		exchange:  exchange,
		logger:    logger,
	}, nil
}

// EnqueueMail pushes a mail job onto the work queue via the default exchange.
func (c *Client) EnqueueMail(ctx context.Context, job any) error {
	return c.publish(ctx, "", c.mailQueue, "mail.send", job)
}

// PublishEvent broadcasts a domain event with routing key name.
func (c *Client) PublishEvent(ctx context.Context, name string, payload any) error {
	return c.publish(ctx, c.exchange, name, name, payload)
}

func (c *Client) publish(ctx context.Context, exchange, key, typ string, payload any) error {
	const op = "queue.publish"

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	body, err := json.Marshal(Envelope{Type: typ, OccurredAt: time.Now().UTC(), Payload: raw})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err = c.channel.PublishWithContext(ctx, exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Type:         typ,
	})
	if err != nil {
		c.logger.Error("Failed to publish message",
			zap.String("exchange", exchange),
			zap.String("routing_key", key),
			zap.Error(err),
		)
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ErrClosed reports a dropped broker connection.
var ErrClosed = errors.New("rabbitmq connection closed")

// Ping reports whether the broker connection is still open.
func (c *Client) Ping(_ context.Context) error {
	if c.conn == nil || c.conn.IsClosed() {
		return ErrClosed
	}
	return nil
}

func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

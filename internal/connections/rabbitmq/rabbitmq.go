package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"foodbot/internal/config"
	"foodbot/internal/domain"
)

const (
	ordersExchange   = "orders_topic"
	placedRoutingKey = "orders.placed"
)

// Client publishes order events with publisher confirms enabled.
type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel

	acks <-chan amqp.Confirmation
	mu   sync.Mutex // serializes publishes so confirms match up
}

func Dial(cfg config.RabbitMQ) (*Client, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%d/%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.VHost)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, 1))

	return &Client{conn: conn, ch: ch, acks: acks}, nil
}

func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

func (c *Client) Ping() error {
	if c.conn == nil || c.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	return nil
}

// DeclareTopology declares the exchange this service publishes to.
func (c *Client) DeclareTopology() error {
	return c.ch.ExchangeDeclare(ordersExchange, "topic", true, false, false, false, nil)
}

// PublishOrderPlaced publishes a persistent order-placed event and waits
// for the broker ack.
func (c *Client) PublishOrderPlaced(ctx context.Context, ev domain.OrderPlacedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err = c.ch.PublishWithContext(ctx, ordersExchange, placedRoutingKey, false, false, amqp.Publishing{
		DeliveryMode:  amqp.Persistent,
		ContentType:   "application/json",
		CorrelationId: fmt.Sprintf("%d", ev.OrderID),
		Timestamp:     time.Now().UTC(),
		Body:          body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}

	select {
	case conf := <-c.acks:
		if !conf.Ack {
			return fmt.Errorf("broker nacked order event %d", ev.OrderID)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

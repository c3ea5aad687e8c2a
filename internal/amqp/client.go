// Package amqp publishes and consumes club activity events over RabbitMQ.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"acecheckin/internal/core"
)

// publishTimeout caps how long one publish may block the request path.
const publishTimeout = 5 * time.Second

var errDeliveriesClosed = errors.New("delivery channel closed")

// Client owns one connection and one channel. The exchange is direct and
// durable, the queue durable, and the binding uses the queue name as the
// routing key.
type Client struct {
	conn     *amqp091.Connection
	ch       *amqp091.Channel
	exchange string
	queue    string
}

func NewClient(url, exchange, queue string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	c := &Client{conn: conn, ch: ch, exchange: exchange, queue: queue}
	if err := c.declareTopology(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) declareTopology() error {
	if err := c.ch.ExchangeDeclare(c.exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", c.exchange, err)
	}
	if _, err := c.ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", c.queue, err)
	}
	if err := c.ch.QueueBind(c.queue, c.queue, c.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", c.queue, err)
	}
	return nil
}

// PublishEntryLogged publishes an activity event for a saved check-in entry.
func (c *Client) PublishEntryLogged(ctx context.Context, entry core.EntryLog, memberName string) error {
	return c.publish(ctx, NewEntryLoggedEvent(entry, memberName))
}

// PublishPaymentLogged publishes an activity event for a saved payment.
func (c *Client) PublishPaymentLogged(ctx context.Context, payment core.PaymentLog, memberName string) error {
	return c.publish(ctx, NewPaymentLoggedEvent(payment, memberName))
}

func (c *Client) publish(ctx context.Context, event *Event) error {
	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	msg := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	}
	if err := c.ch.PublishWithContext(ctx, c.exchange, c.queue, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.Kind, err)
	}

	slog.InfoContext(ctx, "Published activity event",
		"kind", event.Kind,
		"id", event.ID,
		"member_id", event.MemberID)
	return nil
}

// Consume delivers queue messages to handler until ctx is cancelled. A
// payload that does not decode is dropped, a handler error requeues the
// delivery, everything else is acked.
func (c *Client) Consume(ctx context.Context, handler func(*Event) error) error {
	deliveries, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}
	slog.InfoContext(ctx, "Started consuming activity events", "queue", c.queue)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping event consumption", "reason", ctx.Err())
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errDeliveriesClosed
			}
			c.dispatch(ctx, d, handler)
		}
	}
}

func (c *Client) dispatch(ctx context.Context, d amqp091.Delivery, handler func(*Event) error) {
	event, err := EventFromJSON(d.Body)
	if err != nil {
		slog.ErrorContext(ctx, "Dropping undecodable event", "error", err)
		d.Nack(false, false)
		return
	}

	if err := handler(event); err != nil {
		slog.ErrorContext(ctx, "Requeueing event after handler error",
			"error", err,
			"kind", event.Kind,
			"id", event.ID)
		d.Nack(false, true)
		return
	}

	d.Ack(false)
}

// Close releases the channel and connection.
func (c *Client) Close() error {
	if c.ch != nil {
		c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

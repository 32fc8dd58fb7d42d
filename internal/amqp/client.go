package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

// Client owns the AMQP connection and the channel used for consuming and
// publishing. Request/reply calls open short-lived channels of their own.
type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
}

func NewClient(url, exchangeName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	return nil
}

// DeclareQueue declares a durable queue and binds it to the exchange with
// the queue name as routing key.
func (c *Client) DeclareQueue(name string) error {
	_, err := c.channel.QueueDeclare(
		name,  // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = c.channel.QueueBind(
		name,           // queue name
		name,           // routing key (same as queue name for direct exchange)
		c.exchangeName, // exchange
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// HandleFunc processes one decoded request and returns the reply body to
// send back when the sender asked for one.
type HandleFunc func(ctx context.Context, req *Request) ([]byte, error)

// ConsumeRequests reads request messages from queue until ctx is cancelled.
// Undecodable messages are rejected without requeue; handler failures are
// rejected without requeue as well, since the handler wraps every domain
// failure into a reply envelope and only infrastructure errors surface here.
func (c *Client) ConsumeRequests(ctx context.Context, queue string, handle HandleFunc) error {
	msgs, err := c.channel.Consume(
		queue, // queue
		"",    // consumer
		false, // auto-ack (we want manual ack)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming requests", "queue", queue)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping request consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			req, err := RequestFromJSON(delivery.Body)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to unmarshal request", "error", err)
				delivery.Nack(false, false) // reject and don't requeue
				continue
			}

			slog.InfoContext(ctx, "Processing request",
				"pattern", req.Pattern,
				"user_id", req.UserID())

			reply, err := handle(ctx, req)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to handle request",
					"error", err,
					"pattern", req.Pattern)
				delivery.Nack(false, false)
				continue
			}

			if delivery.ReplyTo != "" && reply != nil {
				if err := c.publishReply(ctx, delivery, reply); err != nil {
					slog.ErrorContext(ctx, "Failed to publish reply",
						"error", err,
						"pattern", req.Pattern,
						"reply_to", delivery.ReplyTo)
					delivery.Nack(false, true) // requeue: the work is still undelivered
					continue
				}
			}

			delivery.Ack(false)
		}
	}
}

// publishReply sends the reply body to the sender's reply queue on the
// default exchange, echoing the correlation id.
func (c *Client) publishReply(ctx context.Context, delivery amqp091.Delivery, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return c.channel.PublishWithContext(
		ctx,
		"",                // default exchange
		delivery.ReplyTo,  // routing key
		false,             // mandatory
		false,             // immediate
		amqp091.Publishing{
			ContentType:   "application/json",
			CorrelationId: delivery.CorrelationId,
			Timestamp:     time.Now(),
			Body:          body,
		},
	)
}

// Call performs a request/reply exchange against another service's queue
// and returns the raw reply body. Each call uses its own channel and an
// exclusive server-named reply queue, so concurrent calls don't interfere.
func (c *Client) Call(ctx context.Context, queue, pattern string, payload any) (json.RawMessage, error) {
	req, err := NewRequest(pattern, payload)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	body, err := req.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open call channel: %w", err)
	}
	defer ch.Close()

	replyQueue, err := ch.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("declare reply queue: %w", err)
	}

	replies, err := ch.Consume(
		replyQueue.Name, // queue
		"",              // consumer
		true,            // auto-ack
		true,            // exclusive
		false,           // no-local
		false,           // no-wait
		nil,             // args
	)
	if err != nil {
		return nil, fmt.Errorf("consume reply queue: %w", err)
	}

	correlationID := uuid.NewString()
	err = ch.PublishWithContext(
		ctx,
		"",    // default exchange
		queue, // routing key
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:   "application/json",
			CorrelationId: correlationID,
			ReplyTo:       replyQueue.Name,
			Timestamp:     time.Now(),
			Body:          body,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("publish request: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case delivery, ok := <-replies:
			if !ok {
				return nil, fmt.Errorf("reply channel closed")
			}
			if delivery.CorrelationId != correlationID {
				continue
			}
			return delivery.Body, nil
		}
	}
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

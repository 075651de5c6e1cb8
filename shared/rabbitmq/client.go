// shared/rabbitmq/client.go
package rabbitmq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Client holds one connection and one channel to the broker.
type Client struct {
	// conn is the tcp connection to the broker
	conn *amqp.Connection
	chn  *amqp.Channel
}

// NewClient dials url and opens a channel.
func NewClient(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	// A channel is a logical session inside the connection.
	chn, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return &Client{conn: conn, chn: chn}, nil
}

// Close shuts the channel and then the connection.
func (c *Client) Close() error {
	if err := c.chn.Close(); err != nil {
		c.conn.Close()
		return err
	}
	return c.conn.Close()
}

// DeclareQueue makes sure a durable queue exists.
func (c *Client) DeclareQueue(name string) error {
	_, err := c.chn.QueueDeclare(
		name,  // name of queue
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", name, err)
	}
	return nil
}

// Publish sends a persistent JSON message to queue through the default
// exchange.
func (c *Client) Publish(ctx context.Context, queue string, body []byte) error {
	return c.chn.PublishWithContext(
		ctx,
		"",    // exchange
		queue, // routing key (queue name)
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// Consume returns the bodies delivered on queue until ctx ends. Messages
// are acknowledged once handed over.
func (c *Client) Consume(ctx context.Context, queue string) (<-chan []byte, error) {
	deliveries, err := c.chn.ConsumeWithContext(
		ctx,
		queue, // queue
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to consume %s: %w", queue, err)
	}
	out := make(chan []byte)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				select {
				case out <- d.Body:
					d.Ack(false)
				case <-ctx.Done():
					d.Nack(false, true)
					return
				}
			}
		}
	}()
	return out, nil
}

// pkg/kafka/consumer.go
package kafka

import (
	"context"
	"log/slog"
	"strings"
	"time"

	skafka "github.com/segmentio/kafka-go"
)

// Reader is the subset of kafka.Reader the consumer needs.
type Reader interface {
	FetchMessage(ctx context.Context) (skafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// Handler processes one message. A non-nil error leaves the message
// uncommitted so the group sees it again.
type Handler func(ctx context.Context, key, value []byte) error

// Consumer reads a topic as part of a consumer group.
type Consumer struct {
	reader Reader
	logger *slog.Logger
}

// NewConsumer joins groupID on topic. Members of one group split the
// partitions between them.
func NewConsumer(brokers, topic, groupID string, logger *slog.Logger) *Consumer {
	addrs := strings.Split(brokers, ",")
	for i := range addrs {
		addrs[i] = strings.TrimSpace(addrs[i])
	}
	r := skafka.NewReader(skafka.ReaderConfig{
		Brokers:     addrs,
		Topic:       topic,
		GroupID:     groupID,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     500 * time.Millisecond,
		StartOffset: skafka.LastOffset,
	})
	return NewConsumerWithReader(r, logger)
}

// NewConsumerWithReader allows injecting a test reader.
func NewConsumerWithReader(r Reader, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{reader: r, logger: logger}
}

// Start fetches and handles messages until ctx ends.
func (c *Consumer) Start(ctx context.Context, handler Handler) {
	for {
		if ctx.Err() != nil {
			return
		}
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("kafka fetch failed", "err", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		processCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = handler(processCtx, m.Key, m.Value)
		cancel()
		if err != nil {
			c.logger.Warn("kafka message not processed", "offset", m.Offset, "err", err)
			continue
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			c.logger.Warn("kafka commit failed", "offset", m.Offset, "err", err)
		}
	}
}

// Close leaves the group.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

// pkg/kafka/producer.go
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	skafka "github.com/segmentio/kafka-go"
)

// Writer is the subset of kafka.Writer the producer needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// Publisher publishes JSON events keyed for partitioning.
type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
	Close() error
}

// Producer is a thin wrapper around a kafka writer implementing Publisher.
type Producer struct {
	writer Writer
	source string
	logger *slog.Logger
}

// NewProducer writes to topic on the comma separated broker list.
func NewProducer(brokers, topic, source string, logger *slog.Logger) *Producer {
	addrs := strings.Split(brokers, ",")
	for i := range addrs {
		addrs[i] = strings.TrimSpace(addrs[i])
	}
	w := &skafka.Writer{
		Addr:                   skafka.TCP(addrs...),
		Topic:                  topic,
		Balancer:               &skafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           skafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return NewProducerWithWriter(w, source, logger)
}

// NewProducerWithWriter allows injecting a test writer.
func NewProducerWithWriter(w Writer, source string, logger *slog.Logger) *Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Producer{writer: w, source: source, logger: logger}
}

// Publish marshals value to JSON and writes one message under key. The
// message carries the producing source and content type as headers.
func (p *Producer) Publish(ctx context.Context, key string, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal kafka value: %w", err)
	}
	msg := skafka.Message{
		Key:   []byte(key),
		Value: b,
		Headers: []skafka.Header{
			{Key: "source", Value: []byte(p.source)},
			{Key: "content-type", Value: []byte("application/json")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("kafka write failed", "key", key, "err", err)
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

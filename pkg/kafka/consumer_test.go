package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	skafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

// fakeReader serves queued messages, then blocks until the context ends.
type fakeReader struct {
	mu        sync.Mutex
	queue     []skafka.Message
	committed []int64
}

func (f *fakeReader) FetchMessage(ctx context.Context) (skafka.Message, error) {
	f.mu.Lock()
	if len(f.queue) > 0 {
		m := f.queue[0]
		f.queue = f.queue[1:]
		f.mu.Unlock()
		return m, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return skafka.Message{}, ctx.Err()
}

func (f *fakeReader) CommitMessages(ctx context.Context, msgs ...skafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	return nil
}

func (f *fakeReader) Close() error { return nil }

func TestConsumer_CommitsOnlyHandledMessages(t *testing.T) {
	r := &fakeReader{queue: []skafka.Message{
		{Offset: 1, Value: []byte("ok")},
		{Offset: 2, Value: []byte("bad")},
		{Offset: 3, Value: []byte("ok")},
	}}
	c := NewConsumerWithReader(r, nil)

	ctx, cancel := context.WithCancel(context.Background())
	var seen []string
	c.Start(ctx, func(ctx context.Context, key, value []byte) error {
		seen = append(seen, string(value))
		if len(seen) == 3 {
			cancel()
		}
		if string(value) == "bad" {
			return errors.New("cannot decode")
		}
		return nil
	})

	assert.Equal(t, []string{"ok", "bad", "ok"}, seen)
	assert.Equal(t, []int64{1, 3}, r.committed)
}

package activity

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	skafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/pkg/kafka"
)

type recordingWriter struct {
	mu   sync.Mutex
	msgs []skafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...skafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestKafkaRecorder_PublishesKeyedByUser(t *testing.T) {
	w := &recordingWriter{}
	rec := NewKafkaRecorder(kafka.NewProducerWithWriter(w, "tmsctl", quiet()), quiet())

	rec.Record(context.Background(), Event{Type: ShipmentFlagged, UserID: "u1", ShipmentID: "s1", Detail: map[string]string{"reason": "damaged"}})
	rec.Record(context.Background(), Event{Type: ShipmentUnflagged, UserID: "u1", ShipmentID: "s1"})
	require.NoError(t, rec.Close())

	require.Len(t, w.msgs, 2)
	types := map[string]bool{}
	for _, msg := range w.msgs {
		assert.Equal(t, "u1", string(msg.Key))
		var ev Event
		require.NoError(t, json.Unmarshal(msg.Value, &ev))
		assert.NotEmpty(t, ev.ID)
		assert.False(t, ev.At.IsZero())
		types[ev.Type] = true
	}
	assert.True(t, types[ShipmentFlagged])
	assert.True(t, types[ShipmentUnflagged])
}

func TestKafkaRecorder_PublishFailureIsSwallowed(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	rec := NewKafkaRecorder(kafka.NewProducerWithWriter(w, "tmsctl", quiet()), quiet())

	rec.Record(context.Background(), Event{Type: SessionLogin, UserID: "u1"})
	assert.NoError(t, rec.Close())
}

func TestKafkaRecorder_OutlivesCanceledContext(t *testing.T) {
	w := &recordingWriter{}
	rec := NewKafkaRecorder(kafka.NewProducerWithWriter(w, "tmsctl", quiet()), quiet())

	ctx, cancel := context.WithCancel(context.Background())
	rec.Record(ctx, Event{Type: SessionLogout, UserID: "u1"})
	cancel()
	require.NoError(t, rec.Close())
	assert.Len(t, w.msgs, 1)
}

func TestMemory(t *testing.T) {
	var m Memory
	m.Record(context.Background(), Event{Type: SessionLogin})
	m.Record(context.Background(), Event{Type: SessionLogout})
	assert.Equal(t, []string{SessionLogin, SessionLogout}, m.Types())
	Nop{}.Record(context.Background(), Event{})
}

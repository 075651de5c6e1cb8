package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	queue  string
	bodies [][]byte
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, queue string, body []byte) error {
	f.queue = queue
	if f.err != nil {
		return f.err
	}
	f.bodies = append(f.bodies, body)
	return nil
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.Success(context.Background(), "Shipment flagged")
	c.Error(context.Background(), "Failed to delete shipment")
	assert.Equal(t, "✓ Shipment flagged\n✗ Failed to delete shipment\n", buf.String())
}

func TestQueue_PublishesJSON(t *testing.T) {
	pub := &fakePublisher{}
	q := NewQueue(pub, "tms.notices", quiet())
	q.Success(context.Background(), "Status updated successfully")

	require.Len(t, pub.bodies, 1)
	assert.Equal(t, "tms.notices", pub.queue)
	var n Notice
	require.NoError(t, json.Unmarshal(pub.bodies[0], &n))
	assert.Equal(t, LevelSuccess, n.Level)
	assert.Equal(t, "Status updated successfully", n.Message)
}

func TestQueue_FailureDoesNotPanic(t *testing.T) {
	q := NewQueue(&fakePublisher{err: errors.New("closed")}, "tms.notices", quiet())
	q.Error(context.Background(), "Failed to update flag status")
}

func TestMulti(t *testing.T) {
	a, b := &Memory{}, &Memory{}
	Multi{a, b}.Error(context.Background(), "Failed to delete shipment")

	for _, m := range []*Memory{a, b} {
		n, ok := m.Last()
		require.True(t, ok)
		assert.Equal(t, LevelError, n.Level)
	}
}

func TestFollow(t *testing.T) {
	src := make(chan []byte, 3)
	body, _ := json.Marshal(Notice{Level: LevelSuccess, Message: "Shipment unflagged", At: time.Now()})
	src <- []byte("garbage")
	src <- body
	close(src)

	var buf bytes.Buffer
	require.NoError(t, Follow(context.Background(), src, &buf))
	assert.Contains(t, buf.String(), "✓ Shipment unflagged")
	assert.NotContains(t, buf.String(), "garbage")
}

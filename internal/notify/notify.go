// internal/notify/notify.go
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is a transient confirmation or failure message shown to the
// operator.
type Notice struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier shows notices.
type Notifier interface {
	Success(ctx context.Context, msg string)
	Error(ctx context.Context, msg string)
}

// Console writes notices to the terminal.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Success(_ context.Context, msg string) { c.write(LevelSuccess, msg) }
func (c *Console) Error(_ context.Context, msg string)   { c.write(LevelError, msg) }

func (c *Console) write(level Level, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, format(Notice{Level: level, Message: msg}))
}

func format(n Notice) string {
	if n.Level == LevelError {
		return "✗ " + n.Message
	}
	return "✓ " + n.Message
}

// QueuePublisher is satisfied by the shared RabbitMQ client.
type QueuePublisher interface {
	Publish(ctx context.Context, queue string, body []byte) error
}

// Queue forwards notices to a broker queue so other terminals of the same
// operator can follow them.
type Queue struct {
	pub    QueuePublisher
	queue  string
	logger *slog.Logger
}

func NewQueue(pub QueuePublisher, queue string, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{pub: pub, queue: queue, logger: logger}
}

func (q *Queue) Success(ctx context.Context, msg string) { q.send(ctx, LevelSuccess, msg) }
func (q *Queue) Error(ctx context.Context, msg string)   { q.send(ctx, LevelError, msg) }

func (q *Queue) send(ctx context.Context, level Level, msg string) {
	body, err := json.Marshal(Notice{Level: level, Message: msg, At: time.Now().UTC()})
	if err != nil {
		q.logger.Warn("notice not encoded", "err", err)
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := q.pub.Publish(pubCtx, q.queue, body); err != nil {
		q.logger.Warn("notice not forwarded", "queue", q.queue, "err", err)
	}
}

// Multi fans a notice out to every notifier.
type Multi []Notifier

func (m Multi) Success(ctx context.Context, msg string) {
	for _, n := range m {
		n.Success(ctx, msg)
	}
}

func (m Multi) Error(ctx context.Context, msg string) {
	for _, n := range m {
		n.Error(ctx, msg)
	}
}

// Memory records notices in order.
type Memory struct {
	mu      sync.Mutex
	notices []Notice
}

func (m *Memory) Success(_ context.Context, msg string) { m.add(LevelSuccess, msg) }
func (m *Memory) Error(_ context.Context, msg string)   { m.add(LevelError, msg) }

func (m *Memory) add(level Level, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices = append(m.notices, Notice{Level: level, Message: msg, At: time.Now()})
}

func (m *Memory) Notices() []Notice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Notice(nil), m.notices...)
}

// Last returns the most recent notice.
func (m *Memory) Last() (Notice, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.notices) == 0 {
		return Notice{}, false
	}
	return m.notices[len(m.notices)-1], true
}

// Follow prints notices read from src until it closes or ctx ends.
// Undecodable bodies are skipped.
func Follow(ctx context.Context, src <-chan []byte, out io.Writer) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case body, ok := <-src:
			if !ok {
				return nil
			}
			var n Notice
			if err := json.Unmarshal(body, &n); err != nil {
				continue
			}
			fmt.Fprintf(out, "%s  %s\n", n.At.Local().Format("15:04:05"), format(n))
		}
	}
}

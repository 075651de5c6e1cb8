// internal/activity/activity.go
package activity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/pkg/kafka"
)

// Event types. Only actions the API confirmed are recorded.
const (
	SessionLogin         = "session.login"
	SessionRegister      = "session.register"
	SessionLogout        = "session.logout"
	SessionInvalidated   = "session.invalidated"
	ShipmentCreated      = "shipment.created"
	ShipmentUpdated      = "shipment.updated"
	ShipmentDeleted      = "shipment.deleted"
	ShipmentFlagged      = "shipment.flagged"
	ShipmentUnflagged    = "shipment.unflagged"
	ShipmentStatusUpdate = "shipment.status_updated"
)

// Event is one operator action.
type Event struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	UserID     string            `json:"userId,omitempty"`
	ShipmentID string            `json:"shipmentId,omitempty"`
	Detail     map[string]string `json:"detail,omitempty"`
	At         time.Time         `json:"at"`
}

// Recorder receives operator events. Record never blocks the caller on the
// sink and never fails the action it describes.
type Recorder interface {
	Record(ctx context.Context, ev Event)
	Close() error
}

func stamp(ev Event) Event {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	return ev
}

// Nop drops every event.
type Nop struct{}

func (Nop) Record(context.Context, Event) {}
func (Nop) Close() error                  { return nil }

// KafkaRecorder publishes events in the background, keyed by user so one
// operator's events stay ordered within a partition.
type KafkaRecorder struct {
	pub     kafka.Publisher
	logger  *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewKafkaRecorder(pub kafka.Publisher, logger *slog.Logger) *KafkaRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaRecorder{pub: pub, logger: logger, timeout: 5 * time.Second}
}

func (r *KafkaRecorder) Record(ctx context.Context, ev Event) {
	ev = stamp(ev)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()
		if err := r.pub.Publish(pubCtx, ev.UserID, ev); err != nil {
			r.logger.Warn("activity event dropped", "type", ev.Type, "err", err)
		}
	}()
}

// Close waits for in-flight publishes and closes the publisher.
func (r *KafkaRecorder) Close() error {
	r.wg.Wait()
	return r.pub.Close()
}

// Memory keeps recorded events in order for inspection.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func (m *Memory) Record(_ context.Context, ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, stamp(ev))
}

func (m *Memory) Close() error { return nil }

// Events returns a copy of the recorded events.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

// Types lists the recorded event types in order.
func (m *Memory) Types() []string {
	var out []string
	for _, ev := range m.Events() {
		out = append(out, ev.Type)
	}
	return out
}

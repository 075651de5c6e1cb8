// internal/views/env.go
package views

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/client"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/activity"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/models"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/notify"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/store"
)

var (
	// ErrLeft is returned when a response arrives after its view was left.
	// The response has been discarded.
	ErrLeft = errors.New("views: view was left before the response arrived")
	// ErrAdminOnly is returned for actions only administrators are offered.
	ErrAdminOnly = errors.New("views: action requires the ADMIN role")
	// ErrReasonRequired aborts a flag without a reason; nothing is sent.
	ErrReasonRequired = errors.New("views: a flag reason is required")
	// ErrInvalidStatus rejects a status outside the known set.
	ErrInvalidStatus = errors.New("views: unknown shipment status")
)

// API is the gateway surface the views use.
type API interface {
	Shipments(ctx context.Context, q models.ShipmentsQuery) (models.ShipmentConnection, error)
	CachedShipments(q models.ShipmentsQuery) (models.ShipmentConnection, bool)
	Shipment(ctx context.Context, id string) (*models.Shipment, error)
	CachedShipment(id string) (*models.Shipment, bool)
	ShipmentStats(ctx context.Context) (models.ShipmentStats, error)
	CachedStats() (models.ShipmentStats, bool)
	CreateShipment(ctx context.Context, input models.CreateShipmentInput) (*models.Shipment, error)
	UpdateShipment(ctx context.Context, id string, input models.UpdateShipmentInput) (*models.Shipment, error)
	DeleteShipment(ctx context.Context, id string) (*models.DeleteResult, error)
	FlagShipment(ctx context.Context, id, reason string) (*models.Shipment, error)
	UnflagShipment(ctx context.Context, id string) (*models.Shipment, error)
	UpdateShipmentStatus(ctx context.Context, id string, status models.ShipmentStatus) (*models.Shipment, error)
}

// Session is the identity surface the views use.
type Session interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	Register(ctx context.Context, input models.RegisterInput) (*models.User, error)
	Logout(ctx context.Context) error
	User() *models.User
	IsAuthenticated() bool
	IsAdmin() bool
	ExpiresAt() (time.Time, error)
}

// Env carries the collaborators every view shares.
type Env struct {
	API      API
	Session  Session
	Nav      *Navigator
	Notify   notify.Notifier
	Activity activity.Recorder
	Prefs    store.SessionStore
	Out      io.Writer
	Logger   *slog.Logger
	PageSize int
}

func (e *Env) placeholder(msg string) {
	fmt.Fprintln(e.Out, msg)
}

// failed reports a failed mutation with a generic notice. An expired
// session is reported by the login view instead.
func (e *Env) failed(ctx context.Context, notice string, err error) {
	e.Logger.Warn("action failed", "notice", notice, "err", err)
	if errors.Is(err, client.ErrUnauthenticated) {
		return
	}
	e.Notify.Error(ctx, notice)
}

func (e *Env) record(ctx context.Context, typ, shipmentID string, detail map[string]string) {
	ev := activity.Event{Type: typ, ShipmentID: shipmentID, Detail: detail}
	if u := e.Session.User(); u != nil {
		ev.UserID = u.ID
	}
	e.Activity.Record(ctx, ev)
}

// internal/views/dashboard.view.go
package views

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/models"
)

// recentQuery is the dashboard's "latest shipments" list.
var recentQuery = models.ShipmentsQuery{
	Sort:  &models.ShipmentSort{Field: models.SortCreatedAt, Order: models.SortDesc},
	Limit: 5,
}

// StatCard is one headline number.
type StatCard struct {
	Label string
	Value string
}

// Dashboard shows the headline stats and the five newest shipments.
type Dashboard struct {
	env *Env

	mu        sync.Mutex
	stats     *models.ShipmentStats
	statsErr  error
	recent    []models.Shipment
	recentSet bool
	recentErr error
}

func NewDashboard(env *Env) *Dashboard {
	return &Dashboard{env: env}
}

// Load fetches stats and recent shipments concurrently. Each result fills
// its own part of the view as it completes.
func (v *Dashboard) Load(ctx context.Context) error {
	gen := v.env.Nav.Generation()

	v.mu.Lock()
	if cached, ok := v.env.API.CachedStats(); ok {
		v.stats = &cached
	}
	if cached, ok := v.env.API.CachedShipments(recentQuery); ok {
		v.recent, v.recentSet = cached.Nodes(), true
	}
	empty := v.stats == nil && !v.recentSet
	v.mu.Unlock()
	if empty {
		v.env.placeholder("Loading dashboard…")
	}

	var g errgroup.Group
	g.Go(func() error {
		stats, err := v.env.API.ShipmentStats(ctx)
		if v.env.Nav.Left(gen) {
			return ErrLeft
		}
		v.mu.Lock()
		defer v.mu.Unlock()
		v.statsErr = err
		if err == nil {
			v.stats = &stats
		}
		return err
	})
	g.Go(func() error {
		conn, err := v.env.API.Shipments(ctx, recentQuery)
		if v.env.Nav.Left(gen) {
			return ErrLeft
		}
		v.mu.Lock()
		defer v.mu.Unlock()
		v.recentErr = err
		if err == nil {
			v.recent, v.recentSet = conn.Nodes(), true
		}
		return err
	})
	err := g.Wait()
	if v.env.Nav.Left(gen) {
		return ErrLeft
	}
	return err
}

// Stats returns the loaded stats, or zeros.
func (v *Dashboard) Stats() models.ShipmentStats {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stats == nil {
		return models.ShipmentStats{}
	}
	return *v.stats
}

// Recent returns the loaded recent shipments.
func (v *Dashboard) Recent() []models.Shipment {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]models.Shipment(nil), v.recent...)
}

// Cards returns the eight stat cards in display order.
func (v *Dashboard) Cards() []StatCard {
	s := v.Stats()
	return []StatCard{
		{"Total Shipments", strconv.Itoa(s.Total)},
		{"In Transit", strconv.Itoa(s.InTransit)},
		{"Delivered", strconv.Itoa(s.Delivered)},
		{"Pending", strconv.Itoa(s.Pending)},
		{"Delayed", strconv.Itoa(s.Delayed)},
		{"Cancelled", strconv.Itoa(s.Cancelled)},
		{"Flagged", strconv.Itoa(s.Flagged)},
		{"Avg Cost", money(s.AvgCost)},
	}
}

func (v *Dashboard) Render(w io.Writer) {
	name := ""
	if u := v.env.Session.User(); u != nil {
		name = u.FirstName
	}
	fmt.Fprintf(w, "Welcome back, %s\n\n", name)

	v.mu.Lock()
	statsErr, recentErr := v.statsErr, v.recentErr
	v.mu.Unlock()

	t := newTable(w)
	for _, c := range v.Cards() {
		t.Append([]string{c.Label, c.Value})
	}
	t.Render()
	if statsErr != nil {
		fmt.Fprintln(w, "(stats unavailable)")
	}

	s := v.Stats()
	fmt.Fprintf(w, "\nDelivery rate  %d%%\n", s.DeliveryRate())
	fmt.Fprintf(w, "On-time rate   %d%%\n", s.OnTimeRate())
	fmt.Fprintf(w, "Total revenue  %s\n", money(s.TotalCost))

	fmt.Fprintln(w, "\nRecent shipments")
	recent := v.Recent()
	switch {
	case recentErr != nil && len(recent) == 0:
		fmt.Fprintln(w, "  (recent shipments unavailable)")
	case len(recent) == 0:
		fmt.Fprintln(w, "  No shipments yet")
	default:
		t = newTable(w)
		for _, sh := range recent {
			t.Append([]string{sh.TrackingNumber, label(sh.Status), place(sh.Origin) + " → " + place(sh.Destination), day(sh.CreatedAt)})
		}
		t.Render()
	}

	fmt.Fprintln(w, "\nQuick links")
	fmt.Fprintf(w, "  Delayed shipments  %d  (shipments --status DELAYED)\n", s.Delayed)
	fmt.Fprintf(w, "  Flagged shipments  %d  (shipments --flagged)\n", s.Flagged)
}

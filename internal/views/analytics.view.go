// internal/views/analytics.view.go
package views

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/models"
)

// Slice is one row of the status distribution.
type Slice struct {
	Label   string
	Count   int
	Percent int
}

// Analytics shows rates, revenue and the status distribution.
type Analytics struct {
	env *Env

	mu     sync.Mutex
	stats  *models.ShipmentStats
	loaded bool
}

func NewAnalytics(env *Env) *Analytics {
	return &Analytics{env: env}
}

func (v *Analytics) Load(ctx context.Context) error {
	gen := v.env.Nav.Generation()
	if cached, ok := v.env.API.CachedStats(); ok {
		v.set(cached)
	} else {
		v.env.placeholder("Loading analytics…")
	}

	stats, err := v.env.API.ShipmentStats(ctx)
	if v.env.Nav.Left(gen) {
		return ErrLeft
	}
	if err != nil {
		return err
	}
	v.set(stats)
	return nil
}

func (v *Analytics) set(s models.ShipmentStats) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stats, v.loaded = &s, true
}

func (v *Analytics) Stats() models.ShipmentStats {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stats == nil {
		return models.ShipmentStats{}
	}
	return *v.stats
}

// Distribution returns the status breakdown with whole percentages of the
// total.
func (v *Analytics) Distribution() []Slice {
	s := v.Stats()
	rows := []struct {
		label string
		count int
	}{
		{"Delivered", s.Delivered},
		{"In Transit", s.InTransit},
		{"Pending", s.Pending},
		{"Delayed", s.Delayed},
		{"Cancelled", s.Cancelled},
	}
	out := make([]Slice, 0, len(rows))
	for _, r := range rows {
		out = append(out, Slice{Label: r.label, Count: r.count, Percent: s.Percent(r.count)})
	}
	return out
}

func (v *Analytics) Render(w io.Writer) {
	v.mu.Lock()
	loaded := v.loaded
	v.mu.Unlock()
	if !loaded {
		fmt.Fprintln(w, "Loading analytics…")
		return
	}

	s := v.Stats()
	fmt.Fprintln(w, "Analytics")
	t := newTable(w)
	t.AppendBulk([][]string{
		{"Total shipments", strconv.Itoa(s.Total)},
		{"Delivery rate", fmt.Sprintf("%d%%", s.DeliveryRate())},
		{"On-time rate", fmt.Sprintf("%d%%", s.OnTimeRate())},
		{"Revenue", "$" + s.RevenueThousands().StringFixed(1) + "K"},
		{"Avg cost", "$" + s.AvgCost.StringFixed(0)},
	})
	t.Render()

	fmt.Fprintln(w, "\nStatus distribution")
	t = newTable(w)
	for _, sl := range v.Distribution() {
		bar := strings.Repeat("█", sl.Percent/5)
		t.Append([]string{sl.Label, fmt.Sprintf("%d (%d%%)", sl.Count, sl.Percent), bar})
	}
	t.Render()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "⚑ %d flagged shipments need attention\n", s.Flagged)
	fmt.Fprintf(w, "⏳ %d shipments pending pickup\n", s.Pending)
}

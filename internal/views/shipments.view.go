// internal/views/shipments.view.go
package views

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/activity"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/models"
)

// ViewMode selects how the list is drawn.
type ViewMode string

const (
	ModeTile ViewMode = "tile" // one row per shipment
	ModeGrid ViewMode = "grid" // one card per shipment
)

// ShipmentList is the filterable, sortable shipments view.
type ShipmentList struct {
	env *Env

	mu sync.Mutex
	// URL-style parameters; a status parameter wins over SelectedStatus.
	paramStatus  models.ShipmentStatus
	paramFlagged bool

	selectedStatus   []models.ShipmentStatus
	selectedPriority []models.ShipmentPriority
	search           string
	sort             models.ShipmentSort
	page             int
	mode             ViewMode

	conn   models.ShipmentConnection
	loaded bool
}

func NewShipmentList(env *Env) *ShipmentList {
	return &ShipmentList{
		env:  env,
		sort: models.ShipmentSort{Field: models.SortCreatedAt, Order: models.SortDesc},
		page: 1,
		mode: ModeTile,
	}
}

// SetParams applies the route parameters "status" and "flagged".
func (v *ShipmentList) SetParams(r Route) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.paramStatus = models.ShipmentStatus(strings.ToUpper(r.Param("status")))
	v.paramFlagged = r.Param("flagged") == "true"
	v.page = 1
}

// ToggleStatus adds or removes s from the selected statuses.
func (v *ShipmentList) ToggleStatus(s models.ShipmentStatus) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selectedStatus = toggle(v.selectedStatus, s)
	v.page = 1
}

// TogglePriority adds or removes p from the selected priorities.
func (v *ShipmentList) TogglePriority(p models.ShipmentPriority) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selectedPriority = toggle(v.selectedPriority, p)
	v.page = 1
}

func (v *ShipmentList) SetSearch(term string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.search = strings.TrimSpace(term)
	v.page = 1
}

// SortBy flips the order when field is already the sort field, otherwise
// sorts by field descending.
func (v *ShipmentList) SortBy(field models.SortField) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.sort.Field == field {
		if v.sort.Order == models.SortAsc {
			v.sort.Order = models.SortDesc
		} else {
			v.sort.Order = models.SortAsc
		}
	} else {
		v.sort = models.ShipmentSort{Field: field, Order: models.SortDesc}
	}
	v.page = 1
}

func (v *ShipmentList) SetMode(m ViewMode) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mode = m
}

// ClearFilters drops selected statuses, priorities, search and route
// parameters. Sort and view mode are kept.
func (v *ShipmentList) ClearFilters() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selectedStatus = nil
	v.selectedPriority = nil
	v.search = ""
	v.paramStatus = ""
	v.paramFlagged = false
	v.page = 1
}

// Sort returns the active sort.
func (v *ShipmentList) Sort() models.ShipmentSort {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sort
}

// Filter builds the filter sent with the query.
func (v *ShipmentList) Filter() *models.ShipmentFilter {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filterLocked()
}

func (v *ShipmentList) filterLocked() *models.ShipmentFilter {
	f := &models.ShipmentFilter{}
	if v.paramStatus != "" {
		f.Status = []models.ShipmentStatus{v.paramStatus}
	} else if len(v.selectedStatus) > 0 {
		f.Status = append([]models.ShipmentStatus(nil), v.selectedStatus...)
	}
	if v.paramFlagged {
		flagged := true
		f.IsFlagged = &flagged
	}
	if len(v.selectedPriority) > 0 {
		f.Priority = append([]models.ShipmentPriority(nil), v.selectedPriority...)
	}
	f.Search = v.search
	if f.IsEmpty() {
		return nil
	}
	return f
}

func (v *ShipmentList) query(page int) models.ShipmentsQuery {
	v.mu.Lock()
	defer v.mu.Unlock()
	sort := v.sort
	return models.ShipmentsQuery{
		Filter: v.filterLocked(),
		Sort:   &sort,
		Page:   page,
		Limit:  v.env.PageSize,
	}
}

// Load fetches page 1 and replaces the list.
func (v *ShipmentList) Load(ctx context.Context) error {
	v.mu.Lock()
	v.page = 1
	v.mu.Unlock()
	return v.fetch(ctx, 1)
}

// LoadMore fetches the next page and appends it to the list. A list that
// was never loaded gets page 1 instead.
func (v *ShipmentList) LoadMore(ctx context.Context) error {
	v.mu.Lock()
	loaded, next, hasNext := v.loaded, v.page+1, v.conn.PageInfo.HasNextPage
	v.mu.Unlock()
	if !loaded {
		return v.Load(ctx)
	}
	if !hasNext {
		return nil
	}
	return v.fetch(ctx, next)
}

func (v *ShipmentList) fetch(ctx context.Context, page int) error {
	gen := v.env.Nav.Generation()
	q := v.query(page)

	if cached, ok := v.env.API.CachedShipments(q); ok && page == 1 {
		v.mu.Lock()
		v.conn, v.loaded = cached, true
		v.mu.Unlock()
	} else if !v.isLoaded() {
		v.env.placeholder("Loading shipments…")
	}

	conn, err := v.env.API.Shipments(ctx, q)
	if v.env.Nav.Left(gen) {
		return ErrLeft
	}
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.conn, v.loaded, v.page = conn, true, page
	return nil
}

func (v *ShipmentList) isLoaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}

// Shipments returns the displayed shipments.
func (v *ShipmentList) Shipments() []models.Shipment {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.conn.Nodes()
}

// Connection returns the displayed connection.
func (v *ShipmentList) Connection() models.ShipmentConnection {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.conn
}

// CanDelete reports whether the delete action is offered.
func (v *ShipmentList) CanDelete() bool {
	return v.env.Session.IsAdmin()
}

// Delete removes a shipment and refetches the list.
func (v *ShipmentList) Delete(ctx context.Context, id string) error {
	if !v.CanDelete() {
		return ErrAdminOnly
	}
	if _, err := v.env.API.DeleteShipment(ctx, id); err != nil {
		v.env.failed(ctx, "Failed to delete shipment", err)
		return err
	}
	v.env.Notify.Success(ctx, "Shipment deleted successfully")
	v.env.record(ctx, activity.ShipmentDeleted, id, nil)
	return v.Load(ctx)
}

// Flag marks a shipment with reason. An empty reason sends nothing.
func (v *ShipmentList) Flag(ctx context.Context, id, reason string) error {
	if err := flag(ctx, v.env, id, reason); err != nil {
		return err
	}
	return v.Load(ctx)
}

// Unflag clears a shipment's flag and refetches the list.
func (v *ShipmentList) Unflag(ctx context.Context, id string) error {
	if err := unflag(ctx, v.env, id); err != nil {
		return err
	}
	return v.Load(ctx)
}

// ToggleFlag unflags a flagged shipment, otherwise flags it with reason.
func (v *ShipmentList) ToggleFlag(ctx context.Context, id, reason string) error {
	for _, sh := range v.Shipments() {
		if sh.ID == id && sh.IsFlagged {
			return v.Unflag(ctx, id)
		}
	}
	return v.Flag(ctx, id, reason)
}

func (v *ShipmentList) Render(w io.Writer) {
	v.mu.Lock()
	conn, loaded, mode := v.conn, v.loaded, v.mode
	filter := v.filterLocked()
	sort := v.sort
	v.mu.Unlock()

	fmt.Fprintf(w, "Shipments  (sort %s %s", sort.Field, sort.Order)
	if filter != nil {
		fmt.Fprintf(w, ", filter %s", describeFilter(filter))
	}
	fmt.Fprintln(w, ")")

	if !loaded {
		fmt.Fprintln(w, "Loading shipments…")
		return
	}
	if len(conn.Edges) == 0 {
		fmt.Fprintln(w, "No shipments found")
		if filter != nil {
			fmt.Fprintln(w, "Try adjusting your filters (clear with `shipments --clear`).")
		}
		return
	}

	admin := v.CanDelete()
	if mode == ModeGrid {
		for _, e := range conn.Edges {
			renderCard(w, e.Node, admin)
		}
	} else {
		t := newTable(w, "ID", "TRACKING", "STATUS", "PRIORITY", "ROUTE", "CARRIER", "COST", "EST. DELIVERY", "FLAG")
		for _, e := range conn.Edges {
			sh := e.Node
			flagMark := ""
			if sh.IsFlagged {
				flagMark = "⚑"
			}
			t.Append([]string{
				sh.ID, sh.TrackingNumber, label(sh.Status), label(sh.Priority),
				place(sh.Origin) + " → " + place(sh.Destination), sh.Carrier, money(sh.Cost),
				day(sh.EstimatedDelivery), flagMark,
			})
		}
		t.Render()
	}

	fmt.Fprintf(w, "\nShowing %d of %d shipments  Page %d of %d\n",
		len(conn.Edges), conn.TotalCount, conn.PageInfo.CurrentPage, conn.PageInfo.TotalPages)
	actions := "Actions: more, shipment <id>, flag <id> --reason <text>, unflag <id>"
	if admin {
		actions += ", delete <id>"
	}
	fmt.Fprintln(w, actions)
}

func renderCard(w io.Writer, sh models.Shipment, admin bool) {
	fmt.Fprintf(w, "┌ %s  %s  [%s]\n", sh.TrackingNumber, label(sh.Status), label(sh.Priority))
	fmt.Fprintf(w, "│ %s → %s\n", place(sh.Origin), place(sh.Destination))
	fmt.Fprintf(w, "│ %s  %.1f lbs  %s\n", sh.Carrier, sh.Weight, money(sh.Cost))
	if sh.IsFlagged {
		fmt.Fprintf(w, "│ ⚑ %s\n", deref(sh.FlagReason))
	}
	footer := "└ id " + sh.ID
	if admin {
		footer += "  (delete available)"
	}
	fmt.Fprintln(w, footer)
}

func describeFilter(f *models.ShipmentFilter) string {
	var parts []string
	if len(f.Status) > 0 {
		parts = append(parts, fmt.Sprintf("status=%v", f.Status))
	}
	if len(f.Priority) > 0 {
		parts = append(parts, fmt.Sprintf("priority=%v", f.Priority))
	}
	if f.IsFlagged != nil {
		parts = append(parts, fmt.Sprintf("flagged=%t", *f.IsFlagged))
	}
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("search=%q", f.Search))
	}
	return strings.Join(parts, " ")
}

func toggle[T comparable](list []T, v T) []T {
	for i, x := range list {
		if x == v {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return append(list, v)
}

// flag and unflag are shared by the list and detail views.
func flag(ctx context.Context, env *Env, id, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}
	if _, err := env.API.FlagShipment(ctx, id, reason); err != nil {
		env.failed(ctx, "Failed to update flag status", err)
		return err
	}
	env.Notify.Success(ctx, "Shipment flagged")
	env.record(ctx, activity.ShipmentFlagged, id, map[string]string{"reason": reason})
	return nil
}

func unflag(ctx context.Context, env *Env, id string) error {
	if _, err := env.API.UnflagShipment(ctx, id); err != nil {
		env.failed(ctx, "Failed to update flag status", err)
		return err
	}
	env.Notify.Success(ctx, "Shipment unflagged")
	env.record(ctx, activity.ShipmentUnflagged, id, nil)
	return nil
}

// Create adds a shipment and refetches the list.
func (v *ShipmentList) Create(ctx context.Context, input models.CreateShipmentInput) (*models.Shipment, error) {
	sh, err := v.env.API.CreateShipment(ctx, input)
	if err != nil {
		v.env.failed(ctx, "Failed to create shipment", err)
		return nil, err
	}
	v.env.Notify.Success(ctx, "Shipment created successfully")
	v.env.record(ctx, activity.ShipmentCreated, sh.ID, map[string]string{"trackingNumber": sh.TrackingNumber})
	return sh, v.Load(ctx)
}

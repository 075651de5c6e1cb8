// internal/views/detail.view.go
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

// ShipmentDetail shows one shipment and its actions.
type ShipmentDetail struct {
	env *Env

	mu       sync.Mutex
	id       string
	shipment *models.Shipment
	loaded   bool
}

func NewShipmentDetail(env *Env) *ShipmentDetail {
	return &ShipmentDetail{env: env}
}

// Load fetches shipment id. A missing shipment leaves the view in its
// not-found state.
func (v *ShipmentDetail) Load(ctx context.Context, id string) error {
	gen := v.env.Nav.Generation()

	v.mu.Lock()
	if v.id != id {
		v.id, v.shipment, v.loaded = id, nil, false
	}
	v.mu.Unlock()

	if cached, ok := v.env.API.CachedShipment(id); ok {
		v.set(cached)
	} else if !v.isLoaded() {
		v.env.placeholder("Loading shipment…")
	}

	sh, err := v.env.API.Shipment(ctx, id)
	if v.env.Nav.Left(gen) {
		return ErrLeft
	}
	if err != nil {
		return err
	}
	v.set(sh)
	return nil
}

func (v *ShipmentDetail) set(sh *models.Shipment) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.shipment, v.loaded = sh, true
}

func (v *ShipmentDetail) isLoaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}

// Shipment returns the displayed shipment, nil when not found or not
// loaded.
func (v *ShipmentDetail) Shipment() *models.Shipment {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.shipment == nil {
		return nil
	}
	sh := *v.shipment
	return &sh
}

// NotFound reports a completed load that found nothing.
func (v *ShipmentDetail) NotFound() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded && v.shipment == nil
}

func (v *ShipmentDetail) currentID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.id
}

// UpdateStatus requests any of the known statuses; the API decides whether
// the transition is allowed.
func (v *ShipmentDetail) UpdateStatus(ctx context.Context, status models.ShipmentStatus) error {
	if !status.IsValid() {
		return ErrInvalidStatus
	}
	id := v.currentID()
	if _, err := v.env.API.UpdateShipmentStatus(ctx, id, status); err != nil {
		v.env.failed(ctx, "Failed to update status", err)
		return err
	}
	v.env.Notify.Success(ctx, "Status updated successfully")
	v.env.record(ctx, activity.ShipmentStatusUpdate, id, map[string]string{"status": string(status)})
	return v.Load(ctx, id)
}

// Flag marks the shipment with reason. An empty reason sends nothing.
func (v *ShipmentDetail) Flag(ctx context.Context, reason string) error {
	id := v.currentID()
	if err := flag(ctx, v.env, id, reason); err != nil {
		return err
	}
	return v.Load(ctx, id)
}

func (v *ShipmentDetail) Unflag(ctx context.Context) error {
	id := v.currentID()
	if err := unflag(ctx, v.env, id); err != nil {
		return err
	}
	return v.Load(ctx, id)
}

// Update applies a partial update and refetches.
func (v *ShipmentDetail) Update(ctx context.Context, input models.UpdateShipmentInput) error {
	id := v.currentID()
	if _, err := v.env.API.UpdateShipment(ctx, id, input); err != nil {
		v.env.failed(ctx, "Failed to update shipment", err)
		return err
	}
	v.env.Notify.Success(ctx, "Shipment updated successfully")
	v.env.record(ctx, activity.ShipmentUpdated, id, nil)
	return v.Load(ctx, id)
}

func (v *ShipmentDetail) CanDelete() bool {
	return v.env.Session.IsAdmin()
}

// Delete removes the shipment and returns to the list.
func (v *ShipmentDetail) Delete(ctx context.Context) error {
	if !v.CanDelete() {
		return ErrAdminOnly
	}
	id := v.currentID()
	if _, err := v.env.API.DeleteShipment(ctx, id); err != nil {
		v.env.failed(ctx, "Failed to delete shipment", err)
		return err
	}
	v.env.Notify.Success(ctx, "Shipment deleted successfully")
	v.env.record(ctx, activity.ShipmentDeleted, id, nil)
	v.env.Nav.Go(Route{Name: ShipmentsView})
	return nil
}

func (v *ShipmentDetail) Render(w io.Writer) {
	v.mu.Lock()
	sh, loaded, id := v.shipment, v.loaded, v.id
	v.mu.Unlock()

	if !loaded {
		fmt.Fprintln(w, "Loading shipment…")
		return
	}
	if sh == nil {
		fmt.Fprintf(w, "Shipment not found (%s)\n", id)
		fmt.Fprintln(w, "Back to the list with `shipments`.")
		return
	}

	fmt.Fprintf(w, "%s  %s  [%s priority]  %s\n", sh.TrackingNumber, label(sh.Status), label(sh.Priority), label(sh.Type))
	if sh.IsFlagged {
		fmt.Fprintf(w, "⚑ Flagged: %s\n", deref(sh.FlagReason))
	}

	fmt.Fprintln(w, "\nRoute")
	renderAddress(w, "From", sh.Origin)
	renderAddress(w, "To", sh.Destination)

	fmt.Fprintln(w, "\nPackage")
	fmt.Fprintf(w, "  Description    %s\n", sh.Description)
	fmt.Fprintf(w, "  Weight         %.2f lbs\n", sh.Weight)
	fmt.Fprintf(w, "  Dimensions     %g × %g × %g in\n", sh.Dimensions.Length, sh.Dimensions.Width, sh.Dimensions.Height)
	fmt.Fprintf(w, "  Instructions   %s\n", deref(sh.SpecialInstructions))

	fmt.Fprintln(w, "\nDelivery")
	fmt.Fprintf(w, "  Carrier        %s\n", sh.Carrier)
	fmt.Fprintf(w, "  Estimated      %s\n", stamp(sh.EstimatedDelivery))
	if sh.ActualDelivery != nil {
		fmt.Fprintf(w, "  Delivered      %s\n", stamp(*sh.ActualDelivery))
	}
	fmt.Fprintf(w, "  Driver         %s\n", deref(sh.AssignedDriver))
	fmt.Fprintf(w, "  Vehicle        %s\n", deref(sh.VehicleID))

	fmt.Fprintln(w, "\nCost")
	fmt.Fprintf(w, "  Shipping       %s\n", money(sh.Cost))
	fmt.Fprintf(w, "  Insurance      %s\n", money(sh.Insurance))
	fmt.Fprintf(w, "  Total          %s\n", money(sh.Cost.Add(sh.Insurance)))

	fmt.Fprintln(w, "\nHistory")
	fmt.Fprintf(w, "  Created        %s", stamp(sh.CreatedAt))
	if sh.CreatedBy != nil {
		fmt.Fprintf(w, " by %s", sh.CreatedBy.FullName)
	}
	fmt.Fprintf(w, "\n  Updated        %s", stamp(sh.UpdatedAt))
	if sh.LastUpdatedBy != nil {
		fmt.Fprintf(w, " by %s", sh.LastUpdatedBy.FullName)
	}
	fmt.Fprintln(w)

	statuses := make([]string, 0, len(models.AllShipmentStatuses))
	for _, s := range models.AllShipmentStatuses {
		statuses = append(statuses, string(s))
	}
	fmt.Fprintf(w, "\nSet status with `status %s <%s>`\n", sh.ID, strings.Join(statuses, "|"))
	if v.CanDelete() {
		fmt.Fprintf(w, "Delete with `delete %s`\n", sh.ID)
	}
}

func renderAddress(w io.Writer, title string, a models.Address) {
	fmt.Fprintf(w, "  %-5s %s, %s, %s %s, %s\n", title, a.Street, a.City, a.State, a.ZipCode, a.Country)
	contact := a.ContactName
	if a.ContactPhone != "" {
		contact += " · " + a.ContactPhone
	}
	if a.ContactEmail != nil && *a.ContactEmail != "" {
		contact += " · " + *a.ContactEmail
	}
	if strings.TrimSpace(contact) != "" {
		fmt.Fprintf(w, "        %s\n", contact)
	}
}

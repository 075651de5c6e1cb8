package clienttest

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/models"
)

func (s *Server) resolveLocked(field string, vars map[string]interface{}, viewer *models.User) (interface{}, *gqlerror.Error) {
	switch field {
	case "login":
		var in models.LoginInput
		if err := decodeVar(vars, "input", &in); err != nil {
			return nil, coded("BAD_USER_INPUT", "invalid input")
		}
		a, ok := s.accounts[strings.ToLower(in.Email)]
		if !ok || a.password != in.Password {
			return nil, coded("BAD_USER_INPUT", "Invalid email or password")
		}
		return models.AuthPayload{Token: s.issueLocked(a.user.ID), User: &a.user}, nil

	case "register":
		var in models.RegisterInput
		if err := decodeVar(vars, "input", &in); err != nil {
			return nil, coded("BAD_USER_INPUT", "invalid input")
		}
		if _, exists := s.accounts[strings.ToLower(in.Email)]; exists {
			return nil, coded("BAD_USER_INPUT", "User with this email already exists")
		}
		if len(in.Password) < 6 {
			return nil, coded("BAD_USER_INPUT", "Password must be at least 6 characters")
		}
		s.seq++
		u := models.User{
			ID:         "user-" + strconv.Itoa(s.seq),
			Email:      in.Email,
			FirstName:  in.FirstName,
			LastName:   in.LastName,
			FullName:   strings.TrimSpace(in.FirstName + " " + in.LastName),
			Role:       models.RoleEmployee,
			Department: in.Department,
			IsActive:   true,
		}
		s.accounts[strings.ToLower(in.Email)] = &account{user: u, password: in.Password}
		return models.AuthPayload{Token: s.issueLocked(u.ID), User: &u}, nil

	case "me":
		return viewer, nil

	case "shipments":
		return s.listLocked(vars)

	case "shipment":
		id, _ := vars["id"].(string)
		if sh := s.findLocked(id); sh != nil {
			return sh, nil
		}
		return nil, nil

	case "shipmentStats":
		return s.statsLocked(), nil

	case "createShipment":
		var in models.CreateShipmentInput
		if err := decodeVar(vars, "input", &in); err != nil {
			return nil, coded("BAD_USER_INPUT", "invalid input")
		}
		ref := &models.UserRef{ID: viewer.ID, FullName: viewer.FullName}
		sh := s.addLocked(models.Shipment{
			Priority:            in.Priority,
			Type:                in.Type,
			Origin:              address(in.Origin),
			Destination:         address(in.Destination),
			Weight:              in.Weight,
			Dimensions:          models.Dimensions(in.Dimensions),
			Description:         in.Description,
			SpecialInstructions: in.SpecialInstructions,
			Carrier:             in.Carrier,
			EstimatedDelivery:   in.EstimatedDelivery,
			Cost:                in.Cost,
			Insurance:           derefDecimal(in.Insurance),
			AssignedDriver:      in.AssignedDriver,
			VehicleID:           in.VehicleID,
			CreatedBy:           ref,
			LastUpdatedBy:       ref,
		})
		return sh, nil

	case "updateShipment":
		id, _ := vars["id"].(string)
		sh := s.findLocked(id)
		if sh == nil {
			return nil, coded("NOT_FOUND", "Shipment not found")
		}
		var in models.UpdateShipmentInput
		if err := decodeVar(vars, "input", &in); err != nil {
			return nil, coded("BAD_USER_INPUT", "invalid input")
		}
		applyUpdate(sh, in)
		s.touchLocked(sh, viewer)
		return sh, nil

	case "deleteShipment":
		if !viewer.IsAdmin() {
			return nil, coded("FORBIDDEN", "Only administrators can delete shipments")
		}
		id, _ := vars["id"].(string)
		for i, sh := range s.shipments {
			if sh.ID == id {
				s.shipments = append(s.shipments[:i], s.shipments[i+1:]...)
				msg := "Shipment deleted"
				return models.DeleteResult{Success: true, Message: &msg, DeletedID: &id}, nil
			}
		}
		return nil, coded("NOT_FOUND", "Shipment not found")

	case "flagShipment":
		id, _ := vars["id"].(string)
		reason, _ := vars["reason"].(string)
		sh := s.findLocked(id)
		if sh == nil {
			return nil, coded("NOT_FOUND", "Shipment not found")
		}
		if strings.TrimSpace(reason) == "" {
			return nil, coded("BAD_USER_INPUT", "A flag reason is required")
		}
		sh.IsFlagged = true
		sh.FlagReason = &reason
		s.touchLocked(sh, viewer)
		return sh, nil

	case "unflagShipment":
		id, _ := vars["id"].(string)
		sh := s.findLocked(id)
		if sh == nil {
			return nil, coded("NOT_FOUND", "Shipment not found")
		}
		sh.IsFlagged = false
		sh.FlagReason = nil
		s.touchLocked(sh, viewer)
		return sh, nil

	case "updateShipmentStatus":
		id, _ := vars["id"].(string)
		status, _ := vars["status"].(string)
		sh := s.findLocked(id)
		if sh == nil {
			return nil, coded("NOT_FOUND", "Shipment not found")
		}
		sh.Status = models.ShipmentStatus(status)
		if sh.Status == models.ShipmentStatusDelivered {
			at := s.now.Format(time.RFC3339)
			sh.ActualDelivery = &at
		}
		s.touchLocked(sh, viewer)
		return sh, nil
	}
	return nil, coded("GRAPHQL_VALIDATION_FAILED", "unknown field %s", field)
}

func (s *Server) findLocked(id string) *models.Shipment {
	for _, sh := range s.shipments {
		if sh.ID == id {
			return sh
		}
	}
	return nil
}

func (s *Server) touchLocked(sh *models.Shipment, viewer *models.User) {
	sh.UpdatedAt = s.now.Format(time.RFC3339)
	if viewer != nil {
		sh.LastUpdatedBy = &models.UserRef{ID: viewer.ID, FullName: viewer.FullName}
	}
}

func (s *Server) listLocked(vars map[string]interface{}) (interface{}, *gqlerror.Error) {
	var filter models.ShipmentFilter
	if vars["filter"] != nil {
		if err := decodeVar(vars, "filter", &filter); err != nil {
			return nil, coded("BAD_USER_INPUT", "invalid filter")
		}
	}
	order := models.ShipmentSort{Field: models.SortCreatedAt, Order: models.SortDesc}
	if vars["sort"] != nil {
		if err := decodeVar(vars, "sort", &order); err != nil {
			return nil, coded("BAD_USER_INPUT", "invalid sort")
		}
	}
	page, limit := 1, 10
	if vars["page"] != nil {
		_ = decodeVar(vars, "page", &page)
	}
	if vars["limit"] != nil {
		_ = decodeVar(vars, "limit", &limit)
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	matched := make([]*models.Shipment, 0, len(s.shipments))
	for _, sh := range s.shipments {
		if matches(sh, filter) {
			matched = append(matched, sh)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		c := compare(matched[i], matched[j], order.Field)
		if order.Order == models.SortDesc {
			return c > 0
		}
		return c < 0
	})

	total := len(matched)
	totalPages := (total + limit - 1) / limit
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	conn := models.ShipmentConnection{
		Edges: make([]models.ShipmentEdge, 0, end-start),
		PageInfo: models.PageInfo{
			HasNextPage:     page < totalPages,
			HasPreviousPage: page > 1,
			TotalPages:      totalPages,
			CurrentPage:     page,
		},
		TotalCount: total,
	}
	for _, sh := range matched[start:end] {
		conn.Edges = append(conn.Edges, models.ShipmentEdge{Node: *sh, Cursor: sh.ID})
	}
	return conn, nil
}

func matches(sh *models.Shipment, f models.ShipmentFilter) bool {
	if len(f.Status) > 0 && !containsStatus(f.Status, sh.Status) {
		return false
	}
	if len(f.Priority) > 0 {
		ok := false
		for _, p := range f.Priority {
			ok = ok || p == sh.Priority
		}
		if !ok {
			return false
		}
	}
	if len(f.Type) > 0 {
		ok := false
		for _, t := range f.Type {
			ok = ok || t == sh.Type
		}
		if !ok {
			return false
		}
	}
	if f.Carrier != "" && !strings.EqualFold(f.Carrier, sh.Carrier) {
		return false
	}
	if f.IsFlagged != nil && *f.IsFlagged != sh.IsFlagged {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		hay := strings.ToLower(strings.Join([]string{
			sh.TrackingNumber, sh.Description, sh.Carrier, sh.Origin.City, sh.Destination.City,
		}, " "))
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}

func containsStatus(list []models.ShipmentStatus, s models.ShipmentStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func rank[T comparable](all []T, v T) int {
	for i, x := range all {
		if x == v {
			return i
		}
	}
	return len(all)
}

func compare(a, b *models.Shipment, field models.SortField) int {
	switch field {
	case models.SortTrackingNumber:
		return strings.Compare(a.TrackingNumber, b.TrackingNumber)
	case models.SortStatus:
		return rank(models.AllShipmentStatuses, a.Status) - rank(models.AllShipmentStatuses, b.Status)
	case models.SortPriority:
		return rank(models.AllShipmentPriorities, a.Priority) - rank(models.AllShipmentPriorities, b.Priority)
	case models.SortCarrier:
		return strings.Compare(a.Carrier, b.Carrier)
	case models.SortCost:
		return a.Cost.Cmp(b.Cost)
	case models.SortEstimatedDelivery:
		return strings.Compare(a.EstimatedDelivery, b.EstimatedDelivery)
	default:
		return strings.Compare(a.CreatedAt, b.CreatedAt)
	}
}

func (s *Server) statsLocked() models.ShipmentStats {
	var st models.ShipmentStats
	for _, sh := range s.shipments {
		st.Total++
		st.TotalCost = st.TotalCost.Add(sh.Cost)
		if sh.IsFlagged {
			st.Flagged++
		}
		switch sh.Status {
		case models.ShipmentStatusPending:
			st.Pending++
		case models.ShipmentStatusInTransit:
			st.InTransit++
		case models.ShipmentStatusDelivered:
			st.Delivered++
		case models.ShipmentStatusDelayed:
			st.Delayed++
		case models.ShipmentStatusCancelled:
			st.Cancelled++
		}
	}
	if st.Total > 0 {
		st.AvgCost = st.TotalCost.Div(decimal.NewFromInt(int64(st.Total))).Round(2)
	}
	return st
}

func applyUpdate(sh *models.Shipment, in models.UpdateShipmentInput) {
	if in.Status != nil {
		sh.Status = *in.Status
	}
	if in.Priority != nil {
		sh.Priority = *in.Priority
	}
	if in.Type != nil {
		sh.Type = *in.Type
	}
	if in.Origin != nil {
		sh.Origin = address(*in.Origin)
	}
	if in.Destination != nil {
		sh.Destination = address(*in.Destination)
	}
	if in.Weight != nil {
		sh.Weight = *in.Weight
	}
	if in.Dimensions != nil {
		sh.Dimensions = models.Dimensions(*in.Dimensions)
	}
	if in.Description != nil {
		sh.Description = *in.Description
	}
	if in.SpecialInstructions != nil {
		sh.SpecialInstructions = in.SpecialInstructions
	}
	if in.Carrier != nil {
		sh.Carrier = *in.Carrier
	}
	if in.EstimatedDelivery != nil {
		sh.EstimatedDelivery = *in.EstimatedDelivery
	}
	if in.ActualDelivery != nil {
		sh.ActualDelivery = in.ActualDelivery
	}
	if in.Cost != nil {
		sh.Cost = *in.Cost
	}
	if in.Insurance != nil {
		sh.Insurance = *in.Insurance
	}
	if in.AssignedDriver != nil {
		sh.AssignedDriver = in.AssignedDriver
	}
	if in.VehicleID != nil {
		sh.VehicleID = in.VehicleID
	}
}

func address(in models.AddressInput) models.Address {
	return models.Address(in)
}

func derefDecimal(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// internal/models/shipment.model.go
package models

import (
	"github.com/shopspring/decimal"
)

// Importing models switches decimal.Decimal JSON encoding to bare numbers
// for the whole process, since GraphQL Float fields reject quoted values.
// Every decimal this binary encodes goes to the API or to the session
// store, and both expect numbers.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// ShipmentStatus defines possible shipment states.
type ShipmentStatus string

const (
	ShipmentStatusPending        ShipmentStatus = "PENDING"
	ShipmentStatusPickedUp       ShipmentStatus = "PICKED_UP"
	ShipmentStatusInTransit      ShipmentStatus = "IN_TRANSIT"
	ShipmentStatusOutForDelivery ShipmentStatus = "OUT_FOR_DELIVERY"
	ShipmentStatusDelivered      ShipmentStatus = "DELIVERED"
	ShipmentStatusCancelled      ShipmentStatus = "CANCELLED"
	ShipmentStatusDelayed        ShipmentStatus = "DELAYED"
	ShipmentStatusReturned       ShipmentStatus = "RETURNED"
)

// AllShipmentStatuses lists every status in display order.
var AllShipmentStatuses = []ShipmentStatus{
	ShipmentStatusPending,
	ShipmentStatusPickedUp,
	ShipmentStatusInTransit,
	ShipmentStatusOutForDelivery,
	ShipmentStatusDelivered,
	ShipmentStatusCancelled,
	ShipmentStatusDelayed,
	ShipmentStatusReturned,
}

// IsValid reports whether s is one of the known statuses.
func (s ShipmentStatus) IsValid() bool {
	for _, v := range AllShipmentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ShipmentPriority defines shipment urgency.
type ShipmentPriority string

const (
	PriorityLow    ShipmentPriority = "LOW"
	PriorityMedium ShipmentPriority = "MEDIUM"
	PriorityHigh   ShipmentPriority = "HIGH"
	PriorityUrgent ShipmentPriority = "URGENT"
)

var AllShipmentPriorities = []ShipmentPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

func (p ShipmentPriority) IsValid() bool {
	for _, v := range AllShipmentPriorities {
		if p == v {
			return true
		}
	}
	return false
}

// ShipmentType defines the handling class of a shipment.
type ShipmentType string

const (
	TypeStandard     ShipmentType = "STANDARD"
	TypeExpress      ShipmentType = "EXPRESS"
	TypeOvernight    ShipmentType = "OVERNIGHT"
	TypeFreight      ShipmentType = "FREIGHT"
	TypeHazmat       ShipmentType = "HAZMAT"
	TypeRefrigerated ShipmentType = "REFRIGERATED"
)

// Address is an origin or destination.
type Address struct {
	Street       string  `json:"street"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	ZipCode      string  `json:"zipCode"`
	Country      string  `json:"country"`
	ContactName  string  `json:"contactName"`
	ContactPhone string  `json:"contactPhone"`
	ContactEmail *string `json:"contactEmail,omitempty"`
}

type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Shipment is the normalized shipment entity. Dates are kept as the
// ISO-8601 strings the API returns.
type Shipment struct {
	ID                  string           `json:"id"`
	TrackingNumber      string           `json:"trackingNumber"`
	Status              ShipmentStatus   `json:"status"`
	Priority            ShipmentPriority `json:"priority"`
	Type                ShipmentType     `json:"type"`
	Origin              Address          `json:"origin"`
	Destination         Address          `json:"destination"`
	Weight              float64          `json:"weight"`
	Dimensions          Dimensions       `json:"dimensions"`
	Description         string           `json:"description"`
	SpecialInstructions *string          `json:"specialInstructions,omitempty"`
	Carrier             string           `json:"carrier"`
	EstimatedDelivery   string           `json:"estimatedDelivery"`
	ActualDelivery      *string          `json:"actualDelivery,omitempty"`
	Cost                decimal.Decimal  `json:"cost"`
	Insurance           decimal.Decimal  `json:"insurance"`
	IsFlagged           bool             `json:"isFlagged"`
	FlagReason          *string          `json:"flagReason,omitempty"`
	AssignedDriver      *string          `json:"assignedDriver,omitempty"`
	VehicleID           *string          `json:"vehicleId,omitempty"`
	CreatedBy           *UserRef         `json:"createdBy,omitempty"`
	LastUpdatedBy       *UserRef         `json:"lastUpdatedBy,omitempty"`
	CreatedAt           string           `json:"createdAt"`
	UpdatedAt           string           `json:"updatedAt"`
}

// CacheID is the normalized identity of the entity.
func (s Shipment) CacheID() string {
	return "Shipment:" + s.ID
}

// ShipmentEdge wraps a node with its cursor.
type ShipmentEdge struct {
	Node   Shipment `json:"node"`
	Cursor string   `json:"cursor"`
}

type PageInfo struct {
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	TotalPages      int  `json:"totalPages"`
	CurrentPage     int  `json:"currentPage"`
}

// ShipmentConnection is one page (or a merged run of pages) of shipments.
type ShipmentConnection struct {
	Edges      []ShipmentEdge `json:"edges"`
	PageInfo   PageInfo       `json:"pageInfo"`
	TotalCount int            `json:"totalCount"`
}

// Nodes returns the shipments of the connection in edge order.
func (c *ShipmentConnection) Nodes() []Shipment {
	if c == nil {
		return nil
	}
	out := make([]Shipment, 0, len(c.Edges))
	for _, e := range c.Edges {
		out = append(out, e.Node)
	}
	return out
}

// DeleteResult is the payload of deleteShipment.
type DeleteResult struct {
	Success   bool    `json:"success"`
	Message   *string `json:"message,omitempty"`
	DeletedID *string `json:"deletedId,omitempty"`
}

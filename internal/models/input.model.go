// internal/models/input.model.go
package models

import "github.com/shopspring/decimal"

type AddressInput struct {
	Street       string  `json:"street"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	ZipCode      string  `json:"zipCode"`
	Country      string  `json:"country"`
	ContactName  string  `json:"contactName"`
	ContactPhone string  `json:"contactPhone"`
	ContactEmail *string `json:"contactEmail,omitempty"`
}

type DimensionsInput struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CreateShipmentInput is the input of createShipment.
type CreateShipmentInput struct {
	Priority            ShipmentPriority `json:"priority,omitempty"`
	Type                ShipmentType     `json:"type"`
	Origin              AddressInput     `json:"origin"`
	Destination         AddressInput     `json:"destination"`
	Weight              float64          `json:"weight"`
	Dimensions          DimensionsInput  `json:"dimensions"`
	Description         string           `json:"description"`
	SpecialInstructions *string          `json:"specialInstructions,omitempty"`
	Carrier             string           `json:"carrier"`
	EstimatedDelivery   string           `json:"estimatedDelivery,omitempty"`
	Cost                decimal.Decimal  `json:"cost"`
	Insurance           *decimal.Decimal `json:"insurance,omitempty"`
	AssignedDriver      *string          `json:"assignedDriver,omitempty"`
	VehicleID           *string          `json:"vehicleId,omitempty"`
}

// UpdateShipmentInput is the input of updateShipment; nil fields are left
// unchanged by the server.
type UpdateShipmentInput struct {
	Status              *ShipmentStatus   `json:"status,omitempty"`
	Priority            *ShipmentPriority `json:"priority,omitempty"`
	Type                *ShipmentType     `json:"type,omitempty"`
	Origin              *AddressInput     `json:"origin,omitempty"`
	Destination         *AddressInput     `json:"destination,omitempty"`
	Weight              *float64          `json:"weight,omitempty"`
	Dimensions          *DimensionsInput  `json:"dimensions,omitempty"`
	Description         *string           `json:"description,omitempty"`
	SpecialInstructions *string           `json:"specialInstructions,omitempty"`
	Carrier             *string           `json:"carrier,omitempty"`
	EstimatedDelivery   *string           `json:"estimatedDelivery,omitempty"`
	ActualDelivery      *string           `json:"actualDelivery,omitempty"`
	Cost                *decimal.Decimal  `json:"cost,omitempty"`
	Insurance           *decimal.Decimal  `json:"insurance,omitempty"`
	AssignedDriver      *string           `json:"assignedDriver,omitempty"`
	VehicleID           *string           `json:"vehicleId,omitempty"`
}

// internal/models/stats.model.go
package models

import (
	"math"

	"github.com/shopspring/decimal"
)

// ShipmentStats is the aggregate returned by shipmentStats.
type ShipmentStats struct {
	Total     int             `json:"total"`
	Pending   int             `json:"pending"`
	InTransit int             `json:"inTransit"`
	Delivered int             `json:"delivered"`
	Delayed   int             `json:"delayed"`
	Cancelled int             `json:"cancelled"`
	Flagged   int             `json:"flagged"`
	AvgCost   decimal.Decimal `json:"avgCost"`
	TotalCost decimal.Decimal `json:"totalCost"`
}

// roundHalfUp rounds like JavaScript's Math.round.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// DeliveryRate is the delivered share of all shipments, in whole percent.
func (s ShipmentStats) DeliveryRate() int {
	if s.Total <= 0 {
		return 0
	}
	return roundHalfUp(float64(s.Delivered) / float64(s.Total) * 100)
}

// OnTimeRate is the share of delivered shipments that were not delayed, in
// whole percent.
func (s ShipmentStats) OnTimeRate() int {
	if s.Delivered <= 0 {
		return 0
	}
	return roundHalfUp(float64(s.Delivered-s.Delayed) / float64(s.Delivered) * 100)
}

// Percent returns count as a whole percentage of Total.
func (s ShipmentStats) Percent(count int) int {
	if s.Total <= 0 {
		return 0
	}
	return roundHalfUp(float64(count) / float64(s.Total) * 100)
}

// RevenueThousands is TotalCost / 1000 rounded to one decimal place.
func (s ShipmentStats) RevenueThousands() decimal.Decimal {
	return s.TotalCost.Div(decimal.NewFromInt(1000)).Round(1)
}

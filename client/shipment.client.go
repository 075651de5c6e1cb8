// client/shipment.client.go
package client

import (
	"context"

	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/graph"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/cache"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/models"
)

// Shipments fetches one page and returns the merged partition the page
// belongs to: page 1 (or unset) replaces it, later pages extend it.
func (c *Client) Shipments(ctx context.Context, q models.ShipmentsQuery) (models.ShipmentConnection, error) {
	var data struct {
		Shipments models.ShipmentConnection `json:"shipments"`
	}
	if err := c.Do(ctx, graph.Shipments, q.Variables(), &data); err != nil {
		return models.ShipmentConnection{}, err
	}
	if c.cache == nil {
		return data.Shipments, nil
	}
	return c.cache.MergeShipments(cache.KeyFor(q), q.Page, data.Shipments), nil
}

// CachedShipments returns the cached partition for q without a request.
func (c *Client) CachedShipments(q models.ShipmentsQuery) (models.ShipmentConnection, bool) {
	if c.cache == nil {
		return models.ShipmentConnection{}, false
	}
	return c.cache.ReadShipments(cache.KeyFor(q))
}

// Shipment fetches one shipment with its audit users. A nil result means
// the shipment does not exist.
func (c *Client) Shipment(ctx context.Context, id string) (*models.Shipment, error) {
	var data struct {
		Shipment *models.Shipment `json:"shipment"`
	}
	if err := c.Do(ctx, graph.Shipment, map[string]interface{}{"id": id}, &data); err != nil {
		return nil, err
	}
	if data.Shipment == nil {
		if c.cache != nil {
			c.cache.EvictShipment(id)
		}
		return nil, nil
	}
	return c.remember(*data.Shipment), nil
}

// CachedShipment returns the cached entity without a request.
func (c *Client) CachedShipment(id string) (*models.Shipment, bool) {
	if c.cache == nil {
		return nil, false
	}
	s, ok := c.cache.ReadShipment(id)
	if !ok {
		return nil, false
	}
	return &s, true
}

// ShipmentStats fetches the aggregate counters.
func (c *Client) ShipmentStats(ctx context.Context) (models.ShipmentStats, error) {
	v, err := c.shared(graph.ShipmentStats, func() (interface{}, error) {
		var data struct {
			ShipmentStats models.ShipmentStats `json:"shipmentStats"`
		}
		if err := c.Do(ctx, graph.ShipmentStats, nil, &data); err != nil {
			return nil, err
		}
		if c.cache != nil {
			c.cache.WriteStats(data.ShipmentStats)
		}
		return data.ShipmentStats, nil
	})
	if err != nil {
		return models.ShipmentStats{}, err
	}
	return v.(models.ShipmentStats), nil
}

// CachedStats returns the last fetched stats without a request.
func (c *Client) CachedStats() (models.ShipmentStats, bool) {
	if c.cache == nil {
		return models.ShipmentStats{}, false
	}
	return c.cache.ReadStats()
}

func (c *Client) CreateShipment(ctx context.Context, input models.CreateShipmentInput) (*models.Shipment, error) {
	var data struct {
		CreateShipment models.Shipment `json:"createShipment"`
	}
	if err := c.Do(ctx, graph.CreateShipment, map[string]interface{}{"input": input}, &data); err != nil {
		return nil, err
	}
	return c.remember(data.CreateShipment), nil
}

func (c *Client) UpdateShipment(ctx context.Context, id string, input models.UpdateShipmentInput) (*models.Shipment, error) {
	var data struct {
		UpdateShipment models.Shipment `json:"updateShipment"`
	}
	vars := map[string]interface{}{"id": id, "input": input}
	if err := c.Do(ctx, graph.UpdateShipment, vars, &data); err != nil {
		return nil, err
	}
	return c.remember(data.UpdateShipment), nil
}

// DeleteShipment removes a shipment. A successful result evicts it from the
// cache.
func (c *Client) DeleteShipment(ctx context.Context, id string) (*models.DeleteResult, error) {
	var data struct {
		DeleteShipment models.DeleteResult `json:"deleteShipment"`
	}
	if err := c.Do(ctx, graph.DeleteShipment, map[string]interface{}{"id": id}, &data); err != nil {
		return nil, err
	}
	if data.DeleteShipment.Success && c.cache != nil {
		deleted := id
		if data.DeleteShipment.DeletedID != nil && *data.DeleteShipment.DeletedID != "" {
			deleted = *data.DeleteShipment.DeletedID
		}
		c.cache.EvictShipment(deleted)
	}
	return &data.DeleteShipment, nil
}

func (c *Client) FlagShipment(ctx context.Context, id, reason string) (*models.Shipment, error) {
	var data struct {
		FlagShipment models.Shipment `json:"flagShipment"`
	}
	vars := map[string]interface{}{"id": id, "reason": reason}
	if err := c.Do(ctx, graph.FlagShipment, vars, &data); err != nil {
		return nil, err
	}
	return c.remember(data.FlagShipment), nil
}

func (c *Client) UnflagShipment(ctx context.Context, id string) (*models.Shipment, error) {
	var data struct {
		UnflagShipment models.Shipment `json:"unflagShipment"`
	}
	if err := c.Do(ctx, graph.UnflagShipment, map[string]interface{}{"id": id}, &data); err != nil {
		return nil, err
	}
	return c.remember(data.UnflagShipment), nil
}

func (c *Client) UpdateShipmentStatus(ctx context.Context, id string, status models.ShipmentStatus) (*models.Shipment, error) {
	var data struct {
		UpdateShipmentStatus models.Shipment `json:"updateShipmentStatus"`
	}
	vars := map[string]interface{}{"id": id, "status": status}
	if err := c.Do(ctx, graph.UpdateShipmentStatus, vars, &data); err != nil {
		return nil, err
	}
	return c.remember(data.UpdateShipmentStatus), nil
}

// remember writes s into the cache and returns the stored record.
func (c *Client) remember(s models.Shipment) *models.Shipment {
	if c.cache == nil {
		return &s
	}
	c.cache.WriteShipment(s)
	if stored, ok := c.cache.ReadShipment(s.ID); ok {
		return &stored
	}
	return &s
}

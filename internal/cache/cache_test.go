package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func page(ids []string, current, total int) models.ShipmentConnection {
	conn := models.ShipmentConnection{
		PageInfo:   models.PageInfo{CurrentPage: current, TotalPages: 3, HasNextPage: current < 3, HasPreviousPage: current > 1},
		TotalCount: total,
	}
	for _, id := range ids {
		conn.Edges = append(conn.Edges, models.ShipmentEdge{
			Node:   models.Shipment{ID: id, TrackingNumber: "TRK-" + id},
			Cursor: "c-" + id,
		})
	}
	return conn
}

func ids(conn models.ShipmentConnection) []string {
	out := []string{}
	for _, e := range conn.Edges {
		out = append(out, e.Node.ID)
	}
	return out
}

func TestMergeShipments_ReplaceThenAppend(t *testing.T) {
	c := New()
	key := ListKey{Sort: &models.ShipmentSort{Field: models.SortCreatedAt, Order: models.SortDesc}}

	got := c.MergeShipments(key, 1, page([]string{"a", "b"}, 1, 6))
	assert.Equal(t, []string{"a", "b"}, ids(got))

	got = c.MergeShipments(key, 2, page([]string{"c", "d"}, 2, 6))
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(got))
	assert.Equal(t, 2, got.PageInfo.CurrentPage)

	// page 1 again replaces the accumulated run
	got = c.MergeShipments(key, 1, page([]string{"e"}, 1, 5))
	assert.Equal(t, []string{"e"}, ids(got))
	assert.Equal(t, 5, got.TotalCount)
}

func TestMergeShipments_UnsetPageReplaces(t *testing.T) {
	c := New()
	key := ListKey{}
	c.MergeShipments(key, 2, page([]string{"a"}, 2, 2))
	got := c.MergeShipments(key, 0, page([]string{"b"}, 1, 2))
	assert.Equal(t, []string{"b"}, ids(got))
}

func TestMergeShipments_PartitionsByFilterAndSort(t *testing.T) {
	c := New()
	flagged := true
	all := ListKey{}
	onlyFlagged := ListKey{Filter: &models.ShipmentFilter{IsFlagged: &flagged}}

	c.MergeShipments(all, 1, page([]string{"a", "b"}, 1, 2))
	c.MergeShipments(onlyFlagged, 1, page([]string{"b"}, 1, 1))

	got, ok := c.ReadShipments(all)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, ids(got))

	got, ok = c.ReadShipments(onlyFlagged)
	require.True(t, ok)
	assert.Equal(t, []string{"b"}, ids(got))

	_, entities := c.Len()
	assert.Equal(t, 2, entities)
}

func TestListKey_EmptyFilterEqualsNil(t *testing.T) {
	assert.Equal(t, ListKey{}.String(), ListKey{Filter: &models.ShipmentFilter{}}.String())
	assert.NotEqual(t,
		ListKey{Sort: &models.ShipmentSort{Field: models.SortCost, Order: models.SortAsc}}.String(),
		ListKey{Sort: &models.ShipmentSort{Field: models.SortCost, Order: models.SortDesc}}.String())
}

func TestKeyFor_IgnoresPageAndLimit(t *testing.T) {
	q1 := models.ShipmentsQuery{Page: 1, Limit: 20}
	q2 := models.ShipmentsQuery{Page: 3, Limit: 5}
	assert.Equal(t, KeyFor(q1).String(), KeyFor(q2).String())
}

func TestWriteShipment_SharedRecord(t *testing.T) {
	c := New()
	key := ListKey{}
	c.MergeShipments(key, 1, page([]string{"a"}, 1, 1))

	// a detail fetch carries createdBy; a later list fetch does not
	c.WriteShipment(models.Shipment{ID: "a", TrackingNumber: "TRK-a", CreatedBy: &models.UserRef{ID: "u1", FullName: "Ada"}})
	c.WriteShipment(models.Shipment{ID: "a", TrackingNumber: "TRK-a", IsFlagged: true})

	got, _ := c.ReadShipments(key)
	require.Len(t, got.Edges, 1)
	assert.True(t, got.Edges[0].Node.IsFlagged)
	require.NotNil(t, got.Edges[0].Node.CreatedBy)
	assert.Equal(t, "Ada", got.Edges[0].Node.CreatedBy.FullName)

	s, ok := c.ReadShipment("a")
	require.True(t, ok)
	assert.True(t, s.IsFlagged)
}

func TestEvictShipment(t *testing.T) {
	c := New()
	c.MergeShipments(ListKey{}, 1, page([]string{"a", "b", "c"}, 1, 3))
	c.EvictShipment("b")

	got, _ := c.ReadShipments(ListKey{})
	assert.Equal(t, []string{"a", "c"}, ids(got))
	_, ok := c.ReadShipment("b")
	assert.False(t, ok)
}

func TestReset(t *testing.T) {
	c := New()
	c.MergeShipments(ListKey{}, 1, page([]string{"a"}, 1, 1))
	c.WriteStats(models.ShipmentStats{Total: 1})
	c.WriteMe(&models.User{ID: "u1"})

	c.Reset()

	entities, lists := c.Len()
	assert.Zero(t, entities)
	assert.Zero(t, lists)
	_, ok := c.ReadStats()
	assert.False(t, ok)
	_, ok = c.ReadMe()
	assert.False(t, ok)
}

func TestConcurrentAccess(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i)
			c.MergeShipments(ListKey{}, 2, page([]string{id}, 2, 20))
			c.WriteStats(models.ShipmentStats{Total: i})
			c.ReadShipments(ListKey{})
		}(i)
	}
	wg.Wait()
	got, _ := c.ReadShipments(ListKey{})
	assert.Len(t, got.Edges, 20)
}

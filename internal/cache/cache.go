// internal/cache/cache.go
package cache

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/models"
)

// ListKey identifies one shipments list partition. Page and limit are not
// part of the identity, so successive pages land in the same partition.
type ListKey struct {
	Filter *models.ShipmentFilter
	Sort   *models.ShipmentSort
}

// KeyFor derives the partition key of a shipments query.
func KeyFor(q models.ShipmentsQuery) ListKey {
	return ListKey{Filter: q.Filter, Sort: q.Sort}
}

// String is the canonical form of the key: the JSON encoding of the filter
// and sort arguments, with an empty filter treated as absent.
func (k ListKey) String() string {
	var b strings.Builder
	b.WriteString("shipments(")
	if k.Filter.IsEmpty() {
		b.WriteString("null")
	} else {
		raw, _ := json.Marshal(k.Filter)
		b.Write(raw)
	}
	b.WriteString(",")
	if k.Sort == nil {
		b.WriteString("null")
	} else {
		raw, _ := json.Marshal(k.Sort)
		b.Write(raw)
	}
	b.WriteString(")")
	return b.String()
}

type edgeRef struct {
	id     string
	cursor string
}

type listEntry struct {
	edges      []edgeRef
	pageInfo   models.PageInfo
	totalCount int
}

// Cache is the normalized response cache shared by every view. Shipments
// are stored once by identity; lists hold references to them.
type Cache struct {
	mu        sync.RWMutex
	shipments map[string]models.Shipment
	lists     map[string]*listEntry
	stats     *models.ShipmentStats
	me        *models.User
}

func New() *Cache {
	return &Cache{
		shipments: make(map[string]models.Shipment),
		lists:     make(map[string]*listEntry),
	}
}

// WriteShipment stores or overwrites the entity. Fields only fetched by the
// detail query are kept when the incoming record lacks them.
func (c *Cache) WriteShipment(s models.Shipment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeShipmentLocked(s)
}

func (c *Cache) writeShipmentLocked(s models.Shipment) {
	if prev, ok := c.shipments[s.CacheID()]; ok {
		if s.CreatedBy == nil {
			s.CreatedBy = prev.CreatedBy
		}
		if s.LastUpdatedBy == nil {
			s.LastUpdatedBy = prev.LastUpdatedBy
		}
	}
	c.shipments[s.CacheID()] = s
}

// ReadShipment returns the cached entity for id.
func (c *Cache) ReadShipment(id string) (models.Shipment, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.shipments[models.Shipment{ID: id}.CacheID()]
	return s, ok
}

// MergeShipments folds an incoming page into its partition and returns the
// merged connection. A page of 1 or less replaces the edges; a later page
// appends to them. pageInfo and totalCount always follow the incoming page.
func (c *Cache) MergeShipments(key ListKey, page int, incoming models.ShipmentConnection) models.ShipmentConnection {
	c.mu.Lock()
	defer c.mu.Unlock()

	refs := make([]edgeRef, 0, len(incoming.Edges))
	for _, e := range incoming.Edges {
		c.writeShipmentLocked(e.Node)
		refs = append(refs, edgeRef{id: e.Node.ID, cursor: e.Cursor})
	}

	k := key.String()
	entry, ok := c.lists[k]
	if !ok || page <= 1 {
		entry = &listEntry{}
		c.lists[k] = entry
		entry.edges = refs
	} else {
		entry.edges = append(entry.edges, refs...)
	}
	entry.pageInfo = incoming.PageInfo
	entry.totalCount = incoming.TotalCount

	return c.resolveLocked(entry)
}

// ReadShipments returns the merged partition for key.
func (c *Cache) ReadShipments(key ListKey) (models.ShipmentConnection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.lists[key.String()]
	if !ok {
		return models.ShipmentConnection{}, false
	}
	return c.resolveLocked(entry), true
}

func (c *Cache) resolveLocked(entry *listEntry) models.ShipmentConnection {
	conn := models.ShipmentConnection{
		Edges:      make([]models.ShipmentEdge, 0, len(entry.edges)),
		PageInfo:   entry.pageInfo,
		TotalCount: entry.totalCount,
	}
	for _, ref := range entry.edges {
		node, ok := c.shipments[models.Shipment{ID: ref.id}.CacheID()]
		if !ok {
			continue
		}
		conn.Edges = append(conn.Edges, models.ShipmentEdge{Node: node, Cursor: ref.cursor})
	}
	return conn
}

// EvictShipment drops the entity and every edge that references it.
func (c *Cache) EvictShipment(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.shipments, models.Shipment{ID: id}.CacheID())
	for _, entry := range c.lists {
		kept := entry.edges[:0]
		for _, ref := range entry.edges {
			if ref.id != id {
				kept = append(kept, ref)
			}
		}
		entry.edges = kept
	}
}

func (c *Cache) WriteStats(s models.ShipmentStats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = &s
}

func (c *Cache) ReadStats() (models.ShipmentStats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.stats == nil {
		return models.ShipmentStats{}, false
	}
	return *c.stats, true
}

func (c *Cache) WriteMe(u *models.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.me = u
}

func (c *Cache) ReadMe() (*models.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.me, c.me != nil
}

// Len reports the number of cached entities and list partitions.
func (c *Cache) Len() (entities, lists int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.shipments), len(c.lists)
}

// Reset purges everything.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shipments = make(map[string]models.Shipment)
	c.lists = make(map[string]*listEntry)
	c.stats = nil
	c.me = nil
}

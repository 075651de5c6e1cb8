// internal/models/query.model.go
package models

// ShipmentFilter narrows the shipments list. Zero values mean "no constraint".
type ShipmentFilter struct {
	Status    []ShipmentStatus   `json:"status,omitempty"`
	Priority  []ShipmentPriority `json:"priority,omitempty"`
	Type      []ShipmentType     `json:"type,omitempty"`
	Carrier   string             `json:"carrier,omitempty"`
	IsFlagged *bool              `json:"isFlagged,omitempty"`
	Search    string             `json:"search,omitempty"`
}

// IsEmpty reports whether the filter constrains nothing.
func (f *ShipmentFilter) IsEmpty() bool {
	return f == nil ||
		(len(f.Status) == 0 && len(f.Priority) == 0 && len(f.Type) == 0 &&
			f.Carrier == "" && f.IsFlagged == nil && f.Search == "")
}

// SortField is the ShipmentSortField enum.
type SortField string

const (
	SortCreatedAt         SortField = "CREATED_AT"
	SortTrackingNumber    SortField = "TRACKING_NUMBER"
	SortStatus            SortField = "STATUS"
	SortPriority          SortField = "PRIORITY"
	SortCarrier           SortField = "CARRIER"
	SortCost              SortField = "COST"
	SortEstimatedDelivery SortField = "ESTIMATED_DELIVERY"
)

var AllSortFields = []SortField{
	SortCreatedAt, SortTrackingNumber, SortStatus, SortPriority,
	SortCarrier, SortCost, SortEstimatedDelivery,
}

func (f SortField) IsValid() bool {
	for _, v := range AllSortFields {
		if f == v {
			return true
		}
	}
	return false
}

type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// ShipmentSort orders the shipments list.
type ShipmentSort struct {
	Field SortField `json:"field"`
	Order SortOrder `json:"order"`
}

// ShipmentsQuery carries the arguments of the shipments query.
// Page and Limit of zero are left out of the request.
type ShipmentsQuery struct {
	Filter *ShipmentFilter
	Sort   *ShipmentSort
	Page   int
	Limit  int
}

// Variables builds the GraphQL variables for the query. An empty filter is
// sent as absent.
func (q ShipmentsQuery) Variables() map[string]interface{} {
	vars := map[string]interface{}{}
	if !q.Filter.IsEmpty() {
		vars["filter"] = q.Filter
	}
	if q.Sort != nil {
		vars["sort"] = q.Sort
	}
	if q.Page > 0 {
		vars["page"] = q.Page
	}
	if q.Limit > 0 {
		vars["limit"] = q.Limit
	}
	return vars
}

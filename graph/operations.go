// graph/operations.go
package graph

// Operation is a named GraphQL document sent by the console. Field is the
// root field the response data is keyed by.
type Operation struct {
	Name     string
	Field    string
	Document string
}

const userFields = `
  id
  email
  firstName
  lastName
  fullName
  role
  department`

const shipmentFragment = `
fragment ShipmentFields on Shipment {
  id
  trackingNumber
  status
  priority
  type
  origin { street city state zipCode country contactName contactPhone contactEmail }
  destination { street city state zipCode country contactName contactPhone contactEmail }
  weight
  dimensions { length width height }
  description
  specialInstructions
  carrier
  estimatedDelivery
  actualDelivery
  cost
  insurance
  isFlagged
  flagReason
  assignedDriver
  vehicleId
  createdAt
  updatedAt
}
`

var (
	Login = Operation{
		Name:  "Login",
		Field: "login",
		Document: `mutation Login($input: LoginInput!) {
  login(input: $input) {
    token
    user {` + userFields + `
    }
  }
}`,
	}

	Register = Operation{
		Name:  "Register",
		Field: "register",
		Document: `mutation Register($input: RegisterInput!) {
  register(input: $input) {
    token
    user {` + userFields + `
    }
  }
}`,
	}

	Me = Operation{
		Name:  "Me",
		Field: "me",
		Document: `query Me {
  me {` + userFields + `
    avatar
    isActive
  }
}`,
	}

	Shipments = Operation{
		Name:  "GetShipments",
		Field: "shipments",
		Document: `query GetShipments($filter: ShipmentFilterInput, $sort: ShipmentSortInput, $page: Int, $limit: Int) {
  shipments(filter: $filter, sort: $sort, page: $page, limit: $limit) {
    edges {
      node { ...ShipmentFields }
      cursor
    }
    pageInfo { hasNextPage hasPreviousPage totalPages currentPage }
    totalCount
  }
}
` + shipmentFragment,
	}

	Shipment = Operation{
		Name:  "GetShipment",
		Field: "shipment",
		Document: `query GetShipment($id: ID!) {
  shipment(id: $id) {
    ...ShipmentFields
    createdBy { id fullName }
    lastUpdatedBy { id fullName }
  }
}
` + shipmentFragment,
	}

	ShipmentStats = Operation{
		Name:  "GetShipmentStats",
		Field: "shipmentStats",
		Document: `query GetShipmentStats {
  shipmentStats {
    total
    pending
    inTransit
    delivered
    delayed
    cancelled
    flagged
    avgCost
    totalCost
  }
}`,
	}

	CreateShipment = Operation{
		Name:  "CreateShipment",
		Field: "createShipment",
		Document: `mutation CreateShipment($input: CreateShipmentInput!) {
  createShipment(input: $input) { ...ShipmentFields }
}
` + shipmentFragment,
	}

	UpdateShipment = Operation{
		Name:  "UpdateShipment",
		Field: "updateShipment",
		Document: `mutation UpdateShipment($id: ID!, $input: UpdateShipmentInput!) {
  updateShipment(id: $id, input: $input) { ...ShipmentFields }
}
` + shipmentFragment,
	}

	DeleteShipment = Operation{
		Name:  "DeleteShipment",
		Field: "deleteShipment",
		Document: `mutation DeleteShipment($id: ID!) {
  deleteShipment(id: $id) {
    success
    message
    deletedId
  }
}`,
	}

	FlagShipment = Operation{
		Name:  "FlagShipment",
		Field: "flagShipment",
		Document: `mutation FlagShipment($id: ID!, $reason: String!) {
  flagShipment(id: $id, reason: $reason) { ...ShipmentFields }
}
` + shipmentFragment,
	}

	UnflagShipment = Operation{
		Name:  "UnflagShipment",
		Field: "unflagShipment",
		Document: `mutation UnflagShipment($id: ID!) {
  unflagShipment(id: $id) { ...ShipmentFields }
}
` + shipmentFragment,
	}

	UpdateShipmentStatus = Operation{
		Name:  "UpdateShipmentStatus",
		Field: "updateShipmentStatus",
		Document: `mutation UpdateShipmentStatus($id: ID!, $status: ShipmentStatus!) {
  updateShipmentStatus(id: $id, status: $status) { ...ShipmentFields }
}
` + shipmentFragment,
	}
)

// Operations lists every document the console can send.
func Operations() []Operation {
	return []Operation{
		Login, Register, Me,
		Shipments, Shipment, ShipmentStats,
		CreateShipment, UpdateShipment, DeleteShipment,
		FlagShipment, UnflagShipment, UpdateShipmentStatus,
	}
}

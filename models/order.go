package models

import "time"

// OrderStatus represents the current progress of an order through the
// delivery lifecycle.
type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "pending"
	OrderStatusConfirmed       OrderStatus = "confirmed"
	OrderStatusPreparing       OrderStatus = "preparing"
	OrderStatusReady           OrderStatus = "ready"
	OrderStatusAssignedToAgent OrderStatus = "assigned_to_agent"
	OrderStatusPickedUp        OrderStatus = "picked_up"
	OrderStatusOnWay           OrderStatus = "on_way"
	OrderStatusDelivered       OrderStatus = "delivered"
	OrderStatusCancelled       OrderStatus = "cancelled"
)

// ValidOrderStatuses lists every status value in lifecycle order.
var ValidOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusAssignedToAgent,
	OrderStatusPickedUp,
	OrderStatusOnWay,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// IsValid reports whether s is a known order status.
func (s OrderStatus) IsValid() bool {
	for _, v := range ValidOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further mutation is permitted.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// agentTransitions are the only edges an agent may drive. Restaurant-side
// mutation is not edge-restricted; see lifecycle.Engine.RestaurantUpdateStatus.
var agentTransitions = map[OrderStatus]OrderStatus{
	OrderStatusAssignedToAgent: OrderStatusPickedUp,
	OrderStatusPickedUp:        OrderStatusOnWay,
	OrderStatusOnWay:           OrderStatusDelivered,
}

// CanAgentTransition reports whether from→to is a legal agent-driven edge.
func CanAgentTransition(from, to OrderStatus) bool {
	next, ok := agentTransitions[from]
	return ok && next == to
}

// ActiveAgentStatuses are the statuses of an order currently in an agent's
// hands but not yet delivered.
var ActiveAgentStatuses = []OrderStatus{
	OrderStatusAssignedToAgent,
	OrderStatusPickedUp,
	OrderStatusOnWay,
}

// CancellableStatuses are the only statuses the cancellation exit is
// reachable from.
var CancellableStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
}

// PaymentStatus is the recorded payment flag; no reconciliation happens here.
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// Location is a coordinate pair reported opportunistically by agents.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// OrderItem is a line item captured at placement time. It is a snapshot of
// the menu item, not a live reference to the catalog.
type OrderItem struct {
	ItemID   string  `db:"item_id" json:"item_id"`
	Name     string  `db:"name" json:"name"`
	Price    float64 `db:"price" json:"price"`
	Quantity int     `db:"quantity" json:"quantity"`
}

// Order is the central entity. CustomerID and RestaurantID are immutable
// after creation; AgentID is set exactly once by the claim and never
// reassigned. All *At fields hold RFC3339 UTC strings, each written only
// when the corresponding transition occurs.
type Order struct {
	ID             string      `db:"id" json:"id"`
	OrderNumber    string      `db:"order_number" json:"order_number"`
	CustomerID     string      `db:"customer_id" json:"customer_id"`
	RestaurantID   string      `db:"restaurant_id" json:"restaurant_id"`
	RestaurantName string      `db:"restaurant_name" json:"restaurant_name"`
	AgentID        *string     `db:"agent_id" json:"agent_id,omitempty"`
	Status         OrderStatus `db:"status" json:"status"`

	Items []OrderItem `json:"items"`

	Subtotal    float64 `db:"subtotal" json:"subtotal"`
	DeliveryFee float64 `db:"delivery_fee" json:"delivery_fee"`
	Tax         float64 `db:"tax" json:"tax"`
	TipAmount   float64 `db:"tip_amount" json:"tip_amount"`
	Total       float64 `db:"total" json:"total"`

	DeliveryAddress     string `db:"delivery_address" json:"delivery_address"`
	SpecialInstructions string `db:"special_instructions" json:"special_instructions,omitempty"`

	PaymentMethod string        `db:"payment_method" json:"payment_method"`
	PaymentLinkID *string       `db:"payment_link_id" json:"payment_link_id,omitempty"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"payment_status"`

	CurrentLocation   *Location `json:"current_location,omitempty"`
	LocationUpdatedAt *string   `db:"location_updated_at" json:"location_updated_at,omitempty"`

	CreatedAt          string  `db:"created_at" json:"created_at"`
	UpdatedAt          string  `db:"updated_at" json:"updated_at"`
	ConfirmedAt        *string `db:"confirmed_at" json:"confirmed_at,omitempty"`
	PreparingAt        *string `db:"preparing_at" json:"preparing_at,omitempty"`
	ReadyAt            *string `db:"ready_at" json:"ready_at,omitempty"`
	AssignedAt         *string `db:"assigned_at" json:"assigned_at,omitempty"`
	EstimatedPickupAt  *string `db:"estimated_pickup_at" json:"estimated_pickup_at,omitempty"`
	PickedUpAt         *string `db:"picked_up_at" json:"picked_up_at,omitempty"`
	OnWayAt            *string `db:"on_way_at" json:"on_way_at,omitempty"`
	DeliveredAt        *string `db:"delivered_at" json:"delivered_at,omitempty"`
	CancelledAt        *string `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CancellationReason *string `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
}

// FormatTime is the single textual timestamp representation used everywhere:
// RFC3339 in UTC. Fixed-width and zone-normalized, so stored values compare
// correctly as plain strings.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseTime parses a timestamp previously produced by FormatTime.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

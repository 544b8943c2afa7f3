package models

// Role-scoped order views. Each view carries exactly what that role is
// entitled to see: the agent views add the customer's delivery contact but
// no payment specifics; the customer view never includes agent internals.

// AvailableOrder is a claimable order as shown to agents: status ready, no
// agent assigned, enriched with the restaurant summary and the computed
// delivery fee.
type AvailableOrder struct {
	Order
	Restaurant RestaurantSummary `json:"restaurant"`
}

// ActiveOrder is an in-flight order in an agent's delivery queue, enriched
// with pickup and dropoff display info.
type ActiveOrder struct {
	Order
	Restaurant RestaurantSummary `json:"restaurant"`
	Customer   ContactInfo       `json:"customer"`
}

// DeliveredOrder is a delivery-history entry.
type DeliveredOrder struct {
	Order
	Restaurant RestaurantSummary `json:"restaurant"`
}

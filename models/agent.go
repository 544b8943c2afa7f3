package models

// AgentStatus represents an agent's current availability.
type AgentStatus string

const (
	AgentStatusAvailable AgentStatus = "available"
	AgentStatusBusy      AgentStatus = "busy"
	AgentStatusOffline   AgentStatus = "offline"
)

// IsValid reports whether s is a known agent status.
func (s AgentStatus) IsValid() bool {
	return s == AgentStatusAvailable || s == AgentStatusBusy || s == AgentStatusOffline
}

// Agent is the availability record keyed by the agent's uid. The record is
// created lazily on first write; reads before that see the zero profile
// (offline, no location). TotalDeliveries and TotalEarnings are mutated only
// by the lifecycle engine on delivery completion.
type Agent struct {
	UID               string      `db:"uid" json:"id"`
	VehicleType       string      `db:"vehicle_type" json:"vehicle_type"`
	LicensePlate      string      `db:"license_plate" json:"license_plate"`
	Status            AgentStatus `db:"status" json:"status"`
	CurrentLocation   *Location   `json:"current_location,omitempty"`
	LocationUpdatedAt *string     `db:"location_updated_at" json:"location_updated_at,omitempty"`
	TotalDeliveries   int64       `db:"total_deliveries" json:"total_deliveries"`
	TotalEarnings     float64     `db:"total_earnings" json:"total_earnings"`
	Rating            float64     `db:"rating" json:"rating"`
	LastDeliveryAt    *string     `db:"last_delivery_at" json:"last_delivery_at,omitempty"`
	CreatedAt         string      `db:"created_at" json:"created_at,omitempty"`
	UpdatedAt         string      `db:"updated_at" json:"updated_at,omitempty"`
}

// DefaultAgent returns the profile a brand-new agent starts with.
func DefaultAgent(uid string) *Agent {
	return &Agent{
		UID:         uid,
		VehicleType: "bike",
		Status:      AgentStatusOffline,
		Rating:      5.0,
	}
}

// EarningsStats aggregates delivered orders over a period window.
// AveragePerDelivery is zero when there are no deliveries.
type EarningsStats struct {
	Period             string  `json:"period"`
	TotalDeliveries    int64   `json:"total_deliveries"`
	TotalEarnings      float64 `json:"total_earnings"`
	TotalTips          float64 `json:"total_tips"`
	TotalIncome        float64 `json:"total_income"`
	AveragePerDelivery float64 `json:"average_per_delivery"`
}

package models

// Restaurant is the restaurant profile, keyed by the owning user's uid.
// Created with defaults on first access.
type Restaurant struct {
	ID          string  `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Description string  `db:"description" json:"description"`
	Address     string  `db:"address" json:"address"`
	Phone       string  `db:"phone" json:"phone"`
	CuisineType string  `db:"cuisine_type" json:"cuisine_type"`
	IsOpen      bool    `db:"is_open" json:"is_open"`
	MinOrder    float64 `db:"min_order" json:"min_order"`
	Rating      float64 `db:"rating" json:"rating"`
	CreatedAt   string  `db:"created_at" json:"created_at"`
	UpdatedAt   string  `db:"updated_at" json:"updated_at"`
}

// RestaurantSummary is the restaurant slice embedded in order views.
type RestaurantSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// Summary trims a restaurant down to its order-view fields.
func (r *Restaurant) Summary() RestaurantSummary {
	return RestaurantSummary{ID: r.ID, Name: r.Name, Address: r.Address, Phone: r.Phone}
}

// MenuCategory groups menu items within a restaurant's catalog.
type MenuCategory struct {
	ID           string `db:"id" json:"id"`
	RestaurantID string `db:"restaurant_id" json:"restaurant_id"`
	Name         string `db:"name" json:"name"`
	Description  string `db:"description" json:"description"`
	SortOrder    int    `db:"sort_order" json:"sort_order"`
	IsActive     bool   `db:"is_active" json:"is_active"`
	CreatedAt    string `db:"created_at" json:"created_at"`
	UpdatedAt    string `db:"updated_at" json:"updated_at"`
}

// MenuItem is a purchasable catalog entry. Orders snapshot these at
// placement time rather than referencing them live.
type MenuItem struct {
	ID           string  `db:"id" json:"id"`
	RestaurantID string  `db:"restaurant_id" json:"restaurant_id"`
	CategoryID   string  `db:"category_id" json:"category_id"`
	Name         string  `db:"name" json:"name"`
	Description  string  `db:"description" json:"description"`
	Price        float64 `db:"price" json:"price"`
	ImageURL     string  `db:"image_url" json:"image_url,omitempty"`
	IsAvailable  bool    `db:"is_available" json:"is_available"`
	CreatedAt    string  `db:"created_at" json:"created_at"`
	UpdatedAt    string  `db:"updated_at" json:"updated_at"`
}

// Menu is a restaurant's full catalog grouped for the customer view.
type Menu struct {
	Restaurant RestaurantSummary `json:"restaurant"`
	Categories []MenuCategory    `json:"categories"`
	Items      []MenuItem        `json:"items"`
}

// OrderStats summarizes a restaurant's orders over a period window. Rates
// are percentages; all ratios are zero when the denominator is zero.
type OrderStats struct {
	Period            string  `json:"period"`
	TotalOrders       int64   `json:"total_orders"`
	CompletedOrders   int64   `json:"completed_orders"`
	CancelledOrders   int64   `json:"cancelled_orders"`
	PendingOrders     int64   `json:"pending_orders"`
	TotalRevenue      float64 `json:"total_revenue"`
	AverageOrderValue float64 `json:"average_order_value"`
	CompletionRate    float64 `json:"completion_rate"`
	CancellationRate  float64 `json:"cancellation_rate"`
}

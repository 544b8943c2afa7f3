package models

// CartItem mirrors OrderItem but lives in the staging area, before any
// price snapshot is final.
type CartItem struct {
	ItemID   string  `db:"item_id" json:"item_id"`
	Name     string  `db:"name" json:"name"`
	Price    float64 `db:"price" json:"price"`
	Quantity int     `db:"quantity" json:"quantity"`
}

// Cart is the per-customer draft order prior to checkout. A cart holds items
// from at most one restaurant at a time.
type Cart struct {
	CustomerID   string     `db:"customer_id" json:"customer_id"`
	RestaurantID string     `db:"restaurant_id" json:"restaurant_id"`
	Items        []CartItem `json:"items"`
	UpdatedAt    string     `db:"updated_at" json:"updated_at"`
}

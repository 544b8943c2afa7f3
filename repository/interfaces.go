package repository

import (
	"context"
	"time"

	"quickbite/models"
)

// OrderRepositoryI defines operations on Order entities.
type OrderRepositoryI interface {
	Create(ctx context.Context, o *models.Order) (*models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	Claim(ctx context.Context, orderID, agentID string, now, estimatedPickup time.Time) (bool, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus, now time.Time) error
	Cancel(ctx context.Context, id, reason string, now time.Time) error
	UpdateLocation(ctx context.Context, id string, loc models.Location, now time.Time) error
	SetPaymentLink(ctx context.Context, id, linkID string, now time.Time) error
	MarkPaidByLink(ctx context.Context, linkID string, now time.Time) (bool, error)
	ListAvailable(ctx context.Context, limit int) ([]*models.Order, error)
	ListActiveByAgent(ctx context.Context, agentID string) ([]*models.Order, error)
	ListDeliveredByAgent(ctx context.Context, agentID string, from, to *time.Time, limit int) ([]*models.Order, error)
	EarningsSince(ctx context.Context, agentID string, since time.Time) (deliveries int64, fees, tips float64, err error)
	ListByRestaurant(ctx context.Context, restaurantID string, status *models.OrderStatus, limit int) ([]*models.Order, error)
	ListByCustomer(ctx context.Context, customerID string, status *models.OrderStatus, limit int) ([]*models.Order, error)
	ListAll(ctx context.Context, limit int) ([]*models.Order, error)
	StatsByRestaurant(ctx context.Context, restaurantID string, since time.Time) (total, completed, cancelled, pending int64, revenue float64, err error)
}

// AgentRepositoryI defines operations on delivery agent records.
type AgentRepositoryI interface {
	Get(ctx context.Context, uid string) (*models.Agent, error)
	GetOrDefault(ctx context.Context, uid string) (*models.Agent, error)
	UpsertStatus(ctx context.Context, uid string, status models.AgentStatus, loc *models.Location, now time.Time) error
	UpdateProfile(ctx context.Context, uid string, vehicleType, licensePlate *string, now time.Time) error
	RecordDelivery(ctx context.Context, uid string, fee float64, now time.Time) error
}

// RoleRepositoryI defines operations on role assignments.
type RoleRepositoryI interface {
	Assign(ctx context.Context, uid string, role models.Role, updatedBy *string, now time.Time) error
	Get(ctx context.Context, uid string) (*models.RoleAssignment, error)
	GetActiveRole(ctx context.Context, uid string) (models.Role, error)
	Deactivate(ctx context.Context, uid string, now time.Time) error
	ListByRole(ctx context.Context, role models.Role, limit int) ([]models.RoleAssignment, error)
	CountByRole(ctx context.Context) (map[models.Role]int64, error)
}

// RestaurantRepositoryI defines operations on restaurant profiles.
type RestaurantRepositoryI interface {
	GetOrCreate(ctx context.Context, id string) (*models.Restaurant, error)
	Get(ctx context.Context, id string) (*models.Restaurant, error)
	Summary(ctx context.Context, id string) (models.RestaurantSummary, error)
	Update(ctx context.Context, id string, p UpdateRestaurantParams, now time.Time) (*models.Restaurant, error)
	ListOpen(ctx context.Context, cuisine, search string, limit int) ([]models.Restaurant, error)
}

// MenuRepositoryI defines operations on the menu catalog.
type MenuRepositoryI interface {
	CreateCategory(ctx context.Context, restaurantID string, p CreateCategoryParams, now time.Time) (*models.MenuCategory, error)
	DeleteCategory(ctx context.Context, restaurantID, categoryID string) (bool, error)
	CreateItem(ctx context.Context, restaurantID string, p CreateItemParams, now time.Time) (*models.MenuItem, error)
	GetItem(ctx context.Context, itemID string) (*models.MenuItem, error)
	UpdateItem(ctx context.Context, restaurantID, itemID string, p UpdateItemParams, now time.Time) (bool, error)
	DeleteItem(ctx context.Context, restaurantID, itemID string) (bool, error)
	Menu(ctx context.Context, restaurantID string) (*models.Menu, error)
}

// UserRepositoryI defines operations on user profiles.
type UserRepositoryI interface {
	GetOrCreate(ctx context.Context, uid string) (*models.User, error)
	Update(ctx context.Context, uid string, name, email, phone *string, now time.Time) (*models.User, error)
	Contact(ctx context.Context, uid string) (models.ContactInfo, error)
}

// CartRepositoryI defines operations on customer carts.
type CartRepositoryI interface {
	Get(ctx context.Context, customerID string) (*models.Cart, error)
	Replace(ctx context.Context, cart *models.Cart, now time.Time) error
	Clear(ctx context.Context, customerID string) error
}

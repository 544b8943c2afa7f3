package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"quickbite/models"
)

// CartRepository stores the single draft cart each customer carries.
type CartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db: db}
}

// Get returns the customer's cart, empty when none has been saved yet.
func (r *CartRepository) Get(ctx context.Context, customerID string) (*models.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	cart := &models.Cart{CustomerID: customerID, Items: []models.CartItem{}}
	err := r.db.QueryRowContext(ctx, `SELECT restaurant_id, updated_at FROM carts WHERE customer_id = ?`, customerID).
		Scan(&cart.RestaurantID, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cart, nil
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT item_id, name, price, quantity
FROM cart_items WHERE customer_id = ? ORDER BY id ASC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var item models.CartItem
		if err := rows.Scan(&item.ItemID, &item.Name, &item.Price, &item.Quantity); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, item)
	}
	return cart, rows.Err()
}

// Replace overwrites the customer's cart with the given contents. A cart
// holds items from one restaurant at a time.
func (r *CartRepository) Replace(ctx context.Context, cart *models.Cart, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ts := models.FormatTime(now)
	_, err = tx.ExecContext(ctx, `INSERT INTO carts (customer_id, restaurant_id, updated_at) VALUES (?,?,?)
ON CONFLICT(customer_id) DO UPDATE SET restaurant_id = excluded.restaurant_id, updated_at = excluded.updated_at`,
		cart.CustomerID, cart.RestaurantID, ts)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE customer_id = ?`, cart.CustomerID); err != nil {
		return err
	}
	for _, item := range cart.Items {
		_, err := tx.ExecContext(ctx, `INSERT INTO cart_items (customer_id, item_id, name, price, quantity)
VALUES (?,?,?,?,?)`, cart.CustomerID, item.ItemID, item.Name, item.Price, item.Quantity)
		if err != nil {
			return err
		}
	}
	cart.UpdatedAt = ts
	return tx.Commit()
}

// Clear drops the customer's cart. Used after checkout.
func (r *CartRepository) Clear(ctx context.Context, customerID string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE customer_id = ?`, customerID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE customer_id = ?`, customerID); err != nil {
		return err
	}
	return tx.Commit()
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"quickbite/models"
)

const maxListLimit = 100

func capLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

// ListAvailable returns orders claimable by any agent: status 'ready' with
// no agent assigned, oldest ready first.
func (r *OrderRepository) ListAvailable(ctx context.Context, limit int) ([]*models.Order, error) {
	limit = capLimit(limit, 20)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders
WHERE status = ? AND agent_id IS NULL
ORDER BY ready_at ASC, created_at ASC
LIMIT ?`, string(models.OrderStatusReady), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectOrders(ctx, rows)
}

// ListActiveByAgent returns the agent's in-flight orders oldest-assigned
// first. The FIFO ordering is the delivery queue contract: finish what was
// started before taking the next.
func (r *OrderRepository) ListActiveByAgent(ctx context.Context, agentID string) ([]*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders
WHERE agent_id = ? AND status IN (?,?,?)
ORDER BY assigned_at ASC, id ASC`,
		agentID,
		string(models.OrderStatusAssignedToAgent),
		string(models.OrderStatusPickedUp),
		string(models.OrderStatusOnWay))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectOrders(ctx, rows)
}

// ListDeliveredByAgent returns the agent's delivered orders newest first,
// optionally bounded by a delivered-at window.
func (r *OrderRepository) ListDeliveredByAgent(ctx context.Context, agentID string, from, to *time.Time, limit int) ([]*models.Order, error) {
	limit = capLimit(limit, 50)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `SELECT ` + orderColumns + ` FROM orders WHERE agent_id = ? AND status = ?`
	args := []any{agentID, string(models.OrderStatusDelivered)}
	if from != nil {
		query += ` AND delivered_at >= ?`
		args = append(args, models.FormatTime(*from))
	}
	if to != nil {
		query += ` AND delivered_at <= ?`
		args = append(args, models.FormatTime(*to))
	}
	query += ` ORDER BY delivered_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectOrders(ctx, rows)
}

// EarningsSince aggregates the agent's delivered orders whose delivered_at
// falls on or after the window start.
func (r *OrderRepository) EarningsSince(ctx context.Context, agentID string, since time.Time) (deliveries int64, fees, tips float64, err error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = r.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(delivery_fee), 0), COALESCE(SUM(tip_amount), 0)
FROM orders
WHERE agent_id = ? AND status = ? AND delivered_at >= ?`,
		agentID, string(models.OrderStatusDelivered), models.FormatTime(since)).
		Scan(&deliveries, &fees, &tips)
	return deliveries, fees, tips, err
}

// ListByRestaurant returns a restaurant's orders newest first with an
// optional status filter.
func (r *OrderRepository) ListByRestaurant(ctx context.Context, restaurantID string, status *models.OrderStatus, limit int) ([]*models.Order, error) {
	limit = capLimit(limit, 50)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `SELECT ` + orderColumns + ` FROM orders WHERE restaurant_id = ?`
	args := []any{restaurantID}
	if status != nil {
		query += ` AND status = ?`
		args = append(args, string(*status))
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectOrders(ctx, rows)
}

// ListByCustomer returns a customer's orders newest first with an optional
// status filter.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID string, status *models.OrderStatus, limit int) ([]*models.Order, error) {
	limit = capLimit(limit, 20)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `SELECT ` + orderColumns + ` FROM orders WHERE customer_id = ?`
	args := []any{customerID}
	if status != nil {
		query += ` AND status = ?`
		args = append(args, string(*status))
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectOrders(ctx, rows)
}

// ListAll returns the platform-wide order feed newest first (admin view).
func (r *OrderRepository) ListAll(ctx context.Context, limit int) ([]*models.Order, error) {
	limit = capLimit(limit, 50)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders
ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectOrders(ctx, rows)
}

// StatsByRestaurant aggregates a restaurant's orders created on or after the
// window start. Revenue counts delivered orders only; ratios are computed by
// the caller.
func (r *OrderRepository) StatsByRestaurant(ctx context.Context, restaurantID string, since time.Time) (total, completed, cancelled, pending int64, revenue float64, err error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = r.db.QueryRowContext(ctx, `SELECT
COUNT(*),
COALESCE(SUM(CASE WHEN status = 'delivered' THEN 1 ELSE 0 END), 0),
COALESCE(SUM(CASE WHEN status = 'cancelled' THEN 1 ELSE 0 END), 0),
COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
COALESCE(SUM(CASE WHEN status = 'delivered' THEN total ELSE 0 END), 0)
FROM orders
WHERE restaurant_id = ? AND created_at >= ?`,
		restaurantID, models.FormatTime(since)).
		Scan(&total, &completed, &cancelled, &pending, &revenue)
	return total, completed, cancelled, pending, revenue, err
}

// collectOrders scans the remaining rows and attaches item snapshots.
func (r *OrderRepository) collectOrders(ctx context.Context, rows *sql.Rows) ([]*models.Order, error) {
	var out []*models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

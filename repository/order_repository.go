package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"quickbite/models"
)

// OrderRepository is the core repository for Order entities. It owns the
// item snapshot, the stamped status updates, and the atomic claim.
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, order_number, customer_id, restaurant_id, restaurant_name, agent_id, status,
subtotal, delivery_fee, tax, tip_amount, total,
delivery_address, special_instructions, payment_method, payment_link_id, payment_status,
current_lat, current_lng, location_updated_at,
created_at, updated_at, confirmed_at, preparing_at, ready_at, assigned_at, estimated_pickup_at,
picked_up_at, on_way_at, delivered_at, cancelled_at, cancellation_reason`

// statusStampColumn names the timestamp column written when the order enters
// each status. Set only when the transition occurs, never retroactively.
var statusStampColumn = map[models.OrderStatus]string{
	models.OrderStatusConfirmed:       "confirmed_at",
	models.OrderStatusPreparing:       "preparing_at",
	models.OrderStatusReady:           "ready_at",
	models.OrderStatusAssignedToAgent: "assigned_at",
	models.OrderStatusPickedUp:        "picked_up_at",
	models.OrderStatusOnWay:           "on_way_at",
	models.OrderStatusDelivered:       "delivered_at",
	models.OrderStatusCancelled:       "cancelled_at",
}

// Create inserts a new order and its item snapshot in one transaction.
// Status defaults to 'pending' if empty; id, order number and created/updated
// timestamps are generated here.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) (*models.Order, error) {
	if o == nil {
		return nil, errors.New("order is nil")
	}
	if o.Status == "" {
		o.Status = models.OrderStatusPending
	}
	now := time.Now()
	if o.ID == "" {
		o.ID = newID()
	}
	if o.OrderNumber == "" {
		o.OrderNumber = newOrderNumber(now)
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = models.PaymentStatusUnpaid
	}
	o.CreatedAt = models.FormatTime(now)
	o.UpdatedAt = o.CreatedAt

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO orders
(id, order_number, customer_id, restaurant_id, restaurant_name, agent_id, status,
 subtotal, delivery_fee, tax, tip_amount, total,
 delivery_address, special_instructions, payment_method, payment_link_id, payment_status,
 created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		o.ID, o.OrderNumber, o.CustomerID, o.RestaurantID, o.RestaurantName, o.AgentID, string(o.Status),
		o.Subtotal, o.DeliveryFee, o.Tax, o.TipAmount, o.Total,
		o.DeliveryAddress, o.SpecialInstructions, o.PaymentMethod, o.PaymentLinkID, string(o.PaymentStatus),
		o.CreatedAt, o.UpdatedAt)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	for _, it := range o.Items {
		if _, err := tx.ExecContext(ctx, `INSERT INTO order_items (order_id, item_id, name, price, quantity) VALUES (?,?,?,?,?)`,
			o.ID, it.ItemID, it.Name, it.Price, it.Quantity); err != nil {
			_ = tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return o, nil
}

// GetByID fetches an order (with its item snapshot) by id. Returns nil, nil
// when the id does not resolve.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.attachItems(ctx, []*models.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// Claim atomically assigns an order to an agent. The precondition (status
// 'ready' and no agent assigned) is re-checked by the store inside the
// UPDATE itself, so concurrent claims on the same order resolve to exactly
// one winner. Returns false when the conditional write matched no row.
func (r *OrderRepository) Claim(ctx context.Context, orderID, agentID string, now, estimatedPickup time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ts := models.FormatTime(now)
	res, err := r.db.ExecContext(ctx, `UPDATE orders
SET agent_id = ?, status = ?, assigned_at = ?, estimated_pickup_at = ?, updated_at = ?
WHERE id = ? AND status = ? AND agent_id IS NULL`,
		agentID, string(models.OrderStatusAssignedToAgent), ts, models.FormatTime(estimatedPickup), ts,
		orderID, string(models.OrderStatusReady))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// UpdateStatus sets the order status and stamps the status-specific
// timestamp column.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ts := models.FormatTime(now)
	col, ok := statusStampColumn[status]
	if !ok {
		_, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
			string(status), ts, id)
		return err
	}
	_, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ?, updated_at = ?, `+col+` = ? WHERE id = ?`,
		string(status), ts, ts, id)
	return err
}

// Cancel sets the order to cancelled with a reason.
func (r *OrderRepository) Cancel(ctx context.Context, id, reason string, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ts := models.FormatTime(now)
	_, err := r.db.ExecContext(ctx, `UPDATE orders
SET status = ?, cancelled_at = ?, cancellation_reason = ?, updated_at = ?
WHERE id = ?`, string(models.OrderStatusCancelled), ts, reason, ts, id)
	return err
}

// UpdateLocation stores the agent-reported courier location on the order,
// regardless of status.
func (r *OrderRepository) UpdateLocation(ctx context.Context, id string, loc models.Location, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `UPDATE orders
SET current_lat = ?, current_lng = ?, location_updated_at = ?, updated_at = ?
WHERE id = ?`, loc.Lat, loc.Lng, models.FormatTime(now), models.FormatTime(now), id)
	return err
}

// SetPaymentLink records the external payment-link id for an order.
func (r *OrderRepository) SetPaymentLink(ctx context.Context, id, linkID string, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `UPDATE orders SET payment_link_id = ?, updated_at = ? WHERE id = ?`,
		linkID, models.FormatTime(now), id)
	return err
}

// MarkPaidByLink flips payment_status to 'paid' for the order carrying the
// given payment link. Returns false when no order carries that link.
func (r *OrderRepository) MarkPaidByLink(ctx context.Context, linkID string, now time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET payment_status = ?, updated_at = ? WHERE payment_link_id = ?`,
		string(models.PaymentStatusPaid), models.FormatTime(now), linkID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (*models.Order, error) {
	var o models.Order
	var status, payStatus string
	var agentID, paymentLinkID, locUpdated sql.NullString
	var lat, lng sql.NullFloat64
	var confirmedAt, preparingAt, readyAt, assignedAt, estPickupAt sql.NullString
	var pickedUpAt, onWayAt, deliveredAt, cancelledAt, cancelReason sql.NullString
	err := s.Scan(
		&o.ID, &o.OrderNumber, &o.CustomerID, &o.RestaurantID, &o.RestaurantName, &agentID, &status,
		&o.Subtotal, &o.DeliveryFee, &o.Tax, &o.TipAmount, &o.Total,
		&o.DeliveryAddress, &o.SpecialInstructions, &o.PaymentMethod, &paymentLinkID, &payStatus,
		&lat, &lng, &locUpdated,
		&o.CreatedAt, &o.UpdatedAt, &confirmedAt, &preparingAt, &readyAt, &assignedAt, &estPickupAt,
		&pickedUpAt, &onWayAt, &deliveredAt, &cancelledAt, &cancelReason)
	if err != nil {
		return nil, err
	}
	o.Status = models.OrderStatus(status)
	o.PaymentStatus = models.PaymentStatus(payStatus)
	o.AgentID = nullStr(agentID)
	o.PaymentLinkID = nullStr(paymentLinkID)
	o.LocationUpdatedAt = nullStr(locUpdated)
	if lat.Valid && lng.Valid {
		o.CurrentLocation = &models.Location{Lat: lat.Float64, Lng: lng.Float64}
	}
	o.ConfirmedAt = nullStr(confirmedAt)
	o.PreparingAt = nullStr(preparingAt)
	o.ReadyAt = nullStr(readyAt)
	o.AssignedAt = nullStr(assignedAt)
	o.EstimatedPickupAt = nullStr(estPickupAt)
	o.PickedUpAt = nullStr(pickedUpAt)
	o.OnWayAt = nullStr(onWayAt)
	o.DeliveredAt = nullStr(deliveredAt)
	o.CancelledAt = nullStr(cancelledAt)
	o.CancellationReason = nullStr(cancelReason)
	return &o, nil
}

func nullStr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

// attachItems loads the item snapshots for a batch of orders in one query.
func (r *OrderRepository) attachItems(ctx context.Context, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[string]*models.Order, len(orders))
	placeholders := make([]string, 0, len(orders))
	args := make([]any, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		placeholders = append(placeholders, "?")
		args = append(args, o.ID)
	}
	rows, err := r.db.QueryContext(ctx, `SELECT order_id, item_id, name, price, quantity
FROM order_items WHERE order_id IN (`+strings.Join(placeholders, ",")+`) ORDER BY id ASC`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var orderID string
		var it models.OrderItem
		if err := rows.Scan(&orderID, &it.ItemID, &it.Name, &it.Price, &it.Quantity); err != nil {
			return err
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

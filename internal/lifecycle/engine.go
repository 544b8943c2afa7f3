// Package lifecycle drives orders through the delivery state machine. All
// role-initiated order mutations funnel through the Engine, which is the only
// writer of agent delivery counters.
package lifecycle

import (
	"context"
	"strings"
	"time"

	"quickbite/internal/apperr"
	"quickbite/internal/payment"
	"quickbite/models"
	"quickbite/repository"
)

const (
	defaultPickupMinutes = 15
	maxPickupMinutes     = 120
)

// Engine coordinates the repositories behind every order operation.
type Engine struct {
	orders      repository.OrderRepositoryI
	agents      repository.AgentRepositoryI
	restaurants repository.RestaurantRepositoryI
	users       repository.UserRepositoryI
	carts       repository.CartRepositoryI
	menu        repository.MenuRepositoryI
	gateway     payment.Gateway

	baseFee float64
	now     func() time.Time
}

// New creates an Engine. The now hook is fixed to time.Now; tests swap it via
// WithClock.
func New(
	orders repository.OrderRepositoryI,
	agents repository.AgentRepositoryI,
	restaurants repository.RestaurantRepositoryI,
	users repository.UserRepositoryI,
	carts repository.CartRepositoryI,
	menu repository.MenuRepositoryI,
	gateway payment.Gateway,
	baseFee float64,
) *Engine {
	return &Engine{
		orders:      orders,
		agents:      agents,
		restaurants: restaurants,
		users:       users,
		carts:       carts,
		menu:        menu,
		gateway:     gateway,
		baseFee:     baseFee,
		now:         time.Now,
	}
}

// WithClock overrides the engine's time source.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// AvailableOrders returns the claimable pool: orders in 'ready' with no agent
// assigned, oldest ready first, enriched with the restaurant summary and the
// flat delivery fee quote.
func (e *Engine) AvailableOrders(ctx context.Context, limit int) ([]models.AvailableOrder, error) {
	orders, err := e.orders.ListAvailable(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]models.AvailableOrder, 0, len(orders))
	for _, o := range orders {
		summary, err := e.restaurants.Summary(ctx, o.RestaurantID)
		if err != nil {
			return nil, err
		}
		if o.DeliveryFee == 0 {
			o.DeliveryFee = e.baseFee
		}
		out = append(out, models.AvailableOrder{Order: *o, Restaurant: summary})
	}
	return out, nil
}

// AcceptOrder claims an order for an agent. The claim is a single conditional
// write, so when several agents race for the same order exactly one wins and
// the rest get a precondition failure. The winning agent is flipped to busy.
func (e *Engine) AcceptOrder(ctx context.Context, agentID, orderID string, estimatedPickupMinutes int) (*models.Order, error) {
	if estimatedPickupMinutes <= 0 {
		estimatedPickupMinutes = defaultPickupMinutes
	}
	if estimatedPickupMinutes > maxPickupMinutes {
		return nil, apperr.Validationf("estimated_pickup_minutes must be at most %d", maxPickupMinutes)
	}

	now := e.now()
	claimed, err := e.orders.Claim(ctx, orderID, agentID, now, now.Add(time.Duration(estimatedPickupMinutes)*time.Minute))
	if err != nil {
		return nil, err
	}
	if !claimed {
		// Distinguish "never existed" from "someone got there first".
		o, err := e.orders.GetByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if o == nil {
			return nil, apperr.NotFoundf("order %s not found", orderID)
		}
		return nil, apperr.Preconditionf("order is no longer available")
	}

	if err := e.agents.UpsertStatus(ctx, agentID, models.AgentStatusBusy, nil, now); err != nil {
		return nil, err
	}
	return e.orders.GetByID(ctx, orderID)
}

// UpdateDeliveryStatus advances an order along the agent's leg of the
// lifecycle. Only the assigned agent may call it, and only along the
// assigned→picked_up→on_way→delivered edges. A reported location is stored
// whether or not it came with a status change. Delivery completion credits
// the agent's counters and frees them up.
func (e *Engine) UpdateDeliveryStatus(ctx context.Context, agentID, orderID string, status models.OrderStatus, loc *models.Location) (*models.Order, error) {
	if !status.IsValid() {
		return nil, apperr.Validationf("unknown status %q", status)
	}
	o, err := e.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.NotFoundf("order %s not found", orderID)
	}
	if o.AgentID == nil || *o.AgentID != agentID {
		return nil, apperr.Forbiddenf("order is not assigned to you")
	}
	if !models.CanAgentTransition(o.Status, status) {
		return nil, apperr.Transitionf("cannot move order from %s to %s", o.Status, status)
	}

	now := e.now()
	if err := e.orders.UpdateStatus(ctx, orderID, status, now); err != nil {
		return nil, err
	}
	if loc != nil {
		if err := e.orders.UpdateLocation(ctx, orderID, *loc, now); err != nil {
			return nil, err
		}
		if err := e.agents.UpsertStatus(ctx, agentID, models.AgentStatusBusy, loc, now); err != nil {
			return nil, err
		}
	}

	if status == models.OrderStatusDelivered {
		fee := o.DeliveryFee
		if fee == 0 {
			fee = e.baseFee
		}
		if err := e.agents.RecordDelivery(ctx, agentID, fee, now); err != nil {
			return nil, err
		}
		if err := e.agents.UpsertStatus(ctx, agentID, models.AgentStatusAvailable, loc, now); err != nil {
			return nil, err
		}
	}
	return e.orders.GetByID(ctx, orderID)
}

// ReportLocation stores a courier position without touching order status.
func (e *Engine) ReportLocation(ctx context.Context, agentID, orderID string, loc models.Location) error {
	o, err := e.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o == nil {
		return apperr.NotFoundf("order %s not found", orderID)
	}
	if o.AgentID == nil || *o.AgentID != agentID {
		return apperr.Forbiddenf("order is not assigned to you")
	}
	now := e.now()
	if err := e.orders.UpdateLocation(ctx, orderID, loc, now); err != nil {
		return err
	}
	return e.agents.UpsertStatus(ctx, agentID, models.AgentStatusBusy, &loc, now)
}

// ActiveOrders returns the agent's in-flight queue in acceptance order,
// enriched with pickup and dropoff contact info.
func (e *Engine) ActiveOrders(ctx context.Context, agentID string) ([]models.ActiveOrder, error) {
	orders, err := e.orders.ListActiveByAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	out := make([]models.ActiveOrder, 0, len(orders))
	for _, o := range orders {
		summary, err := e.restaurants.Summary(ctx, o.RestaurantID)
		if err != nil {
			return nil, err
		}
		contact, err := e.users.Contact(ctx, o.CustomerID)
		if err != nil {
			return nil, err
		}
		out = append(out, models.ActiveOrder{Order: *o, Restaurant: summary, Customer: contact})
	}
	return out, nil
}

// DeliveryHistory returns the agent's completed deliveries, newest first,
// optionally restricted to a time window.
func (e *Engine) DeliveryHistory(ctx context.Context, agentID string, from, to *time.Time, limit int) ([]models.DeliveredOrder, error) {
	orders, err := e.orders.ListDeliveredByAgent(ctx, agentID, from, to, limit)
	if err != nil {
		return nil, err
	}
	out := make([]models.DeliveredOrder, 0, len(orders))
	for _, o := range orders {
		summary, err := e.restaurants.Summary(ctx, o.RestaurantID)
		if err != nil {
			return nil, err
		}
		out = append(out, models.DeliveredOrder{Order: *o, Restaurant: summary})
	}
	return out, nil
}

// periodStart maps a named earnings period onto its window start. Unknown
// period names fall back to the last 24 hours.
func (e *Engine) periodStart(period string, now time.Time) (string, time.Time) {
	switch strings.ToLower(period) {
	case "today":
		y, m, d := now.UTC().Date()
		return "today", time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	case "week":
		return "week", now.Add(-7 * 24 * time.Hour)
	case "month":
		return "month", now.Add(-30 * 24 * time.Hour)
	default:
		return "day", now.Add(-24 * time.Hour)
	}
}

// Earnings aggregates an agent's delivered orders over a named period.
func (e *Engine) Earnings(ctx context.Context, agentID, period string) (*models.EarningsStats, error) {
	name, since := e.periodStart(period, e.now())
	deliveries, fees, tips, err := e.orders.EarningsSince(ctx, agentID, since)
	if err != nil {
		return nil, err
	}
	stats := &models.EarningsStats{
		Period:          name,
		TotalDeliveries: deliveries,
		TotalEarnings:   fees,
		TotalTips:       tips,
		TotalIncome:     fees + tips,
	}
	if deliveries > 0 {
		stats.AveragePerDelivery = stats.TotalIncome / float64(deliveries)
	}
	return stats, nil
}

// CheckoutParams is what the customer supplies at checkout, beyond the cart
// contents. Monetary fields are recorded as sent; totals are not recomputed
// server-side. Subtotal and DeliveryFee fall back to the cart sum and the
// flat fee when the client omits them.
type CheckoutParams struct {
	DeliveryAddress     string
	SpecialInstructions string
	PaymentMethod       string
	TipAmount           float64
	Tax                 float64
	Subtotal            *float64
	DeliveryFee         *float64
	Total               float64
}

// Checkout turns the customer's cart into a pending order. Item names and
// prices are snapshotted from the cart; the cart is cleared on success. A
// non-cash payment method gets a hosted payment link.
func (e *Engine) Checkout(ctx context.Context, customerID string, p CheckoutParams) (*models.Order, *payment.Link, error) {
	if strings.TrimSpace(p.DeliveryAddress) == "" {
		return nil, nil, apperr.Validationf("delivery_address is required")
	}
	cart, err := e.carts.Get(ctx, customerID)
	if err != nil {
		return nil, nil, err
	}
	if len(cart.Items) == 0 {
		return nil, nil, apperr.Preconditionf("cart is empty")
	}
	rest, err := e.restaurants.Get(ctx, cart.RestaurantID)
	if err != nil {
		return nil, nil, err
	}
	if rest == nil {
		return nil, nil, apperr.NotFoundf("restaurant %s not found", cart.RestaurantID)
	}
	if !rest.IsOpen {
		return nil, nil, apperr.Preconditionf("restaurant is closed")
	}

	var subtotal float64
	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, ci := range cart.Items {
		if ci.Quantity <= 0 {
			return nil, nil, apperr.Validationf("item %s has invalid quantity", ci.ItemID)
		}
		subtotal += ci.Price * float64(ci.Quantity)
		items = append(items, models.OrderItem{
			ItemID:   ci.ItemID,
			Name:     ci.Name,
			Price:    ci.Price,
			Quantity: ci.Quantity,
		})
	}
	// The client's figures win when present; the cart sum is the fallback.
	if p.Subtotal != nil {
		subtotal = *p.Subtotal
	}
	fee := e.baseFee
	if p.DeliveryFee != nil {
		fee = *p.DeliveryFee
	}
	if subtotal < rest.MinOrder {
		return nil, nil, apperr.Preconditionf("order subtotal %.2f is below the restaurant minimum %.2f", subtotal, rest.MinOrder)
	}

	method := strings.TrimSpace(p.PaymentMethod)
	if method == "" {
		method = "cash"
	}
	total := p.Total
	if total == 0 {
		total = subtotal + fee + p.Tax + p.TipAmount
	}
	order := &models.Order{
		CustomerID:          customerID,
		RestaurantID:        rest.ID,
		RestaurantName:      rest.Name,
		Status:              models.OrderStatusPending,
		Items:               items,
		Subtotal:            subtotal,
		DeliveryFee:         fee,
		Tax:                 p.Tax,
		TipAmount:           p.TipAmount,
		Total:               total,
		DeliveryAddress:     p.DeliveryAddress,
		SpecialInstructions: p.SpecialInstructions,
		PaymentMethod:       method,
	}
	order, err = e.orders.Create(ctx, order)
	if err != nil {
		return nil, nil, err
	}

	var link *payment.Link
	if method != "cash" && e.gateway != nil {
		link, err = e.gateway.CreateLink(ctx, order.ID, order.Total)
		if err != nil {
			return nil, nil, apperr.Upstreamf(err, "payment link creation failed")
		}
		if err := e.orders.SetPaymentLink(ctx, order.ID, link.ID, e.now()); err != nil {
			return nil, nil, err
		}
		order.PaymentLinkID = &link.ID
	}

	if err := e.carts.Clear(ctx, customerID); err != nil {
		return nil, nil, err
	}
	return order, link, nil
}

// ConfirmPayment flips an order to paid by its payment-link id.
func (e *Engine) ConfirmPayment(ctx context.Context, linkID string) error {
	ok, err := e.orders.MarkPaidByLink(ctx, linkID, e.now())
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFoundf("payment link %s not found", linkID)
	}
	return nil
}

// CustomerCancel cancels the customer's own order. Cancellation is only
// reachable before the kitchen starts: pending or confirmed.
func (e *Engine) CustomerCancel(ctx context.Context, customerID, orderID, reason string) (*models.Order, error) {
	o, err := e.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.NotFoundf("order %s not found", orderID)
	}
	if o.CustomerID != customerID {
		return nil, apperr.Forbiddenf("order does not belong to you")
	}
	if !cancellable(o.Status) {
		return nil, apperr.Transitionf("order in status %s can no longer be cancelled", o.Status)
	}
	if reason == "" {
		reason = "cancelled by customer"
	}
	if err := e.orders.Cancel(ctx, orderID, reason, e.now()); err != nil {
		return nil, err
	}
	return e.orders.GetByID(ctx, orderID)
}

// RestaurantUpdateStatus lets the restaurant set any non-terminal,
// non-cancelled status on its own order. The kitchen-side edges are not
// restricted to forward motion; terminal orders are immutable.
func (e *Engine) RestaurantUpdateStatus(ctx context.Context, restaurantID, orderID string, status models.OrderStatus) (*models.Order, error) {
	if !status.IsValid() || status == models.OrderStatusCancelled {
		return nil, apperr.Validationf("unknown status %q", status)
	}
	o, err := e.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.NotFoundf("order %s not found", orderID)
	}
	if o.RestaurantID != restaurantID {
		return nil, apperr.Forbiddenf("order does not belong to your restaurant")
	}
	if o.Status.IsTerminal() {
		return nil, apperr.Transitionf("order in status %s can no longer change", o.Status)
	}
	if err := e.orders.UpdateStatus(ctx, orderID, status, e.now()); err != nil {
		return nil, err
	}
	return e.orders.GetByID(ctx, orderID)
}

// RestaurantCancel cancels an order on behalf of the restaurant, pending or
// confirmed only.
func (e *Engine) RestaurantCancel(ctx context.Context, restaurantID, orderID, reason string) (*models.Order, error) {
	o, err := e.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.NotFoundf("order %s not found", orderID)
	}
	if o.RestaurantID != restaurantID {
		return nil, apperr.Forbiddenf("order does not belong to your restaurant")
	}
	if !cancellable(o.Status) {
		return nil, apperr.Transitionf("order in status %s can no longer be cancelled", o.Status)
	}
	if reason == "" {
		reason = "cancelled by restaurant"
	}
	if err := e.orders.Cancel(ctx, orderID, reason, e.now()); err != nil {
		return nil, err
	}
	return e.orders.GetByID(ctx, orderID)
}

// RestaurantStats aggregates a restaurant's orders over a named period.
func (e *Engine) RestaurantStats(ctx context.Context, restaurantID, period string) (*models.OrderStats, error) {
	name, since := e.periodStart(period, e.now())
	total, completed, cancelled, pending, revenue, err := e.orders.StatsByRestaurant(ctx, restaurantID, since)
	if err != nil {
		return nil, err
	}
	stats := &models.OrderStats{
		Period:          name,
		TotalOrders:     total,
		CompletedOrders: completed,
		CancelledOrders: cancelled,
		PendingOrders:   pending,
		TotalRevenue:    revenue,
	}
	if completed > 0 {
		stats.AverageOrderValue = revenue / float64(completed)
	}
	if total > 0 {
		stats.CompletionRate = float64(completed) / float64(total) * 100
		stats.CancellationRate = float64(cancelled) / float64(total) * 100
	}
	return stats, nil
}

func cancellable(s models.OrderStatus) bool {
	for _, v := range models.CancellableStatuses {
		if s == v {
			return true
		}
	}
	return false
}

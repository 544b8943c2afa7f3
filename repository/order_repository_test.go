package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"quickbite/internal/testutil"
	"quickbite/models"
)

func newTestOrder(customerID, restaurantID string, status models.OrderStatus) *models.Order {
	return &models.Order{
		CustomerID:      customerID,
		RestaurantID:    restaurantID,
		RestaurantName:  "Testaurant",
		Status:          status,
		Subtotal:        20,
		DeliveryFee:     3,
		Total:           23,
		DeliveryAddress: "1 Test Street",
		PaymentMethod:   "cash",
		Items: []models.OrderItem{
			{ItemID: "item-1", Name: "Burger", Price: 10, Quantity: 2},
		},
	}
}

func TestCreateAndGetOrder(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "order_create")
	repo := NewOrderRepository(d)
	ctx := context.Background()

	ord, err := repo.Create(ctx, newTestOrder("cust-1", "rest-1", ""))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if ord.ID == "" || ord.OrderNumber == "" {
		t.Fatalf("expected generated id and order number, got %q / %q", ord.ID, ord.OrderNumber)
	}
	if ord.Status != models.OrderStatusPending {
		t.Errorf("new order should default to pending, got %s", ord.Status)
	}

	got, err := repo.GetByID(ctx, ord.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got == nil {
		t.Fatal("expected order, got nil")
	}
	if len(got.Items) != 1 || got.Items[0].Name != "Burger" || got.Items[0].Quantity != 2 {
		t.Errorf("item snapshot not round-tripped: %+v", got.Items)
	}

	missing, err := repo.GetByID(ctx, "no-such-order")
	if err != nil {
		t.Fatalf("get missing order: %v", err)
	}
	if missing != nil {
		t.Error("missing order should return nil, nil")
	}
}

func TestClaimRequiresReadyAndUnassigned(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "order_claim_pre")
	repo := NewOrderRepository(d)
	ctx := context.Background()
	now := time.Now()

	pending, err := repo.Create(ctx, newTestOrder("cust-1", "rest-1", models.OrderStatusPending))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	ok, err := repo.Claim(ctx, pending.ID, "agent-1", now, now.Add(15*time.Minute))
	if err != nil {
		t.Fatalf("claim pending order: %v", err)
	}
	if ok {
		t.Error("claim should fail while the order is not ready")
	}

	if err := repo.UpdateStatus(ctx, pending.ID, models.OrderStatusReady, now); err != nil {
		t.Fatalf("mark ready: %v", err)
	}
	ok, err = repo.Claim(ctx, pending.ID, "agent-1", now, now.Add(15*time.Minute))
	if err != nil {
		t.Fatalf("claim ready order: %v", err)
	}
	if !ok {
		t.Fatal("claim should succeed on a ready unassigned order")
	}

	got, err := repo.GetByID(ctx, pending.ID)
	if err != nil {
		t.Fatalf("get claimed order: %v", err)
	}
	if got.AgentID == nil || *got.AgentID != "agent-1" {
		t.Errorf("claim should record the agent, got %v", got.AgentID)
	}
	if got.Status != models.OrderStatusAssignedToAgent {
		t.Errorf("claim should set assigned_to_agent, got %s", got.Status)
	}
	if got.AssignedAt == nil || got.EstimatedPickupAt == nil {
		t.Error("claim should stamp assigned_at and estimated_pickup_at")
	}

	// A second claim must see a non-ready, already-assigned order.
	ok, err = repo.Claim(ctx, pending.ID, "agent-2", now, now.Add(15*time.Minute))
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if ok {
		t.Error("second claim on a taken order should lose")
	}
}

func TestClaimConcurrentSingleWinner(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "order_claim_race")
	repo := NewOrderRepository(d)
	ctx := context.Background()
	now := time.Now()

	ord, err := repo.Create(ctx, newTestOrder("cust-1", "rest-1", models.OrderStatusReady))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	const agents = 8
	var wg sync.WaitGroup
	wins := make(chan string, agents)
	for i := 0; i < agents; i++ {
		agentID := "agent-" + string(rune('a'+i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Claim(ctx, ord.ID, agentID, now, now.Add(15*time.Minute))
			if err != nil {
				t.Errorf("claim by %s: %v", agentID, err)
				return
			}
			if ok {
				wins <- agentID
			}
		}()
	}
	wg.Wait()
	close(wins)

	var winners []string
	for w := range wins {
		winners = append(winners, w)
	}
	if len(winners) != 1 {
		t.Fatalf("expected exactly one winning claim, got %d (%v)", len(winners), winners)
	}

	got, err := repo.GetByID(ctx, ord.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.AgentID == nil || *got.AgentID != winners[0] {
		t.Errorf("order should belong to winner %s, got %v", winners[0], got.AgentID)
	}
}

func TestStatusStamps(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "order_stamps")
	repo := NewOrderRepository(d)
	ctx := context.Background()

	ord, err := repo.Create(ctx, newTestOrder("cust-1", "rest-1", ""))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	steps := []models.OrderStatus{
		models.OrderStatusConfirmed,
		models.OrderStatusPreparing,
		models.OrderStatusReady,
	}
	for i, st := range steps {
		if err := repo.UpdateStatus(ctx, ord.ID, st, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("update to %s: %v", st, err)
		}
	}

	got, err := repo.GetByID(ctx, ord.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.ConfirmedAt == nil || *got.ConfirmedAt != models.FormatTime(base) {
		t.Errorf("confirmed_at not stamped: %v", got.ConfirmedAt)
	}
	if got.PreparingAt == nil || *got.PreparingAt != models.FormatTime(base.Add(time.Minute)) {
		t.Errorf("preparing_at not stamped: %v", got.PreparingAt)
	}
	if got.ReadyAt == nil || *got.ReadyAt != models.FormatTime(base.Add(2*time.Minute)) {
		t.Errorf("ready_at not stamped: %v", got.ReadyAt)
	}
	if got.DeliveredAt != nil || got.CancelledAt != nil {
		t.Error("unreached stamps must stay empty")
	}
}

func TestCancelRecordsReason(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "order_cancel")
	repo := NewOrderRepository(d)
	ctx := context.Background()

	ord, err := repo.Create(ctx, newTestOrder("cust-1", "rest-1", ""))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	now := time.Now()
	if err := repo.Cancel(ctx, ord.ID, "changed my mind", now); err != nil {
		t.Fatalf("cancel order: %v", err)
	}
	got, _ := repo.GetByID(ctx, ord.ID)
	if got.Status != models.OrderStatusCancelled {
		t.Errorf("expected cancelled, got %s", got.Status)
	}
	if got.CancellationReason == nil || *got.CancellationReason != "changed my mind" {
		t.Errorf("reason not recorded: %v", got.CancellationReason)
	}
	if got.CancelledAt == nil {
		t.Error("cancelled_at not stamped")
	}
}

func TestListAvailableOldestReadyFirst(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "order_available")
	repo := NewOrderRepository(d)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		ord, err := repo.Create(ctx, newTestOrder("cust-1", "rest-1", ""))
		if err != nil {
			t.Fatalf("create order %d: %v", i, err)
		}
		// Mark ready in reverse creation order so ready_at drives the sort.
		if err := repo.UpdateStatus(ctx, ord.ID, models.OrderStatusReady, base.Add(time.Duration(3-i)*time.Minute)); err != nil {
			t.Fatalf("mark ready %d: %v", i, err)
		}
		ids = append(ids, ord.ID)
	}

	available, err := repo.ListAvailable(ctx, 0)
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	if len(available) != 3 {
		t.Fatalf("expected 3 available orders, got %d", len(available))
	}
	// ids[2] was marked ready first.
	if available[0].ID != ids[2] || available[2].ID != ids[0] {
		t.Errorf("available orders not sorted by ready_at: %s, %s, %s",
			available[0].ID, available[1].ID, available[2].ID)
	}

	// A claimed order leaves the pool.
	now := time.Now()
	if _, err := repo.Claim(ctx, ids[2], "agent-1", now, now.Add(15*time.Minute)); err != nil {
		t.Fatalf("claim: %v", err)
	}
	available, err = repo.ListAvailable(ctx, 0)
	if err != nil {
		t.Fatalf("list available after claim: %v", err)
	}
	if len(available) != 2 {
		t.Errorf("claimed order should leave the pool, got %d entries", len(available))
	}
}

func TestListActiveByAgentFIFO(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "order_active")
	repo := NewOrderRepository(d)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		ord, err := repo.Create(ctx, newTestOrder("cust-1", "rest-1", models.OrderStatusReady))
		if err != nil {
			t.Fatalf("create order %d: %v", i, err)
		}
		at := base.Add(time.Duration(i) * time.Minute)
		if _, err := repo.Claim(ctx, ord.ID, "agent-1", at, at.Add(15*time.Minute)); err != nil {
			t.Fatalf("claim %d: %v", i, err)
		}
		ids = append(ids, ord.ID)
	}
	// Move the middle one forward; it stays in the active set.
	if err := repo.UpdateStatus(ctx, ids[1], models.OrderStatusPickedUp, base.Add(10*time.Minute)); err != nil {
		t.Fatalf("pick up: %v", err)
	}

	active, err := repo.ListActiveByAgent(ctx, "agent-1")
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 3 {
		t.Fatalf("expected 3 active orders, got %d", len(active))
	}
	for i := range ids {
		if active[i].ID != ids[i] {
			t.Errorf("active orders must keep acceptance order: slot %d got %s, want %s", i, active[i].ID, ids[i])
		}
	}

	// Delivery removes from the active queue.
	if err := repo.UpdateStatus(ctx, ids[0], models.OrderStatusDelivered, base.Add(20*time.Minute)); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	active, _ = repo.ListActiveByAgent(ctx, "agent-1")
	if len(active) != 2 {
		t.Errorf("delivered order should leave the active queue, got %d", len(active))
	}
}

func TestDeliveredHistoryAndEarnings(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "order_history")
	repo := NewOrderRepository(d)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	deliver := func(fee, tip float64, at time.Time) string {
		o := newTestOrder("cust-1", "rest-1", models.OrderStatusReady)
		o.DeliveryFee = fee
		o.TipAmount = tip
		o, err := repo.Create(ctx, o)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := repo.Claim(ctx, o.ID, "agent-1", at, at); err != nil {
			t.Fatalf("claim: %v", err)
		}
		if err := repo.UpdateStatus(ctx, o.ID, models.OrderStatusDelivered, at); err != nil {
			t.Fatalf("deliver: %v", err)
		}
		return o.ID
	}

	old := deliver(3, 1, base)
	recent := deliver(3, 2, base.Add(48*time.Hour))

	all, err := repo.ListDeliveredByAgent(ctx, "agent-1", nil, nil, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(all) != 2 || all[0].ID != recent || all[1].ID != old {
		t.Errorf("history should be newest first, got %d entries", len(all))
	}

	from := base.Add(24 * time.Hour)
	windowed, err := repo.ListDeliveredByAgent(ctx, "agent-1", &from, nil, 0)
	if err != nil {
		t.Fatalf("windowed history: %v", err)
	}
	if len(windowed) != 1 || windowed[0].ID != recent {
		t.Errorf("window should keep only the recent delivery, got %d", len(windowed))
	}

	deliveries, fees, tips, err := repo.EarningsSince(ctx, "agent-1", from)
	if err != nil {
		t.Fatalf("earnings: %v", err)
	}
	if deliveries != 1 || fees != 3 || tips != 2 {
		t.Errorf("earnings window wrong: %d deliveries, %.2f fees, %.2f tips", deliveries, fees, tips)
	}

	deliveries, fees, tips, err = repo.EarningsSince(ctx, "agent-nobody", base)
	if err != nil {
		t.Fatalf("earnings for unknown agent: %v", err)
	}
	if deliveries != 0 || fees != 0 || tips != 0 {
		t.Errorf("unknown agent should aggregate to zero, got %d/%.2f/%.2f", deliveries, fees, tips)
	}
}

func TestMarkPaidByLink(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "order_paylink")
	repo := NewOrderRepository(d)
	ctx := context.Background()

	ord, err := repo.Create(ctx, newTestOrder("cust-1", "rest-1", ""))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	now := time.Now()
	if err := repo.SetPaymentLink(ctx, ord.ID, "plink_abc", now); err != nil {
		t.Fatalf("set link: %v", err)
	}

	ok, err := repo.MarkPaidByLink(ctx, "plink_abc", now)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if !ok {
		t.Fatal("expected the link to resolve")
	}
	got, _ := repo.GetByID(ctx, ord.ID)
	if got.PaymentStatus != models.PaymentStatusPaid {
		t.Errorf("expected paid, got %s", got.PaymentStatus)
	}

	ok, err = repo.MarkPaidByLink(ctx, "plink_unknown", now)
	if err != nil {
		t.Fatalf("mark paid unknown: %v", err)
	}
	if ok {
		t.Error("unknown link should not match any order")
	}
}

package repository

import (
	"context"
	"testing"
	"time"

	"quickbite/internal/testutil"
	"quickbite/models"
)

func TestCartEmptyWhenMissing(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "cart_empty")
	repo := NewCartRepository(d)

	cart, err := repo.Get(context.Background(), "cust-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cart.CustomerID != "cust-1" || len(cart.Items) != 0 {
		t.Errorf("missing cart should come back empty, got %+v", cart)
	}
}

func TestCartReplaceAndClear(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "cart_replace")
	repo := NewCartRepository(d)
	ctx := context.Background()
	now := time.Now()

	cart := &models.Cart{
		CustomerID:   "cust-1",
		RestaurantID: "rest-1",
		Items: []models.CartItem{
			{ItemID: "i1", Name: "Falafel Wrap", Price: 6.5, Quantity: 2},
			{ItemID: "i2", Name: "Lemonade", Price: 3.0, Quantity: 1},
		},
	}
	if err := repo.Replace(ctx, cart, now); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := repo.Get(ctx, "cust-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.RestaurantID != "rest-1" || len(got.Items) != 2 {
		t.Fatalf("unexpected cart: %+v", got)
	}
	if got.Items[0].ItemID != "i1" || got.Items[0].Quantity != 2 {
		t.Errorf("items must keep insertion order: %+v", got.Items)
	}

	// Replacing swaps the whole cart, including the restaurant.
	cart.RestaurantID = "rest-2"
	cart.Items = []models.CartItem{{ItemID: "i9", Name: "Pizza", Price: 12.0, Quantity: 1}}
	if err := repo.Replace(ctx, cart, now.Add(time.Minute)); err != nil {
		t.Fatalf("replace again: %v", err)
	}
	got, err = repo.Get(ctx, "cust-1")
	if err != nil {
		t.Fatalf("get after replace: %v", err)
	}
	if got.RestaurantID != "rest-2" || len(got.Items) != 1 || got.Items[0].ItemID != "i9" {
		t.Errorf("old items must not survive a replace: %+v", got)
	}

	if err := repo.Clear(ctx, "cust-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, err = repo.Get(ctx, "cust-1")
	if err != nil {
		t.Fatalf("get after clear: %v", err)
	}
	if len(got.Items) != 0 {
		t.Errorf("cart should be empty after clear: %+v", got)
	}
}

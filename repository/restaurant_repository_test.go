package repository

import (
	"context"
	"testing"
	"time"

	"quickbite/internal/testutil"
)

func TestRestaurantGetOrCreateDefaults(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "rest_defaults")
	repo := NewRestaurantRepository(d)
	ctx := context.Background()

	rest, err := repo.GetOrCreate(ctx, "rest-1")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if rest.IsOpen {
		t.Error("new restaurants must start closed")
	}
	if rest.Name != "" || rest.MinOrder != 0 {
		t.Errorf("unexpected defaults: %+v", rest)
	}

	// Second call returns the same record, not a fresh one.
	again, err := repo.GetOrCreate(ctx, "rest-1")
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if again.CreatedAt != rest.CreatedAt {
		t.Error("get-or-create must be idempotent")
	}
}

func TestRestaurantSummaryFallback(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "rest_summary")
	repo := NewRestaurantRepository(d)
	ctx := context.Background()

	s, err := repo.Summary(ctx, "ghost")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if s.ID != "ghost" || s.Name != "Unknown Restaurant" {
		t.Errorf("unresolved ids should get the placeholder, got %+v", s)
	}
}

func TestRestaurantListOpenFilters(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "rest_list")
	repo := NewRestaurantRepository(d)
	ctx := context.Background()
	now := time.Now()

	seed := func(id, name, cuisine string, isOpen bool) {
		t.Helper()
		v := isOpen
		_, err := repo.Update(ctx, id, UpdateRestaurantParams{
			Name: &name, CuisineType: &cuisine, IsOpen: &v,
		}, now)
		if err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}
	seed("r1", "Shawarma House", "lebanese", true)
	seed("r2", "Pasta Corner", "italian", true)
	seed("r3", "Closed Diner", "italian", false)

	all, err := repo.ListOpen(ctx, "", "", 0)
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("closed restaurants must be excluded, got %d", len(all))
	}

	italian, err := repo.ListOpen(ctx, "italian", "", 0)
	if err != nil {
		t.Fatalf("list by cuisine: %v", err)
	}
	if len(italian) != 1 || italian[0].ID != "r2" {
		t.Errorf("cuisine filter wrong: %+v", italian)
	}

	byName, err := repo.ListOpen(ctx, "", "shawarma", 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(byName) != 1 || byName[0].ID != "r1" {
		t.Errorf("name search wrong: %+v", byName)
	}
}

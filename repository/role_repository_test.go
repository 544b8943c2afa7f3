package repository

import (
	"context"
	"testing"
	"time"

	"quickbite/internal/testutil"
	"quickbite/models"
)

func TestRoleAssignAndResolve(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "roles_assign")
	repo := NewRoleRepository(d)
	ctx := context.Background()
	now := time.Now()

	role, err := repo.GetActiveRole(ctx, "user-1")
	if err != nil {
		t.Fatalf("resolve unassigned: %v", err)
	}
	if role != "" {
		t.Errorf("unassigned user should have no role, got %s", role)
	}

	if err := repo.Assign(ctx, "user-1", models.RoleCustomer, nil, now); err != nil {
		t.Fatalf("assign: %v", err)
	}
	role, _ = repo.GetActiveRole(ctx, "user-1")
	if role != models.RoleCustomer {
		t.Errorf("expected customer, got %s", role)
	}

	// Reassignment keeps the old role for audit.
	admin := "admin-1"
	if err := repo.Assign(ctx, "user-1", models.RoleAgent, &admin, now.Add(time.Minute)); err != nil {
		t.Fatalf("reassign: %v", err)
	}
	ra, err := repo.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("get assignment: %v", err)
	}
	if ra.Role != models.RoleAgent {
		t.Errorf("expected agent, got %s", ra.Role)
	}
	if ra.PreviousRole == nil || *ra.PreviousRole != models.RoleCustomer {
		t.Errorf("previous role not kept: %v", ra.PreviousRole)
	}
	if ra.UpdatedBy == nil || *ra.UpdatedBy != "admin-1" {
		t.Errorf("updated_by not recorded: %v", ra.UpdatedBy)
	}
}

func TestRoleDeactivateIsSoft(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "roles_deactivate")
	repo := NewRoleRepository(d)
	ctx := context.Background()
	now := time.Now()

	if err := repo.Assign(ctx, "user-1", models.RoleRestaurant, nil, now); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := repo.Deactivate(ctx, "user-1", now.Add(time.Minute)); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	role, err := repo.GetActiveRole(ctx, "user-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if role != "" {
		t.Errorf("deactivated assignment must resolve to no role, got %s", role)
	}

	// The record itself stays.
	ra, _ := repo.Get(ctx, "user-1")
	if ra == nil || ra.IsActive {
		t.Errorf("record should remain, inactive: %+v", ra)
	}

	// Reassignment reactivates.
	if err := repo.Assign(ctx, "user-1", models.RoleRestaurant, nil, now.Add(2*time.Minute)); err != nil {
		t.Fatalf("reassign: %v", err)
	}
	role, _ = repo.GetActiveRole(ctx, "user-1")
	if role != models.RoleRestaurant {
		t.Errorf("reassignment should reactivate, got %q", role)
	}
}

func TestRoleCounts(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "roles_counts")
	repo := NewRoleRepository(d)
	ctx := context.Background()
	now := time.Now()

	for i, role := range []models.Role{models.RoleCustomer, models.RoleCustomer, models.RoleAgent} {
		uid := "user-" + string(rune('a'+i))
		if err := repo.Assign(ctx, uid, role, nil, now); err != nil {
			t.Fatalf("assign %s: %v", uid, err)
		}
	}
	if err := repo.Deactivate(ctx, "user-a", now); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	counts, err := repo.CountByRole(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts[models.RoleCustomer] != 1 || counts[models.RoleAgent] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
	// Roles with no assignment still appear with zero.
	if _, ok := counts[models.RoleAdmin]; !ok {
		t.Error("admin should be present with zero count")
	}
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"quickbite/models"
)

// RoleRepository is the role directory: exactly one role assignment per
// user, soft-deactivated rather than deleted.
type RoleRepository struct {
	db *sql.DB
}

func NewRoleRepository(db *sql.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// Assign sets the user's role, reactivating a deactivated assignment and
// recording the previous role and who made the change.
func (r *RoleRepository) Assign(ctx context.Context, uid string, role models.Role, updatedBy *string, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ts := models.FormatTime(now)
	_, err := r.db.ExecContext(ctx, `INSERT INTO user_roles (uid, role, is_active, assigned_at, updated_at, updated_by)
VALUES (?,?,1,?,?,?)
ON CONFLICT(uid) DO UPDATE SET
previous_role = user_roles.role,
role = excluded.role,
is_active = 1,
updated_at = excluded.updated_at,
updated_by = excluded.updated_by`,
		uid, string(role), ts, ts, updatedBy)
	return err
}

// Get fetches the raw assignment record, active or not. Returns nil, nil
// when the user has never been assigned a role.
func (r *RoleRepository) Get(ctx context.Context, uid string) (*models.RoleAssignment, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var ra models.RoleAssignment
	var role string
	var active int
	var prevRole, updatedBy sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT uid, role, is_active, assigned_at, updated_at, previous_role, updated_by
FROM user_roles WHERE uid = ?`, uid).
		Scan(&ra.UID, &role, &active, &ra.AssignedAt, &ra.UpdatedAt, &prevRole, &updatedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	ra.Role = models.Role(role)
	ra.IsActive = active != 0
	if prevRole.Valid {
		p := models.Role(prevRole.String)
		ra.PreviousRole = &p
	}
	ra.UpdatedBy = nullStr(updatedBy)
	return &ra, nil
}

// GetActiveRole resolves the user's single active role. A missing or
// deactivated assignment yields the empty role.
func (r *RoleRepository) GetActiveRole(ctx context.Context, uid string) (models.Role, error) {
	ra, err := r.Get(ctx, uid)
	if err != nil {
		return "", err
	}
	if ra == nil || !ra.IsActive {
		return "", nil
	}
	return ra.Role, nil
}

// Deactivate soft-removes the user's role. The record stays for audit.
func (r *RoleRepository) Deactivate(ctx context.Context, uid string, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `UPDATE user_roles SET is_active = 0, updated_at = ? WHERE uid = ?`,
		models.FormatTime(now), uid)
	return err
}

// ListByRole returns active assignments for a role, most recently assigned
// first.
func (r *RoleRepository) ListByRole(ctx context.Context, role models.Role, limit int) ([]models.RoleAssignment, error) {
	limit = capLimit(limit, 50)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT uid, role, is_active, assigned_at, updated_at, previous_role, updated_by
FROM user_roles WHERE role = ? AND is_active = 1
ORDER BY assigned_at DESC LIMIT ?`, string(role), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.RoleAssignment
	for rows.Next() {
		var ra models.RoleAssignment
		var roleStr string
		var active int
		var prevRole, updatedBy sql.NullString
		if err := rows.Scan(&ra.UID, &roleStr, &active, &ra.AssignedAt, &ra.UpdatedAt, &prevRole, &updatedBy); err != nil {
			return nil, err
		}
		ra.Role = models.Role(roleStr)
		ra.IsActive = active != 0
		if prevRole.Valid {
			p := models.Role(prevRole.String)
			ra.PreviousRole = &p
		}
		ra.UpdatedBy = nullStr(updatedBy)
		out = append(out, ra)
	}
	return out, rows.Err()
}

// CountByRole returns the active-assignment count per role.
func (r *RoleRepository) CountByRole(ctx context.Context) (map[models.Role]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT role, COUNT(*) FROM user_roles WHERE is_active = 1 GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[models.Role]int64{
		models.RoleCustomer:   0,
		models.RoleAgent:      0,
		models.RoleRestaurant: 0,
		models.RoleAdmin:      0,
	}
	for rows.Next() {
		var role string
		var n int64
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		out[models.Role(role)] = n
	}
	return out, rows.Err()
}

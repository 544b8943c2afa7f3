package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"quickbite/models"
)

// UserRepository stores the role-independent profile payload.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetOrCreate fetches a user profile, creating it with empty defaults on
// first access.
func (r *UserRepository) GetOrCreate(ctx context.Context, uid string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	u, err := r.get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}

	ts := models.FormatTime(time.Now())
	_, err = r.db.ExecContext(ctx, `INSERT INTO users (uid, created_at, updated_at) VALUES (?,?,?)
ON CONFLICT(uid) DO NOTHING`, uid, ts, ts)
	if err != nil {
		return nil, err
	}
	return r.get(ctx, uid)
}

func (r *UserRepository) get(ctx context.Context, uid string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, `SELECT uid, name, email, phone, created_at, updated_at FROM users WHERE uid = ?`, uid).
		Scan(&u.UID, &u.Name, &u.Email, &u.Phone, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Update sets the provided profile fields, creating the record first when
// absent. Nil fields are left untouched.
func (r *UserRepository) Update(ctx context.Context, uid string, name, email, phone *string, now time.Time) (*models.User, error) {
	if _, err := r.GetOrCreate(ctx, uid); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `UPDATE users SET
name = COALESCE(?, name),
email = COALESCE(?, email),
phone = COALESCE(?, phone),
updated_at = ?
WHERE uid = ?`, name, email, phone, models.FormatTime(now), uid)
	if err != nil {
		return nil, err
	}
	return r.get(ctx, uid)
}

// Contact returns the delivery contact other roles are entitled to see. Unknown
// users fall back to a generic display name.
func (r *UserRepository) Contact(ctx context.Context, uid string) (models.ContactInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	u, err := r.get(ctx, uid)
	if err != nil {
		return models.ContactInfo{}, err
	}
	if u == nil || u.Name == "" {
		name := "Customer"
		phone := ""
		if u != nil {
			phone = u.Phone
		}
		return models.ContactInfo{Name: name, Phone: phone}, nil
	}
	return models.ContactInfo{Name: u.Name, Phone: u.Phone}, nil
}

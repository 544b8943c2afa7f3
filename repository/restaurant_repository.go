package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"quickbite/models"
)

// RestaurantRepository stores restaurant profiles and the menu catalog.
type RestaurantRepository struct {
	db *sql.DB
}

func NewRestaurantRepository(db *sql.DB) *RestaurantRepository {
	return &RestaurantRepository{db: db}
}

const restaurantColumns = `id, name, description, address, phone, cuisine_type, is_open, min_order, rating, created_at, updated_at`

// GetOrCreate fetches a restaurant profile by its owner uid, creating it
// closed and empty on first access.
func (r *RestaurantRepository) GetOrCreate(ctx context.Context, id string) (*models.Restaurant, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rest, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rest != nil {
		return rest, nil
	}

	ts := models.FormatTime(time.Now())
	_, err = r.db.ExecContext(ctx, `INSERT INTO restaurants (id, created_at, updated_at) VALUES (?,?,?)
ON CONFLICT(id) DO NOTHING`, id, ts, ts)
	if err != nil {
		return nil, err
	}
	return r.get(ctx, id)
}

// Get fetches a restaurant by id. Returns nil, nil when missing.
func (r *RestaurantRepository) Get(ctx context.Context, id string) (*models.Restaurant, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return r.get(ctx, id)
}

func (r *RestaurantRepository) get(ctx context.Context, id string) (*models.Restaurant, error) {
	var rest models.Restaurant
	var isOpen int
	err := r.db.QueryRowContext(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE id = ?`, id).
		Scan(&rest.ID, &rest.Name, &rest.Description, &rest.Address, &rest.Phone, &rest.CuisineType,
			&isOpen, &rest.MinOrder, &rest.Rating, &rest.CreatedAt, &rest.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	rest.IsOpen = isOpen != 0
	return &rest, nil
}

// Summary returns the restaurant slice embedded in order views, with a
// placeholder name when the id no longer resolves.
func (r *RestaurantRepository) Summary(ctx context.Context, id string) (models.RestaurantSummary, error) {
	rest, err := r.Get(ctx, id)
	if err != nil {
		return models.RestaurantSummary{}, err
	}
	if rest == nil {
		return models.RestaurantSummary{ID: id, Name: "Unknown Restaurant"}, nil
	}
	return rest.Summary(), nil
}

// UpdateRestaurantParams are the owner-editable profile fields. Nil fields
// are left untouched.
type UpdateRestaurantParams struct {
	Name        *string
	Description *string
	Address     *string
	Phone       *string
	CuisineType *string
	IsOpen      *bool
	MinOrder    *float64
}

// Update applies profile changes, creating the record first when absent.
func (r *RestaurantRepository) Update(ctx context.Context, id string, p UpdateRestaurantParams, now time.Time) (*models.Restaurant, error) {
	if _, err := r.GetOrCreate(ctx, id); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var isOpen any
	if p.IsOpen != nil {
		v := 0
		if *p.IsOpen {
			v = 1
		}
		isOpen = v
	}
	_, err := r.db.ExecContext(ctx, `UPDATE restaurants SET
name = COALESCE(?, name),
description = COALESCE(?, description),
address = COALESCE(?, address),
phone = COALESCE(?, phone),
cuisine_type = COALESCE(?, cuisine_type),
is_open = COALESCE(?, is_open),
min_order = COALESCE(?, min_order),
updated_at = ?
WHERE id = ?`, p.Name, p.Description, p.Address, p.Phone, p.CuisineType, isOpen, p.MinOrder,
		models.FormatTime(now), id)
	if err != nil {
		return nil, err
	}
	return r.get(ctx, id)
}

// ListOpen returns open restaurants, optionally filtered by cuisine type or
// a name substring.
func (r *RestaurantRepository) ListOpen(ctx context.Context, cuisine, search string, limit int) ([]models.Restaurant, error) {
	limit = capLimit(limit, 50)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	where := []string{"is_open = 1"}
	args := []any{}
	if strings.TrimSpace(cuisine) != "" {
		where = append(where, "cuisine_type = ?")
		args = append(args, strings.TrimSpace(cuisine))
	}
	if strings.TrimSpace(search) != "" {
		where = append(where, "name LIKE ?")
		args = append(args, "%"+strings.TrimSpace(search)+"%")
	}
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY rating DESC, name ASC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Restaurant
	for rows.Next() {
		var rest models.Restaurant
		var isOpen int
		if err := rows.Scan(&rest.ID, &rest.Name, &rest.Description, &rest.Address, &rest.Phone,
			&rest.CuisineType, &isOpen, &rest.MinOrder, &rest.Rating, &rest.CreatedAt, &rest.UpdatedAt); err != nil {
			return nil, err
		}
		rest.IsOpen = isOpen != 0
		out = append(out, rest)
	}
	return out, rows.Err()
}

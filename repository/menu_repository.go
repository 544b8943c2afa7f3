package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"quickbite/models"
)

// MenuRepository stores menu categories and items per restaurant.
type MenuRepository struct {
	db *sql.DB
}

func NewMenuRepository(db *sql.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

// CreateCategoryParams holds the fields for a new menu category.
type CreateCategoryParams struct {
	Name        string
	Description string
	SortOrder   int
}

// CreateCategory adds a category to the restaurant's menu.
func (r *MenuRepository) CreateCategory(ctx context.Context, restaurantID string, p CreateCategoryParams, now time.Time) (*models.MenuCategory, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ts := models.FormatTime(now)
	cat := models.MenuCategory{
		ID:           newID(),
		RestaurantID: restaurantID,
		Name:         p.Name,
		Description:  p.Description,
		SortOrder:    p.SortOrder,
		IsActive:     true,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO menu_categories (id, restaurant_id, name, description, sort_order, is_active, created_at, updated_at)
VALUES (?,?,?,?,?,1,?,?)`, cat.ID, cat.RestaurantID, cat.Name, cat.Description, cat.SortOrder, cat.CreatedAt, cat.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// DeleteCategory removes a category and its items. Returns false when the
// category does not belong to the restaurant.
func (r *MenuRepository) DeleteCategory(ctx context.Context, restaurantID, categoryID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM menu_categories WHERE id = ? AND restaurant_id = ?`, categoryID, restaurantID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM menu_items WHERE category_id = ?`, categoryID); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

const menuItemColumns = `id, restaurant_id, category_id, name, description, price, image_url, is_available, created_at, updated_at`

// CreateItemParams holds the fields for a new menu item.
type CreateItemParams struct {
	CategoryID  string
	Name        string
	Description string
	Price       float64
	ImageURL    string
}

// CreateItem adds an item under one of the restaurant's categories. Returns
// nil, nil when the category does not belong to the restaurant.
func (r *MenuRepository) CreateItem(ctx context.Context, restaurantID string, p CreateItemParams, now time.Time) (*models.MenuItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var owner string
	err := r.db.QueryRowContext(ctx, `SELECT restaurant_id FROM menu_categories WHERE id = ?`, p.CategoryID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if owner != restaurantID {
		return nil, nil
	}

	ts := models.FormatTime(now)
	item := models.MenuItem{
		ID:           newID(),
		RestaurantID: restaurantID,
		CategoryID:   p.CategoryID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		ImageURL:     p.ImageURL,
		IsAvailable:  true,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO menu_items (`+menuItemColumns+`)
VALUES (?,?,?,?,?,?,?,?,?,?)`,
		item.ID, item.RestaurantID, item.CategoryID, item.Name, item.Description,
		item.Price, item.ImageURL, 1, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetItem fetches a single item. Returns nil, nil when missing.
func (r *MenuRepository) GetItem(ctx context.Context, itemID string) (*models.MenuItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var item models.MenuItem
	var avail int
	err := r.db.QueryRowContext(ctx, `SELECT `+menuItemColumns+` FROM menu_items WHERE id = ?`, itemID).
		Scan(&item.ID, &item.RestaurantID, &item.CategoryID, &item.Name, &item.Description,
			&item.Price, &item.ImageURL, &avail, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	item.IsAvailable = avail != 0
	return &item, nil
}

// UpdateItemParams are the editable menu item fields. Nil fields keep their
// current value.
type UpdateItemParams struct {
	Name        *string
	Description *string
	Price       *float64
	ImageURL    *string
	IsAvailable *bool
}

// UpdateItem applies changes to an item owned by the restaurant. Returns
// false when no such item exists.
func (r *MenuRepository) UpdateItem(ctx context.Context, restaurantID, itemID string, p UpdateItemParams, now time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var avail any
	if p.IsAvailable != nil {
		v := 0
		if *p.IsAvailable {
			v = 1
		}
		avail = v
	}
	res, err := r.db.ExecContext(ctx, `UPDATE menu_items SET
name = COALESCE(?, name),
description = COALESCE(?, description),
price = COALESCE(?, price),
image_url = COALESCE(?, image_url),
is_available = COALESCE(?, is_available),
updated_at = ?
WHERE id = ? AND restaurant_id = ?`,
		p.Name, p.Description, p.Price, p.ImageURL, avail, models.FormatTime(now), itemID, restaurantID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteItem removes an item owned by the restaurant.
func (r *MenuRepository) DeleteItem(ctx context.Context, restaurantID, itemID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ? AND restaurant_id = ?`, itemID, restaurantID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Menu returns the restaurant's active categories and items, categories by
// sort order and items by name. The Restaurant slice of the result is left
// for the caller to fill in.
func (r *MenuRepository) Menu(ctx context.Context, restaurantID string) (*models.Menu, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, restaurant_id, name, description, sort_order, is_active, created_at, updated_at
FROM menu_categories WHERE restaurant_id = ? AND is_active = 1 ORDER BY sort_order ASC, name ASC`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	menu := &models.Menu{
		Restaurant: models.RestaurantSummary{ID: restaurantID},
		Categories: []models.MenuCategory{},
		Items:      []models.MenuItem{},
	}
	for rows.Next() {
		var cat models.MenuCategory
		var active int
		if err := rows.Scan(&cat.ID, &cat.RestaurantID, &cat.Name, &cat.Description, &cat.SortOrder,
			&active, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
			return nil, err
		}
		cat.IsActive = active != 0
		menu.Categories = append(menu.Categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := r.db.QueryContext(ctx, `SELECT `+menuItemColumns+`
FROM menu_items WHERE restaurant_id = ? ORDER BY name ASC`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item models.MenuItem
		var avail int
		if err := itemRows.Scan(&item.ID, &item.RestaurantID, &item.CategoryID, &item.Name, &item.Description,
			&item.Price, &item.ImageURL, &avail, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		item.IsAvailable = avail != 0
		menu.Items = append(menu.Items, item)
	}
	return menu, itemRows.Err()
}

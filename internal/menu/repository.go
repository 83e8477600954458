package menu

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("menu: not found")

type Repository interface {
	GetItem(ctx context.Context, itemID string) (*Item, error)
	GetRestaurant(ctx context.Context, restaurantID string) (*Restaurant, error)
	ListItems(ctx context.Context, restaurantID string) ([]Item, error)
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

func (r *repo) GetItem(ctx context.Context, itemID string) (*Item, error) {
	const query = `
SELECT m.id, m.restaurant_id, r.name, m.name, m.description, m.price, m.is_available, m.preparation_time
FROM menu_items m
JOIN restaurants r ON r.id = m.restaurant_id
WHERE m.id = $1`

	var it Item
	err := r.db.QueryRowContext(ctx, query, itemID).Scan(
		&it.ID, &it.RestaurantID, &it.RestaurantName, &it.Name,
		&it.Description, &it.Price, &it.IsAvailable, &it.PreparationTime,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select menu item: %w", err)
	}
	return &it, nil
}

func (r *repo) GetRestaurant(ctx context.Context, restaurantID string) (*Restaurant, error) {
	const query = `
SELECT id, owner_id, name, slug, address, phone, is_active
FROM restaurants WHERE id = $1`

	var rest Restaurant
	err := r.db.QueryRowContext(ctx, query, restaurantID).Scan(
		&rest.ID, &rest.OwnerID, &rest.Name, &rest.Slug,
		&rest.Address, &rest.Phone, &rest.IsActive,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select restaurant: %w", err)
	}
	return &rest, nil
}

func (r *repo) ListItems(ctx context.Context, restaurantID string) ([]Item, error) {
	const query = `
SELECT m.id, m.restaurant_id, r.name, m.name, m.description, m.price, m.is_available, m.preparation_time
FROM menu_items m
JOIN restaurants r ON r.id = m.restaurant_id
WHERE m.restaurant_id = $1
ORDER BY m.name`

	rows, err := r.db.QueryContext(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("select menu items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(
			&it.ID, &it.RestaurantID, &it.RestaurantName, &it.Name,
			&it.Description, &it.Price, &it.IsAvailable, &it.PreparationTime,
		); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return items, nil
}

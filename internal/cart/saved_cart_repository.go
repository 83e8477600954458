package cart

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SavedCart is the admin-facing read model of one mirrored subcart.
type SavedCart struct {
	ID             string          `json:"cartId"`
	CustomerID     string          `json:"customerId"`
	RestaurantID   string          `json:"restaurantId"`
	RestaurantName string          `json:"restaurantName"`
	Items          []SavedCartItem `json:"items"`
	TotalItems     int             `json:"totalItems"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type SavedCartItem struct {
	MenuItemID      string          `json:"menuItemId"`
	Name            string          `json:"name"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"price"`
	SpecialRequests string          `json:"specialRequests"`
}

type savedCartRepo struct {
	db *sql.DB
}

func NewSavedCartRepository(db *sql.DB) SavedCartRepository {
	return &savedCartRepo{db: db}
}

// Rebuild replaces the mirror of one (customer, restaurant) pair with the
// given subcart: get-or-create the cart row, drop its items, re-insert from
// the subcart. Items whose menu item no longer exists are skipped, and a
// mirror left with no items is deleted outright so admins never see empty
// carts.
func (r *savedCartRepo) Rebuild(ctx context.Context, customerID, restaurantID string, sub SubCart) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const upsertCart = `
INSERT INTO saved_carts (id, customer_id, restaurant_id, created_at, updated_at)
VALUES ($1, $2, $3, NOW(), NOW())
ON CONFLICT (customer_id, restaurant_id) DO UPDATE
SET updated_at = NOW()
RETURNING id
`
	var cartID string
	if err := tx.QueryRowContext(ctx, upsertCart, uuid.NewString(), customerID, restaurantID).Scan(&cartID); err != nil {
		return fmt.Errorf("upsert saved cart: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM saved_cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear saved cart items: %w", err)
	}

	// Insert guarded by menu item existence: a stale session reference is
	// tolerated by skipping the row, not by failing the rebuild.
	const insertItem = `
INSERT INTO saved_cart_items (id, cart_id, menu_item_id, quantity, special_requests, added_at)
SELECT $1, $2, m.id, $4, $5, NOW()
FROM menu_items m
WHERE m.id = $3
`
	inserted := int64(0)
	for _, iid := range sortedItemIDs(sub) {
		li := sub[iid]
		res, err := tx.ExecContext(ctx, insertItem,
			uuid.NewString(), cartID, string(iid), li.Quantity, li.SpecialRequests)
		if err != nil {
			return fmt.Errorf("insert saved cart item: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		inserted += n
	}

	if inserted == 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM saved_carts WHERE id = $1`, cartID); err != nil {
			return fmt.Errorf("delete empty saved cart: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *savedCartRepo) Delete(ctx context.Context, customerID, restaurantID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM saved_carts WHERE customer_id = $1 AND restaurant_id = $2`,
		customerID, restaurantID)
	if err != nil {
		return fmt.Errorf("delete saved cart: %w", err)
	}
	return nil
}

func (r *savedCartRepo) DeleteAllForCustomer(ctx context.Context, customerID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM saved_carts WHERE customer_id = $1`, customerID)
	if err != nil {
		return fmt.Errorf("delete saved carts: %w", err)
	}
	return nil
}

// ListSavedCarts returns every mirrored cart with its items and computed
// totals, most recently touched first. This is the admin dashboard's read
// path; nothing here ever flows back into a session.
func ListSavedCarts(ctx context.Context, db *sql.DB) ([]SavedCart, error) {
	const cartsQuery = `
SELECT c.id, c.customer_id, c.restaurant_id, r.name, c.updated_at
FROM saved_carts c
JOIN restaurants r ON r.id = c.restaurant_id
ORDER BY c.updated_at DESC`

	rows, err := db.QueryContext(ctx, cartsQuery)
	if err != nil {
		return nil, fmt.Errorf("select saved carts: %w", err)
	}
	defer rows.Close()

	var carts []SavedCart
	for rows.Next() {
		var c SavedCart
		if err := rows.Scan(&c.ID, &c.CustomerID, &c.RestaurantID, &c.RestaurantName, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan saved cart: %w", err)
		}
		c.TotalPrice = decimal.Zero
		carts = append(carts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	const itemsQuery = `
SELECT i.menu_item_id, m.name, i.quantity, m.price, i.special_requests
FROM saved_cart_items i
JOIN menu_items m ON m.id = i.menu_item_id
WHERE i.cart_id = $1
ORDER BY m.name`

	for idx := range carts {
		itemRows, err := db.QueryContext(ctx, itemsQuery, carts[idx].ID)
		if err != nil {
			return nil, fmt.Errorf("select saved cart items: %w", err)
		}
		for itemRows.Next() {
			var it SavedCartItem
			if err := itemRows.Scan(&it.MenuItemID, &it.Name, &it.Quantity, &it.UnitPrice, &it.SpecialRequests); err != nil {
				itemRows.Close()
				return nil, fmt.Errorf("scan saved cart item: %w", err)
			}
			carts[idx].Items = append(carts[idx].Items, it)
			carts[idx].TotalItems += it.Quantity
			carts[idx].TotalPrice = carts[idx].TotalPrice.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		if err := itemRows.Err(); err != nil {
			itemRows.Close()
			return nil, fmt.Errorf("rows: %w", err)
		}
		itemRows.Close()
	}

	return carts, nil
}

func sortedItemIDs(sub SubCart) []MenuItemID {
	ids := make([]MenuItemID, 0, len(sub))
	for id := range sub {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

package menu

import (
	"github.com/shopspring/decimal"
)

type Restaurant struct {
	ID       string `json:"restaurantId"`
	OwnerID  string `json:"ownerId"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	IsActive bool   `json:"isActive"`
}

// Item is a menu item as the rest of the platform consumes it: the row's own
// fields plus the owning restaurant's id and name resolved through the join,
// so callers never chase the relation themselves.
type Item struct {
	ID              string          `json:"menuItemId"`
	RestaurantID    string          `json:"restaurantId"`
	RestaurantName  string          `json:"restaurantName"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	IsAvailable     bool            `json:"isAvailable"`
	PreparationTime int             `json:"preparationTimeMinutes"`
}

package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	MenuItemID      string          `json:"menuItemId"`
	Name            string          `json:"name"`
	Quantity        int             `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	SpecialRequests string          `json:"specialRequests"`
}

type Order struct {
	ID                  string          `json:"orderId"`
	CustomerID          string          `json:"customerId"`
	RestaurantID        string          `json:"restaurantId"`
	Status              Status          `json:"status"`
	PaymentMethod       string          `json:"paymentMethod"`
	PaymentStatus       PaymentStatus   `json:"paymentStatus"`
	Items               []Item          `json:"items"`
	TotalPrice          decimal.Decimal `json:"totalPrice"`
	SpecialInstructions string          `json:"specialInstructions"`
	CreatedAt           time.Time       `json:"createdAt"`
}

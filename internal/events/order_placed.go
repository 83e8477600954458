package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Deejulu/halosaas/internal/order"
)

const (
	OrderPlacedEventName    = "OrderPlaced"
	OrderPlacedEventVersion = 1
	orderPlacedSchema       = "contracts/events/order/OrderPlaced.v1.enveloped.schema.json"
)

// EventEnvelope is the shared wrapper for v1 event contracts: identity,
// causality, and per-partition ordering around a typed payload.
type EventEnvelope struct {
	EventName     string    `json:"eventName"`
	EventVersion  int       `json:"eventVersion"`
	EventID       string    `json:"eventId"`
	CorrelationID string    `json:"correlationId,omitempty"`
	CausationID   string    `json:"causationId,omitempty"`
	Producer      string    `json:"producer"`
	PartitionKey  string    `json:"partitionKey"`
	Sequence      int64     `json:"sequence"`
	OccurredAt    time.Time `json:"occurredAt"`
	Schema        string    `json:"schema"`
}

type OrderPlacedEvent struct {
	EventEnvelope
	Payload OrderPlacedPayload `json:"payload"`
}

type OrderPlacedPayload struct {
	OrderID      string            `json:"orderId"`
	CustomerID   string            `json:"customerId"`
	RestaurantID string            `json:"restaurantId"`
	Items        []OrderPlacedItem `json:"items"`
	TotalPrice   decimal.Decimal   `json:"totalPrice"`
	Timestamp    time.Time         `json:"timestamp"`
}

type OrderPlacedItem struct {
	MenuItemID string          `json:"menuItemId"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

// EventMeta carries request-scoped causality into a publish.
type EventMeta struct {
	CorrelationID string
	CausationID   string
}

func newOrderPlacedEvent(o *order.Order, meta EventMeta, seq int64, occurredAt time.Time) OrderPlacedEvent {
	payload := OrderPlacedPayload{
		OrderID:      o.ID,
		CustomerID:   o.CustomerID,
		RestaurantID: o.RestaurantID,
		TotalPrice:   o.TotalPrice,
		Timestamp:    occurredAt,
	}
	for _, it := range o.Items {
		payload.Items = append(payload.Items, OrderPlacedItem{
			MenuItemID: it.MenuItemID,
			Quantity:   it.Quantity,
			Price:      it.Price,
		})
	}

	return OrderPlacedEvent{
		EventEnvelope: EventEnvelope{
			EventName:     OrderPlacedEventName,
			EventVersion:  OrderPlacedEventVersion,
			EventID:       uuid.NewString(),
			CorrelationID: meta.CorrelationID,
			CausationID:   meta.CausationID,
			Producer:      producerName,
			PartitionKey:  o.RestaurantID,
			Sequence:      seq,
			OccurredAt:    occurredAt,
			Schema:        orderPlacedSchema,
		},
		Payload: payload,
	}
}

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Deejulu/halosaas/internal/events"
	"github.com/Deejulu/halosaas/internal/order"
)

type OrderEventsPublisher interface {
	PublishOrderPlaced(ctx context.Context, meta events.EventMeta, o *order.Order) error
}

type CheckoutHandler struct {
	cartHandler *CartHandler
	orderRepo   order.Repository
	publisher   OrderEventsPublisher
	timeout     time.Duration
}

func NewCheckoutHandler(cartHandler *CartHandler, orderRepo order.Repository, publisher OrderEventsPublisher, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		cartHandler: cartHandler,
		orderRepo:   orderRepo,
		publisher:   publisher,
		timeout:     timeout,
	}
}

type checkoutRequest struct {
	PaymentMethod       string `json:"paymentMethod"`
	SpecialInstructions string `json:"specialInstructions"`
}

// Checkout drains the active subcart into an order: snapshot the normalized
// line items and total, persist the order, publish OrderPlaced, then clear
// the subcart. Only the session cart's view of the world is consulted; line
// items are taken as last known even if the catalog moved on.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	customerID := CustomerID(r.Context())
	if customerID == "" {
		writeError(w, http.StatusUnauthorized, "sign in to check out")
		return
	}

	body := checkoutRequest{PaymentMethod: "cash"}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	c := h.cartHandler.cartFor(r)
	rid, ok := c.RestaurantID()
	if !ok {
		writeError(w, http.StatusBadRequest, "no restaurant selected")
		return
	}
	items := c.Items()
	if len(items) == 0 {
		writeError(w, http.StatusBadRequest, "cart is empty")
		return
	}

	o := &order.Order{
		ID:                  uuid.NewString(),
		CustomerID:          customerID,
		RestaurantID:        string(rid),
		Status:              order.StatusPending,
		PaymentMethod:       body.PaymentMethod,
		PaymentStatus:       order.PaymentPending,
		TotalPrice:          c.TotalPrice(),
		SpecialInstructions: body.SpecialInstructions,
		CreatedAt:           time.Now().UTC(),
	}
	for _, it := range items {
		o.Items = append(o.Items, order.Item{
			MenuItemID:      it.MenuItemID,
			Name:            it.Name,
			Quantity:        it.Quantity,
			Price:           it.UnitPrice,
			SpecialRequests: it.SpecialRequests,
		})
	}

	if err := h.orderRepo.Create(ctx, o); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	if err := h.publisher.PublishOrderPlaced(ctx, requestMeta(r), o); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to publish order placed event")
		return
	}

	c.Clear(ctx, false)

	writeJSON(w, http.StatusOK, o)
}

func (h *CheckoutHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	if orderID == "" {
		writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	o, err := h.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load order")
		return
	}
	if o == nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	// Customers see their own orders; admins see everything.
	if Role(r.Context()) != RoleAdmin && o.CustomerID != CustomerID(r.Context()) {
		writeError(w, http.StatusForbidden, "not your order")
		return
	}

	writeJSON(w, http.StatusOK, o)
}

func (h *CheckoutHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	customerID := CustomerID(r.Context())
	if customerID == "" {
		writeError(w, http.StatusUnauthorized, "sign in to view orders")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.orderRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// requestMeta propagates causality headers into published events, minting a
// correlation id when the edge did not supply one.
func requestMeta(r *http.Request) events.EventMeta {
	meta := events.EventMeta{
		CorrelationID: r.Header.Get("X-Correlation-Id"),
		CausationID:   r.Header.Get("X-Causation-Id"),
	}
	if meta.CorrelationID == "" {
		meta.CorrelationID = uuid.NewString()
	}
	return meta
}

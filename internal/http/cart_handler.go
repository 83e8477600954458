package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Deejulu/halosaas/internal/cart"
	"github.com/Deejulu/halosaas/internal/menu"
	"github.com/Deejulu/halosaas/internal/session"
)

type CartHandler struct {
	menuRepo menu.Repository
	mirror   cart.Mirror
	timeout  time.Duration
}

func NewCartHandler(menuRepo menu.Repository, mirror cart.Mirror, timeout time.Duration) *CartHandler {
	return &CartHandler{menuRepo: menuRepo, mirror: mirror, timeout: timeout}
}

// cartFor binds a Cart to the request's session and identity. The session
// middleware guarantees a session on every route this handler serves.
func (h *CartHandler) cartFor(r *http.Request) *cart.Cart {
	return cart.New(session.FromContext(r.Context()), CustomerID(r.Context()), h.mirror)
}

func (h *CartHandler) ctx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}

type cartItemRequest struct {
	Quantity        int    `json:"quantity"`
	SpecialRequests string `json:"specialRequests"`
}

// AddItem resolves the live menu item (price and availability are trusted at
// call time) and accumulates it onto the cart. Quantity is validated here:
// the cart layer deliberately does not police its inputs.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	if itemID == "" {
		writeError(w, http.StatusBadRequest, "missing menu item id")
		return
	}

	body := cartItemRequest{Quantity: 1}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if body.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	item, err := h.menuRepo.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			writeError(w, http.StatusNotFound, "menu item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load menu item")
		return
	}
	if !item.IsAvailable {
		writeError(w, http.StatusNotFound, "menu item not available")
		return
	}

	c := h.cartFor(r)
	c.Add(ctx, *item, body.Quantity, body.SpecialRequests)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"cart_total_items": c.TotalItemsAllRestaurants(),
		"message":          item.Name + " added to cart",
	})
}

// UpdateItem overwrites quantity and notes; a non-positive quantity is a
// removal, by documented policy.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	if itemID == "" {
		writeError(w, http.StatusBadRequest, "missing menu item id")
		return
	}

	var body cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	item, err := h.menuRepo.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			writeError(w, http.StatusNotFound, "menu item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load menu item")
		return
	}

	c := h.cartFor(r)
	c.Update(ctx, *item, body.Quantity, body.SpecialRequests)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"cart_total_items": c.TotalItemsAllRestaurants(),
	})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	if itemID == "" {
		writeError(w, http.StatusBadRequest, "missing menu item id")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	item, err := h.menuRepo.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			writeError(w, http.StatusNotFound, "menu item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load menu item")
		return
	}

	c := h.cartFor(r)
	c.Remove(ctx, *item)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"cart_total_items": c.TotalItemsAllRestaurants(),
	})
}

// ViewCart renders the whole cart grouped by restaurant, every subcart
// included regardless of which one is active.
func (h *CartHandler) ViewCart(w http.ResponseWriter, r *http.Request) {
	c := h.cartFor(r)
	groups, grand := c.Grouped()

	writeJSON(w, http.StatusOK, map[string]any{
		"restaurants": groups,
		"grand_total": grand,
	})
}

// ClearCart empties the active subcart, or everything with ?all=true.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	all := r.URL.Query().Get("all") == "true"
	c := h.cartFor(r)
	c.Clear(ctx, all)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"cart_total_items": c.TotalItemsAllRestaurants(),
	})
}

// SwitchRestaurant sets the active cart restaurant in the session.
func (h *CartHandler) SwitchRestaurant(w http.ResponseWriter, r *http.Request) {
	restaurantID := chi.URLParam(r, "restaurantID")
	if restaurantID == "" {
		writeError(w, http.StatusBadRequest, "missing restaurant id")
		return
	}

	c := h.cartFor(r)
	c.SwitchRestaurant(cart.RestaurantID(restaurantID))

	writeJSON(w, http.StatusOK, map[string]any{
		"success":                 true,
		"current_cart_restaurant": restaurantID,
	})
}

// Summary feeds the floating cart badge: one line per restaurant with a
// non-empty subcart, plus the grand item count.
func (h *CartHandler) Summary(w http.ResponseWriter, r *http.Request) {
	c := h.cartFor(r)
	restaurants, total := c.Summary()

	writeJSON(w, http.StatusOK, map[string]any{
		"total_items": total,
		"restaurants": restaurants,
	})
}

// Count reports the active subcart's item count and which restaurant it is.
func (h *CartHandler) Count(w http.ResponseWriter, r *http.Request) {
	c := h.cartFor(r)
	rid, _ := c.RestaurantID()

	writeJSON(w, http.StatusOK, map[string]any{
		"cart_total_items": c.TotalItems(),
		"restaurant_id":    string(rid),
	})
}

// TotalCount reports the item count across every restaurant. Distinct from
// Count on purpose: the header badge wants the global figure.
func (h *CartHandler) TotalCount(w http.ResponseWriter, r *http.Request) {
	c := h.cartFor(r)

	writeJSON(w, http.StatusOK, map[string]any{
		"cart_total_items": c.TotalItemsAllRestaurants(),
		"success":          true,
	})
}

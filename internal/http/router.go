package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Deejulu/halosaas/internal/session"
)

type RouterDeps struct {
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Menu     *MenuHandler
	Admin    *AdminHandler

	SessionStore  session.Store
	SessionCookie string
	SessionTTL    time.Duration
	Logger        *zap.Logger
}

func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(Identity)
	r.Use(session.Middleware(deps.SessionStore, deps.SessionCookie, deps.SessionTTL, deps.Logger))

	r.Get("/health", healthHandler)

	r.Route("/api/restaurants", func(r chi.Router) {
		r.Get("/{restaurantID}", deps.Menu.GetRestaurant)
		r.Get("/{restaurantID}/menu", deps.Menu.ListItems)
	})

	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", deps.Cart.ViewCart)
		r.Get("/summary", deps.Cart.Summary)
		r.Get("/count", deps.Cart.Count)
		r.Get("/total-count", deps.Cart.TotalCount)
		r.Post("/items/{itemID}", deps.Cart.AddItem)
		r.Put("/items/{itemID}", deps.Cart.UpdateItem)
		r.Delete("/items/{itemID}", deps.Cart.RemoveItem)
		r.Post("/clear", deps.Cart.ClearCart)
		r.Post("/restaurant/{restaurantID}", deps.Cart.SwitchRestaurant)
	})

	r.Post("/api/checkout", deps.Checkout.Checkout)
	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/", deps.Checkout.ListOrders)
		r.Get("/{orderID}", deps.Checkout.GetOrder)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(RequireAdmin)
		r.Get("/carts", deps.Admin.ListSavedCarts)
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok", "service": "halosaas"}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

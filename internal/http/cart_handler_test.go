package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Deejulu/halosaas/internal/cart"
	"github.com/Deejulu/halosaas/internal/events"
	"github.com/Deejulu/halosaas/internal/menu"
	"github.com/Deejulu/halosaas/internal/order"
	"github.com/Deejulu/halosaas/internal/session"
)

type fakeMenuRepo struct {
	items map[string]menu.Item
}

func (r *fakeMenuRepo) GetItem(_ context.Context, itemID string) (*menu.Item, error) {
	it, ok := r.items[itemID]
	if !ok {
		return nil, menu.ErrNotFound
	}
	return &it, nil
}

func (r *fakeMenuRepo) GetRestaurant(_ context.Context, restaurantID string) (*menu.Restaurant, error) {
	for _, it := range r.items {
		if it.RestaurantID == restaurantID {
			return &menu.Restaurant{ID: restaurantID, Name: it.RestaurantName, IsActive: true}, nil
		}
	}
	return nil, menu.ErrNotFound
}

func (r *fakeMenuRepo) ListItems(_ context.Context, restaurantID string) ([]menu.Item, error) {
	var out []menu.Item
	for _, it := range r.items {
		if it.RestaurantID == restaurantID {
			out = append(out, it)
		}
	}
	return out, nil
}

type fakeOrderRepo struct {
	created   []*order.Order
	createErr error
}

func (r *fakeOrderRepo) Create(_ context.Context, o *order.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, o)
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, orderID string) (*order.Order, error) {
	for _, o := range r.created {
		if o.ID == orderID {
			return o, nil
		}
	}
	return nil, nil
}

func (r *fakeOrderRepo) ListByCustomer(_ context.Context, customerID string) ([]order.Order, error) {
	var out []order.Order
	for _, o := range r.created {
		if o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

type fakePublisher struct {
	published []*order.Order
	metas     []events.EventMeta
	err       error
}

func (p *fakePublisher) PublishOrderPlaced(_ context.Context, meta events.EventMeta, o *order.Order) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, o)
	p.metas = append(p.metas, meta)
	return nil
}

type testEnv struct {
	server    *httptest.Server
	client    *http.Client
	orderRepo *fakeOrderRepo
	publisher *fakePublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	menuRepo := &fakeMenuRepo{items: map[string]menu.Item{
		"7":  {ID: "7", RestaurantID: "3", RestaurantName: "Mama Put", Name: "Jollof Rice", Price: decimal.NewFromInt(1500), IsAvailable: true},
		"9":  {ID: "9", RestaurantID: "3", RestaurantName: "Mama Put", Name: "Suya", Price: decimal.NewFromInt(2500), IsAvailable: true},
		"21": {ID: "21", RestaurantID: "5", RestaurantName: "Buca Trattoria", Name: "Margherita", Price: decimal.NewFromInt(4000), IsAvailable: true},
		"22": {ID: "22", RestaurantID: "5", RestaurantName: "Buca Trattoria", Name: "Calzone", Price: decimal.NewFromInt(4500), IsAvailable: false},
	}}
	orderRepo := &fakeOrderRepo{}
	publisher := &fakePublisher{}

	timeout := 5 * time.Second
	cartHandler := NewCartHandler(menuRepo, cart.NopMirror{}, timeout)
	router := NewRouter(RouterDeps{
		Cart:          cartHandler,
		Checkout:      NewCheckoutHandler(cartHandler, orderRepo, publisher, timeout),
		Menu:          NewMenuHandler(menuRepo, timeout),
		Admin:         NewAdminHandler(nil, timeout),
		SessionStore:  session.NewMemoryStore(),
		SessionCookie: "halosaas_session",
		SessionTTL:    time.Hour,
		Logger:        zap.NewNop(),
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &testEnv{
		server:    server,
		client:    &http.Client{Jar: jar},
		orderRepo: orderRepo,
		publisher: publisher,
	}
}

// do issues a request through the cookie-carrying client so the session
// survives across calls the way a browser's would.
func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode %s %s response: %v", method, path, err)
	}
	return resp.StatusCode, decoded
}

func TestAddItemAccumulatesAcrossRequests(t *testing.T) {
	env := newTestEnv(t)

	status, resp := env.do(t, http.MethodPost, "/api/cart/items/7", map[string]any{"quantity": 2}, nil)
	if status != http.StatusOK {
		t.Fatalf("first add: status %d, resp %v", status, resp)
	}

	status, resp = env.do(t, http.MethodPost, "/api/cart/items/7", map[string]any{"quantity": 3}, nil)
	if status != http.StatusOK {
		t.Fatalf("second add: status %d, resp %v", status, resp)
	}
	if got := resp["cart_total_items"].(float64); got != 5 {
		t.Fatalf("expected accumulated total 5, got %v", got)
	}

	_, count := env.do(t, http.MethodGet, "/api/cart/count", nil, nil)
	if got := count["cart_total_items"].(float64); got != 5 {
		t.Fatalf("count endpoint disagrees: %v", count)
	}
	if count["restaurant_id"] != "3" {
		t.Fatalf("expected active restaurant 3, got %v", count["restaurant_id"])
	}
}

func TestAddItemValidation(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(t, http.MethodPost, "/api/cart/items/7", map[string]any{"quantity": 0}, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("zero quantity: expected 400, got %d", status)
	}

	status, _ = env.do(t, http.MethodPost, "/api/cart/items/999", map[string]any{"quantity": 1}, nil)
	if status != http.StatusNotFound {
		t.Fatalf("unknown item: expected 404, got %d", status)
	}

	status, _ = env.do(t, http.MethodPost, "/api/cart/items/22", map[string]any{"quantity": 1}, nil)
	if status != http.StatusNotFound {
		t.Fatalf("unavailable item: expected 404, got %d", status)
	}
}

func TestUpdateItemToZeroRemoves(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/cart/items/7", map[string]any{"quantity": 2}, nil)

	status, resp := env.do(t, http.MethodPut, "/api/cart/items/7", map[string]any{"quantity": 0}, nil)
	if status != http.StatusOK {
		t.Fatalf("update: status %d, resp %v", status, resp)
	}
	if got := resp["cart_total_items"].(float64); got != 0 {
		t.Fatalf("expected empty cart after zero update, got %v", got)
	}
}

func TestRemoveItem(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/cart/items/7", map[string]any{"quantity": 1}, nil)
	env.do(t, http.MethodPost, "/api/cart/items/9", map[string]any{"quantity": 1}, nil)

	status, resp := env.do(t, http.MethodDelete, "/api/cart/items/9", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("remove: status %d, resp %v", status, resp)
	}
	if got := resp["cart_total_items"].(float64); got != 1 {
		t.Fatalf("expected one item left, got %v", got)
	}
}

func TestCountVersusTotalCount(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/cart/items/7", map[string]any{"quantity": 2}, nil)
	env.do(t, http.MethodPost, "/api/cart/items/21", map[string]any{"quantity": 1}, nil)

	// Restaurant 5 is active after the last add.
	_, count := env.do(t, http.MethodGet, "/api/cart/count", nil, nil)
	if got := count["cart_total_items"].(float64); got != 1 {
		t.Fatalf("active count should cover restaurant 5 only, got %v", got)
	}

	_, total := env.do(t, http.MethodGet, "/api/cart/total-count", nil, nil)
	if got := total["cart_total_items"].(float64); got != 3 {
		t.Fatalf("global count should cover both restaurants, got %v", got)
	}
}

func TestSummaryListsRestaurants(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/cart/items/7", map[string]any{"quantity": 2}, nil)
	env.do(t, http.MethodPost, "/api/cart/items/21", map[string]any{"quantity": 4}, nil)

	_, resp := env.do(t, http.MethodGet, "/api/cart/summary", nil, nil)
	if got := resp["total_items"].(float64); got != 6 {
		t.Fatalf("expected grand total 6, got %v", got)
	}
	restaurants := resp["restaurants"].([]any)
	if len(restaurants) != 2 {
		t.Fatalf("expected two restaurants in summary, got %v", restaurants)
	}
	first := restaurants[0].(map[string]any)
	if first["id"] != "3" || first["count"].(float64) != 2 || first["name"] != "Mama Put" {
		t.Fatalf("unexpected first summary entry %v", first)
	}
}

func TestSwitchRestaurant(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/cart/items/7", map[string]any{"quantity": 2}, nil)
	env.do(t, http.MethodPost, "/api/cart/items/21", map[string]any{"quantity": 1}, nil)

	status, resp := env.do(t, http.MethodPost, "/api/cart/restaurant/3", nil, nil)
	if status != http.StatusOK || resp["current_cart_restaurant"] != "3" {
		t.Fatalf("switch: status %d, resp %v", status, resp)
	}

	_, count := env.do(t, http.MethodGet, "/api/cart/count", nil, nil)
	if got := count["cart_total_items"].(float64); got != 2 {
		t.Fatalf("expected restaurant 3's count after switch, got %v", count)
	}
}

func TestClearCart(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/cart/items/7", map[string]any{"quantity": 2}, nil)
	env.do(t, http.MethodPost, "/api/cart/items/21", map[string]any{"quantity": 1}, nil)

	// Clearing without ?all empties only the active subcart (restaurant 5).
	_, resp := env.do(t, http.MethodPost, "/api/cart/clear", nil, nil)
	if got := resp["cart_total_items"].(float64); got != 2 {
		t.Fatalf("expected restaurant 3's items to survive, got %v", resp)
	}

	_, resp = env.do(t, http.MethodPost, "/api/cart/clear?all=true", nil, nil)
	if got := resp["cart_total_items"].(float64); got != 0 {
		t.Fatalf("expected empty cart after clear all, got %v", resp)
	}
}

func TestViewCartGroupsByRestaurant(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/cart/items/7", map[string]any{"quantity": 2}, nil)
	env.do(t, http.MethodPost, "/api/cart/items/21", map[string]any{"quantity": 1}, nil)

	_, resp := env.do(t, http.MethodGet, "/api/cart/", nil, nil)
	groups := resp["restaurants"].([]any)
	if len(groups) != 2 {
		t.Fatalf("expected two restaurant groups, got %v", groups)
	}
	if resp["grand_total"] != "7000" {
		t.Fatalf("expected grand total 7000, got %v", resp["grand_total"])
	}
	first := groups[0].(map[string]any)
	if first["restaurant_id"] != "3" || first["subtotal"] != "3000" {
		t.Fatalf("unexpected first group %v", first)
	}
}

func TestAdminCartsRequiresAdminRole(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(t, http.MethodGet, "/api/admin/carts", nil, map[string]string{
		HeaderUserID:   "cust-1",
		HeaderUserRole: RoleCustomer,
	})
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", status)
	}
}

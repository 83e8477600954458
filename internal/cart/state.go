package cart

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Deejulu/halosaas/internal/session"
)

// Session keys. SessionKeyCart holds the nested subcart structure,
// SessionKeyActiveRestaurant the bare id of the restaurant that
// restaurant-unaware operations target.
const (
	SessionKeyCart             = "cart"
	SessionKeyActiveRestaurant = "current_cart_restaurant"
)

type RestaurantID string

type MenuItemID string

// UnmarshalJSON accepts both string and bare-number ids. Carts written by
// early versions of the platform stored the restaurant id as a number.
func (r *RestaurantID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*r = RestaurantID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*r = RestaurantID(n.String())
		return nil
	}
	return fmt.Errorf("restaurant id: unsupported JSON value %s", b)
}

// LineItem is one menu item's order-in-progress within a subcart. UnitPrice
// is snapshotted when the item is first added and never refreshed from the
// catalog, so a concurrent price edit by the owner cannot shift a cart total
// mid-checkout. Restaurant id and name are denormalized for rendering
// without a catalog lookup.
type LineItem struct {
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"price"`
	Name            string          `json:"name"`
	SpecialRequests string          `json:"special_requests"`
	RestaurantID    RestaurantID    `json:"restaurant_id"`
	RestaurantName  string          `json:"restaurant_name"`
}

// SubCart is one customer's unsubmitted order for one restaurant.
type SubCart map[MenuItemID]LineItem

// State maps restaurant id to subcart. An empty subcart never persists as a
// key: emptying one removes it.
type State map[RestaurantID]SubCart

// loadState reads the session cart, upgrading the legacy flat layout in
// place. The flat layout stored menu-item id -> line item at the top level,
// using each item's restaurant_id as a routing key; the current layout nests
// restaurant id -> menu-item id -> line item. Detection probes the top-level
// values for a restaurant_id key on themselves; anything unclassifiable is
// treated as already nested so a corrupt session degrades to an empty-looking
// cart instead of an error.
func loadState(sess *session.Session) State {
	raw, ok := sess.GetRaw(SessionKeyCart)
	if !ok {
		state := State{}
		_ = sess.Set(SessionKeyCart, state)
		return state
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		state := State{}
		_ = sess.Set(SessionKeyCart, state)
		return state
	}

	if isFlat(top) {
		state := migrateFlat(top)
		_ = sess.Set(SessionKeyCart, state)
		return state
	}

	state := State{}
	if err := json.Unmarshal(raw, &state); err != nil {
		state = State{}
		_ = sess.Set(SessionKeyCart, state)
		return state
	}
	if state == nil {
		// A literal null decodes without error but leaves the map nil.
		state = State{}
		_ = sess.Set(SessionKeyCart, state)
	}
	for rid, sub := range state {
		if len(sub) == 0 {
			delete(state, rid)
		}
	}
	return state
}

// isFlat reports whether any top-level value is an object carrying a
// restaurant_id key directly on itself. Nested subcarts are keyed by menu
// item one level down, so their top-level values never have one.
func isFlat(top map[string]json.RawMessage) bool {
	for _, v := range top {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(v, &obj); err != nil {
			continue
		}
		if _, ok := obj["restaurant_id"]; ok {
			return true
		}
	}
	return false
}

// migrateFlat routes every legacy entry into the subcart its restaurant_id
// names. Entries without one have no valid destination and are dropped.
func migrateFlat(top map[string]json.RawMessage) State {
	state := State{}
	for itemID, v := range top {
		var li LineItem
		if err := json.Unmarshal(v, &li); err != nil {
			continue
		}
		if li.RestaurantID == "" {
			continue
		}
		sub, ok := state[li.RestaurantID]
		if !ok {
			sub = SubCart{}
			state[li.RestaurantID] = sub
		}
		sub[MenuItemID(itemID)] = li
	}
	return state
}

package cart

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Deejulu/halosaas/internal/menu"
	"github.com/Deejulu/halosaas/internal/session"
)

// Mirror receives the session cart after every mutation so an administrative
// copy can be kept outside the session. Implementations are best-effort: they
// report nothing back because a mirror failure must never fail the cart
// mutation that triggered it.
type Mirror interface {
	Sync(ctx context.Context, customerID string, restaurantID RestaurantID, sub SubCart)
	Delete(ctx context.Context, customerID string, restaurantID RestaurantID)
	DeleteAll(ctx context.Context, customerID string)
}

// NopMirror satisfies Mirror without persisting anything.
type NopMirror struct{}

func (NopMirror) Sync(context.Context, string, RestaurantID, SubCart) {}
func (NopMirror) Delete(context.Context, string, RestaurantID)       {}
func (NopMirror) DeleteAll(context.Context, string)                  {}

// Cart is the request-scoped operations surface over one visitor's session
// cart. Constructing it runs the legacy-shape migration, so every caller sees
// the nested layout. customerID is empty for anonymous visitors; the mirror
// decides what that means for persistence.
type Cart struct {
	sess       *session.Session
	customerID string
	mirror     Mirror
	state      State
}

func New(sess *session.Session, customerID string, mirror Mirror) *Cart {
	return &Cart{
		sess:       sess,
		customerID: customerID,
		mirror:     mirror,
		state:      loadState(sess),
	}
}

// Add accumulates quantity onto the item's line, creating it with a price
// snapshot on first add. The item's restaurant becomes the active one:
// adding is an implicit context switch. Quantity validation is the caller's
// job; this layer trusts its input.
func (c *Cart) Add(ctx context.Context, item menu.Item, quantity int, specialRequests string) {
	rid := RestaurantID(item.RestaurantID)
	iid := MenuItemID(item.ID)

	sub, ok := c.state[rid]
	if !ok {
		sub = SubCart{}
		c.state[rid] = sub
	}

	li, ok := sub[iid]
	if !ok {
		li = LineItem{
			UnitPrice:       item.Price,
			Name:            item.Name,
			SpecialRequests: specialRequests,
			RestaurantID:    rid,
			RestaurantName:  item.RestaurantName,
		}
	}
	li.Quantity += quantity
	sub[iid] = li

	c.setActive(rid)
	c.save()
	c.mirror.Sync(ctx, c.customerID, rid, c.state[rid])
}

// Remove deletes the item's line if present. An emptied subcart loses its
// key, and the active pointer is cleared when it pointed there.
func (c *Cart) Remove(ctx context.Context, item menu.Item) {
	rid := RestaurantID(item.RestaurantID)
	iid := MenuItemID(item.ID)

	sub, ok := c.state[rid]
	if !ok {
		return
	}
	if _, ok := sub[iid]; !ok {
		return
	}

	delete(sub, iid)
	if len(sub) == 0 {
		delete(c.state, rid)
		c.clearActiveIf(rid)
	}

	c.save()
	c.mirror.Sync(ctx, c.customerID, rid, c.state[rid])
}

// Update overwrites quantity and notes in place without re-snapshotting the
// price. A quantity of zero or less is a removal request, not an error.
func (c *Cart) Update(ctx context.Context, item menu.Item, quantity int, specialRequests string) {
	rid := RestaurantID(item.RestaurantID)
	iid := MenuItemID(item.ID)

	sub, ok := c.state[rid]
	if !ok {
		return
	}
	li, ok := sub[iid]
	if !ok {
		return
	}

	if quantity <= 0 {
		c.Remove(ctx, item)
		return
	}

	li.Quantity = quantity
	li.SpecialRequests = specialRequests
	sub[iid] = li

	c.save()
	c.mirror.Sync(ctx, c.customerID, rid, c.state[rid])
}

// Clear empties the active subcart, or every subcart when allRestaurants is
// set, removing the matching mirrors as it goes.
func (c *Cart) Clear(ctx context.Context, allRestaurants bool) {
	if allRestaurants {
		c.mirror.DeleteAll(ctx, c.customerID)
		c.state = State{}
		c.sess.Delete(SessionKeyActiveRestaurant)
		c.save()
		return
	}

	rid, ok := c.activeRestaurant()
	if !ok {
		c.save()
		return
	}

	c.mirror.Delete(ctx, c.customerID, rid)
	delete(c.state, rid)
	c.clearActiveIf(rid)
	c.save()
}

// SwitchRestaurant points restaurant-unaware operations at the given subcart.
func (c *Cart) SwitchRestaurant(rid RestaurantID) {
	c.setActive(rid)
}

// RestaurantID resolves the active restaurant: the explicit session pointer
// when set, otherwise the sole subcart when exactly one exists. The inference
// is read-only; it is never written back.
func (c *Cart) RestaurantID() (RestaurantID, bool) {
	return c.activeRestaurant()
}

// TotalPrice sums unit price times quantity over the active subcart.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	rid, ok := c.activeRestaurant()
	if !ok {
		return total
	}
	for _, li := range c.state[rid] {
		total = total.Add(li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity))))
	}
	return total
}

// TotalItems sums quantities over the active subcart.
func (c *Cart) TotalItems() int {
	rid, ok := c.activeRestaurant()
	if !ok {
		return 0
	}
	total := 0
	for _, li := range c.state[rid] {
		total += li.Quantity
	}
	return total
}

// TotalItemsAllRestaurants sums quantities over every subcart. The global
// cart badge uses this; it is deliberately a different aggregate from
// TotalItems.
func (c *Cart) TotalItemsAllRestaurants() int {
	total := 0
	for _, sub := range c.state {
		for _, li := range sub {
			total += li.Quantity
		}
	}
	return total
}

// ItemView is a normalized line item the way checkout and rendering want it:
// id, counts, prices, and the computed line total.
type ItemView struct {
	MenuItemID      string          `json:"menu_item_id"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"price"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	Name            string          `json:"name"`
	SpecialRequests string          `json:"special_requests"`
	RestaurantName  string          `json:"restaurant_name"`
}

// Items returns the active subcart's lines ordered by menu item id. Lines
// are reported as last known even when the catalog no longer has the item;
// validating against the live menu is the caller's concern.
func (c *Cart) Items() []ItemView {
	rid, ok := c.activeRestaurant()
	if !ok {
		return nil
	}

	sub := c.state[rid]
	views := make([]ItemView, 0, len(sub))
	for _, id := range sortedItemIDs(sub) {
		li := sub[id]
		views = append(views, ItemView{
			MenuItemID:      string(id),
			Quantity:        li.Quantity,
			UnitPrice:       li.UnitPrice,
			TotalPrice:      li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity))),
			Name:            li.Name,
			SpecialRequests: li.SpecialRequests,
			RestaurantName:  li.RestaurantName,
		})
	}
	return views
}

// RestaurantCart is one subcart rendered for the cart page: every line item
// plus the per-restaurant subtotal.
type RestaurantCart struct {
	RestaurantID   string          `json:"restaurant_id"`
	RestaurantName string          `json:"restaurant_name"`
	Items          []ItemView      `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

// Grouped returns every non-empty subcart with its items and subtotal,
// ordered by restaurant id, along with the grand total across restaurants.
// Unlike Items this ignores the active pointer: the cart page shows
// everything the visitor is holding.
func (c *Cart) Grouped() ([]RestaurantCart, decimal.Decimal) {
	rids := make([]RestaurantID, 0, len(c.state))
	for rid := range c.state {
		rids = append(rids, rid)
	}
	sort.Slice(rids, func(i, j int) bool { return rids[i] < rids[j] })

	grand := decimal.Zero
	groups := make([]RestaurantCart, 0, len(rids))
	for _, rid := range rids {
		sub := c.state[rid]
		if len(sub) == 0 {
			continue
		}

		group := RestaurantCart{RestaurantID: string(rid), Subtotal: decimal.Zero}
		for _, iid := range sortedItemIDs(sub) {
			li := sub[iid]
			lineTotal := li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
			group.Items = append(group.Items, ItemView{
				MenuItemID:      string(iid),
				Quantity:        li.Quantity,
				UnitPrice:       li.UnitPrice,
				TotalPrice:      lineTotal,
				Name:            li.Name,
				SpecialRequests: li.SpecialRequests,
				RestaurantName:  li.RestaurantName,
			})
			group.Subtotal = group.Subtotal.Add(lineTotal)
			if group.RestaurantName == "" {
				group.RestaurantName = li.RestaurantName
			}
		}
		groups = append(groups, group)
		grand = grand.Add(group.Subtotal)
	}
	return groups, grand
}

// RestaurantSummary is one non-empty subcart's badge line.
type RestaurantSummary struct {
	RestaurantID string `json:"id"`
	Name         string `json:"name"`
	Count        int    `json:"count"`
}

// Summary lists every non-empty subcart with its item count, ordered by
// restaurant id, plus the grand total across all of them.
func (c *Cart) Summary() ([]RestaurantSummary, int) {
	rids := make([]RestaurantID, 0, len(c.state))
	for rid := range c.state {
		rids = append(rids, rid)
	}
	sort.Slice(rids, func(i, j int) bool { return rids[i] < rids[j] })

	grand := 0
	summaries := make([]RestaurantSummary, 0, len(rids))
	for _, rid := range rids {
		sub := c.state[rid]
		if len(sub) == 0 {
			continue
		}
		count := 0
		name := ""
		for _, li := range sub {
			count += li.Quantity
			if name == "" {
				name = li.RestaurantName
			}
		}
		summaries = append(summaries, RestaurantSummary{
			RestaurantID: string(rid),
			Name:         name,
			Count:        count,
		})
		grand += count
	}
	return summaries, grand
}

func (c *Cart) activeRestaurant() (RestaurantID, bool) {
	var rid string
	if ok, err := c.sess.Get(SessionKeyActiveRestaurant, &rid); ok && err == nil && rid != "" {
		return RestaurantID(rid), true
	}
	if len(c.state) == 1 {
		for only := range c.state {
			return only, true
		}
	}
	return "", false
}

func (c *Cart) setActive(rid RestaurantID) {
	_ = c.sess.Set(SessionKeyActiveRestaurant, string(rid))
}

func (c *Cart) clearActiveIf(rid RestaurantID) {
	var current string
	if ok, err := c.sess.Get(SessionKeyActiveRestaurant, &current); ok && err == nil && current == string(rid) {
		c.sess.Delete(SessionKeyActiveRestaurant)
	}
}

func (c *Cart) save() {
	_ = c.sess.Set(SessionKeyCart, c.state)
}

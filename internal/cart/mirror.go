package cart

import (
	"context"

	"go.uber.org/zap"
)

// SavedCartRepository is the storage side of the mirror: one saved cart per
// (customer, restaurant), rebuilt wholesale on every sync.
type SavedCartRepository interface {
	Rebuild(ctx context.Context, customerID, restaurantID string, sub SubCart) error
	Delete(ctx context.Context, customerID, restaurantID string) error
	DeleteAllForCustomer(ctx context.Context, customerID string) error
}

// Bridge mirrors session subcarts into the database for administrator
// visibility. The session stays the single source of truth: every repository
// error is logged and swallowed so the user-facing mutation that triggered
// the sync always succeeds, and anonymous visitors are skipped entirely.
type Bridge struct {
	repo   SavedCartRepository
	logger *zap.Logger
}

func NewBridge(repo SavedCartRepository, logger *zap.Logger) *Bridge {
	return &Bridge{repo: repo, logger: logger}
}

func (b *Bridge) Sync(ctx context.Context, customerID string, restaurantID RestaurantID, sub SubCart) {
	if customerID == "" {
		return
	}
	if err := b.repo.Rebuild(ctx, customerID, string(restaurantID), sub); err != nil {
		b.logger.Error("cart mirror sync",
			zap.String("customer_id", customerID),
			zap.String("restaurant_id", string(restaurantID)),
			zap.Error(err))
	}
}

func (b *Bridge) Delete(ctx context.Context, customerID string, restaurantID RestaurantID) {
	if customerID == "" {
		return
	}
	if err := b.repo.Delete(ctx, customerID, string(restaurantID)); err != nil {
		b.logger.Error("cart mirror delete",
			zap.String("customer_id", customerID),
			zap.String("restaurant_id", string(restaurantID)),
			zap.Error(err))
	}
}

func (b *Bridge) DeleteAll(ctx context.Context, customerID string) {
	if customerID == "" {
		return
	}
	if err := b.repo.DeleteAllForCustomer(ctx, customerID); err != nil {
		b.logger.Error("cart mirror delete all",
			zap.String("customer_id", customerID),
			zap.Error(err))
	}
}

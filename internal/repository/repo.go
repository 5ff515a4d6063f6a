package repository

import (
	"context"

	"foodbot/internal/domain"
)

// Orders is the persistence collaborator for order finalization and
// status lookup.
type Orders interface {
	// Begin opens the atomic unit covering all writes of one finalization.
	Begin(ctx context.Context) (Tx, error)
	// FindOrderTracking reads the tracking row for an order id.
	FindOrderTracking(ctx context.Context, orderID int) (domain.OrderTracking, bool, error)
}

// Tx stages the writes of a single finalization. Either Commit or Rollback
// must be called; Rollback after Commit is a no-op.
type Tx interface {
	// FindFoodItemByName looks a menu item up by name, case-insensitively.
	FindFoodItemByName(ctx context.Context, name string) (domain.FoodItem, bool, error)
	// NextOrderID returns max existing order id + 1. The read is serialized
	// against concurrent finalizations for the duration of the transaction.
	NextOrderID(ctx context.Context) (int, error)
	// UpsertOrderLine inserts the line or accumulates quantity and total
	// price onto the existing (order_id, item_id) row.
	UpsertOrderLine(ctx context.Context, line domain.OrderLine) error
	InsertOrderTracking(ctx context.Context, orderID int, status string) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

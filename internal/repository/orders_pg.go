package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"foodbot/internal/domain"
)

// orderIDLockKey is the advisory lock key serializing order-id assignment.
// Taking it for the transaction makes the max+1 read safe without
// serializable isolation.
const orderIDLockKey = 792001

type ordersPG struct {
	pool *pgxpool.Pool
}

func NewOrdersPG(pool *pgxpool.Pool) Orders { return &ordersPG{pool: pool} }

func (o *ordersPG) Begin(ctx context.Context) (Tx, error) {
	tx, err := o.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &orderTx{tx: tx}, nil
}

func (o *ordersPG) FindOrderTracking(ctx context.Context, orderID int) (domain.OrderTracking, bool, error) {
	var t domain.OrderTracking
	err := o.pool.QueryRow(ctx, `
		SELECT order_id, status FROM order_tracking WHERE order_id = $1
	`, orderID).Scan(&t.OrderID, &t.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.OrderTracking{}, false, nil
	}
	if err != nil {
		return domain.OrderTracking{}, false, fmt.Errorf("failed to query order tracking: %w", err)
	}
	return t, true, nil
}

type orderTx struct {
	tx pgx.Tx
}

func (t *orderTx) FindFoodItemByName(ctx context.Context, name string) (domain.FoodItem, bool, error) {
	var fi domain.FoodItem
	err := t.tx.QueryRow(ctx, `
		SELECT item_id, name, price FROM food_items WHERE LOWER(name) = LOWER($1)
	`, name).Scan(&fi.ItemID, &fi.Name, &fi.Price)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.FoodItem{}, false, nil
	}
	if err != nil {
		return domain.FoodItem{}, false, fmt.Errorf("failed to query food item: %w", err)
	}
	return fi, true, nil
}

func (t *orderTx) NextOrderID(ctx context.Context) (int, error) {
	if _, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, orderIDLockKey); err != nil {
		return 0, fmt.Errorf("failed to take order id lock: %w", err)
	}
	var next int
	err := t.tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(order_id), 0) + 1 FROM order_lines
	`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to compute next order id: %w", err)
	}
	return next, nil
}

func (t *orderTx) UpsertOrderLine(ctx context.Context, line domain.OrderLine) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO order_lines (order_id, item_id, quantity, total_price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (order_id, item_id) DO UPDATE SET
		  quantity    = order_lines.quantity + EXCLUDED.quantity,
		  total_price = order_lines.total_price + EXCLUDED.total_price
	`, line.OrderID, line.ItemID, line.Quantity, line.TotalPrice)
	if err != nil {
		return fmt.Errorf("failed to upsert order line: %w", err)
	}
	return nil
}

func (t *orderTx) InsertOrderTracking(ctx context.Context, orderID int, status string) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO order_tracking (order_id, status) VALUES ($1, $2)
	`, orderID, status)
	if err != nil {
		return fmt.Errorf("failed to insert order tracking: %w", err)
	}
	return nil
}

func (t *orderTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (t *orderTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"foodbot/internal/cart"
	"foodbot/internal/domain"
	"foodbot/internal/logger"
	"foodbot/internal/repository"
)

// EventPublisher announces finalized orders to downstream fulfillment
// consumers.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, ev domain.OrderPlacedEvent) error
}

// OrderService implements the order-session use-cases: add and remove cart
// items, finalize the cart into persistent storage, and look an order's
// status up. Success paths return the user-facing phrase; failures return
// a taxonomy error the webhook boundary turns into a phrase.
type OrderService struct {
	store  *cart.Store
	repo   repository.Orders
	events EventPublisher
	lg     *logger.Logger
}

func New(store *cart.Store, repo repository.Orders, events EventPublisher, lg *logger.Logger) *OrderService {
	return &OrderService{store: store, repo: repo, events: events, lg: lg}
}

// AddItems applies the add intent: zips items with quantities and
// accumulates them onto the session's cart. All pairs are validated before
// any mutation, so an invalid quantity never half-applies.
func (s *OrderService) AddItems(ctx context.Context, sessionID string, items []string, quantities []any) (string, error) {
	pairs, err := zipPairs(items, quantities)
	if err != nil {
		return "", err
	}

	release := s.store.LockSession(sessionID)
	defer release()

	if len(pairs) == 0 {
		if c, ok := s.store.Cart(sessionID); ok {
			return fmt.Sprintf("So far you have %s. Do you need anything else?", cart.FormatSummary(c.Lines())), nil
		}
		return "You haven't added anything yet. What would you like to order?", nil
	}

	c := s.store.GetOrCreate(sessionID)
	for _, p := range pairs {
		c.Add(p.Item, p.Quantity)
	}
	s.lg.Debug("cart_updated", map[string]any{"session_id": sessionID, "items": c.Len()})

	return fmt.Sprintf("So far you have %s. Do you need anything else?", cart.FormatSummary(c.Lines())), nil
}

// RemoveItems applies the remove intent. Items absent from the cart are
// skipped silently and do not appear in the confirmation; a cart drained to
// empty is dropped from the store.
func (s *OrderService) RemoveItems(ctx context.Context, sessionID string, items []string, quantities []any) (string, error) {
	pairs, err := zipPairs(items, quantities)
	if err != nil {
		return "", err
	}

	release := s.store.LockSession(sessionID)
	defer release()

	c, ok := s.store.Cart(sessionID)
	if !ok {
		return "", domain.ErrNoActiveOrder
	}

	var removed []string
	for _, p := range pairs {
		if c.Remove(p.Item, p.Quantity) {
			removed = append(removed, fmt.Sprintf("%d %s", p.Quantity, p.Item))
		}
	}

	if c.Len() == 0 {
		s.store.Drop(sessionID)
		return "Your cart is now empty. What would you like to order?", nil
	}

	summary := cart.FormatSummary(c.Lines())
	if len(removed) == 0 {
		return fmt.Sprintf("Those items aren't in your cart. You still have %s.", summary), nil
	}
	return fmt.Sprintf("Removed %s. You still have %s.", strings.Join(removed, ", "), summary), nil
}

// Finish drains the session's cart into durable order rows plus a tracking
// record, all inside one transaction. Any failure leaves the cart intact
// for retry; success drops it.
func (s *OrderService) Finish(ctx context.Context, sessionID string) (string, error) {
	release := s.store.LockSession(sessionID)
	defer release()

	c, ok := s.store.Cart(sessionID)
	if !ok {
		return "", domain.ErrNoActiveOrder
	}
	lines := c.Lines()

	orderID, total, err := s.finalize(ctx, lines)
	if err != nil {
		return "", err
	}

	s.store.Drop(sessionID)
	s.lg.Info("order_placed", map[string]any{"session_id": sessionID, "order_id": orderID, "total": total})

	s.publishPlaced(ctx, orderID, total, lines)

	return fmt.Sprintf("Your order has been placed successfully. Your order ID is %d. Total: ₹%.2f", orderID, total), nil
}

func (s *OrderService) finalize(ctx context.Context, lines []cart.Line) (orderID int, total float64, err error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return 0, 0, &domain.PersistenceError{Err: err}
	}
	defer tx.Rollback(ctx)

	orderID, err = tx.NextOrderID(ctx)
	if err != nil {
		return 0, 0, &domain.PersistenceError{Err: err}
	}

	for _, l := range lines {
		fi, found, err := tx.FindFoodItemByName(ctx, l.Item)
		if err != nil {
			return 0, 0, &domain.PersistenceError{Err: err}
		}
		if !found {
			return 0, 0, &domain.UnknownItemError{Item: l.Item}
		}
		lineTotal := fi.Price * float64(l.Quantity)
		total += lineTotal
		err = tx.UpsertOrderLine(ctx, domain.OrderLine{
			OrderID:    orderID,
			ItemID:     fi.ItemID,
			Quantity:   l.Quantity,
			TotalPrice: lineTotal,
		})
		if err != nil {
			return 0, 0, &domain.PersistenceError{Err: err}
		}
	}

	if err := tx.InsertOrderTracking(ctx, orderID, domain.StatusInTransit); err != nil {
		return 0, 0, &domain.PersistenceError{Err: err}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, 0, &domain.PersistenceError{Err: err}
	}
	return orderID, total, nil
}

// publishPlaced runs after commit; the order is already durable, so a
// broker failure is logged, never surfaced to the user.
func (s *OrderService) publishPlaced(ctx context.Context, orderID int, total float64, lines []cart.Line) {
	ev := domain.OrderPlacedEvent{
		OrderID:     orderID,
		TotalAmount: total,
		Status:      domain.StatusInTransit,
	}
	for _, l := range lines {
		ev.Items = append(ev.Items, domain.OrderPlacedItem{Name: l.Item, Quantity: l.Quantity})
	}
	if err := s.events.PublishOrderPlaced(ctx, ev); err != nil {
		s.lg.Error("publish_order_placed", err, map[string]any{"order_id": orderID})
	}
}

// Status looks a finalized order's tracking status up.
func (s *OrderService) Status(ctx context.Context, orderID int) (string, error) {
	t, found, err := s.repo.FindOrderTracking(ctx, orderID)
	if err != nil {
		return "", &domain.PersistenceError{Err: err}
	}
	if !found {
		return "", domain.ErrOrderNotFound
	}
	return fmt.Sprintf("Your order %d is currently %s.", t.OrderID, t.Status), nil
}

type pair struct {
	Item     string
	Quantity int
}

// zipPairs aligns items with quantities positionally, validating every
// quantity up front. Item names are normalized to lower case so a cart
// cannot hold two entries resolving to the same menu item.
func zipPairs(items []string, quantities []any) ([]pair, error) {
	n := len(items)
	if len(quantities) < n {
		n = len(quantities)
	}
	pairs := make([]pair, 0, n)
	for i := 0; i < n; i++ {
		qty, err := domain.ParseQuantity(quantities[i])
		if err != nil {
			return nil, err
		}
		name := strings.ToLower(strings.TrimSpace(items[i]))
		if name == "" {
			continue
		}
		pairs = append(pairs, pair{Item: name, Quantity: qty})
	}
	return pairs, nil
}

package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodbot/internal/cart"
	"foodbot/internal/domain"
	"foodbot/internal/logger"
	"foodbot/internal/repository"
)

// fakeDB implements repository.Orders in memory. Begin holds the store
// mutex until Commit or Rollback, mirroring how the advisory lock
// serializes real finalizations.
type fakeDB struct {
	mu         sync.Mutex
	menu       []domain.FoodItem
	lines      map[[2]int]domain.OrderLine
	tracking   map[int]domain.OrderTracking
	failCommit bool
}

func newFakeDB(menu ...domain.FoodItem) *fakeDB {
	return &fakeDB{
		menu:     menu,
		lines:    make(map[[2]int]domain.OrderLine),
		tracking: make(map[int]domain.OrderTracking),
	}
}

func (f *fakeDB) Begin(ctx context.Context) (repository.Tx, error) {
	f.mu.Lock()
	return &fakeTx{
		db:       f,
		lines:    make(map[[2]int]domain.OrderLine),
		tracking: make(map[int]domain.OrderTracking),
	}, nil
}

func (f *fakeDB) FindOrderTracking(ctx context.Context, orderID int) (domain.OrderTracking, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tracking[orderID]
	return t, ok, nil
}

type fakeTx struct {
	db       *fakeDB
	lines    map[[2]int]domain.OrderLine
	tracking map[int]domain.OrderTracking
	done     bool
}

func (t *fakeTx) FindFoodItemByName(ctx context.Context, name string) (domain.FoodItem, bool, error) {
	for _, fi := range t.db.menu {
		if strings.EqualFold(fi.Name, name) {
			return fi, true, nil
		}
	}
	return domain.FoodItem{}, false, nil
}

func (t *fakeTx) NextOrderID(ctx context.Context) (int, error) {
	max := 0
	for key := range t.db.lines {
		if key[0] > max {
			max = key[0]
		}
	}
	for id := range t.db.tracking {
		if id > max {
			max = id
		}
	}
	return max + 1, nil
}

func (t *fakeTx) UpsertOrderLine(ctx context.Context, line domain.OrderLine) error {
	key := [2]int{line.OrderID, line.ItemID}
	cur, ok := t.lines[key]
	if !ok {
		cur, ok = t.db.lines[key]
	}
	if ok {
		cur.Quantity += line.Quantity
		cur.TotalPrice += line.TotalPrice
		t.lines[key] = cur
		return nil
	}
	t.lines[key] = line
	return nil
}

func (t *fakeTx) InsertOrderTracking(ctx context.Context, orderID int, status string) error {
	t.tracking[orderID] = domain.OrderTracking{OrderID: orderID, Status: status}
	return nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	if t.db.failCommit {
		t.finish()
		return errors.New("connection reset during commit")
	}
	for k, v := range t.lines {
		t.db.lines[k] = v
	}
	for k, v := range t.tracking {
		t.db.tracking[k] = v
	}
	t.finish()
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.done {
		t.finish()
	}
	return nil
}

func (t *fakeTx) finish() {
	t.done = true
	t.db.mu.Unlock()
}

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.OrderPlacedEvent
	err    error
}

func (p *fakePublisher) PublishOrderPlaced(ctx context.Context, ev domain.OrderPlacedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func menuFixture() []domain.FoodItem {
	return []domain.FoodItem{
		{ItemID: 1, Name: "Pizza", Price: 250.00},
		{ItemID: 2, Name: "Samosa", Price: 25.00},
		{ItemID: 3, Name: "Mango Lassi", Price: 60.00},
	}
}

func newTestService(db *fakeDB, pub *fakePublisher) (*OrderService, *cart.Store) {
	store := cart.NewStore()
	return New(store, db, pub, logger.New("order-service-test")), store
}

func TestAddItemsAccumulates(t *testing.T) {
	svc, store := newTestService(newFakeDB(menuFixture()...), &fakePublisher{})
	ctx := context.Background()

	text, err := svc.AddItems(ctx, "s1", []string{"Pizza"}, []any{float64(2)})
	require.NoError(t, err)
	assert.Equal(t, "So far you have 2 pizza. Do you need anything else?", text)

	text, err = svc.AddItems(ctx, "s1", []string{"pizza", "Samosa"}, []any{float64(3), float64(1)})
	require.NoError(t, err)
	assert.Equal(t, "So far you have 5 pizza and 1 samosa. Do you need anything else?", text)

	c, ok := store.Cart("s1")
	require.True(t, ok)
	assert.Equal(t, 5, c.Quantity("pizza"))
	assert.Equal(t, 1, c.Quantity("samosa"))
}

func TestAddItemsNoPairs(t *testing.T) {
	svc, store := newTestService(newFakeDB(menuFixture()...), &fakePublisher{})

	text, err := svc.AddItems(context.Background(), "s1", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "You haven't added anything yet. What would you like to order?", text)
	assert.Equal(t, 0, store.Sessions())
}

func TestAddItemsInvalidQuantityLeavesCartUntouched(t *testing.T) {
	svc, store := newTestService(newFakeDB(menuFixture()...), &fakePublisher{})
	ctx := context.Background()

	_, err := svc.AddItems(ctx, "s1", []string{"Pizza"}, []any{float64(2)})
	require.NoError(t, err)

	_, err = svc.AddItems(ctx, "s1", []string{"Samosa", "Pizza"}, []any{"two", float64(1)})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	c, ok := store.Cart("s1")
	require.True(t, ok)
	assert.Equal(t, 2, c.Quantity("pizza"))
	assert.Equal(t, 0, c.Quantity("samosa"))
}

func TestRemoveItems(t *testing.T) {
	svc, store := newTestService(newFakeDB(menuFixture()...), &fakePublisher{})
	ctx := context.Background()

	_, err := svc.AddItems(ctx, "s1", []string{"Pizza", "Samosa"}, []any{float64(3), float64(2)})
	require.NoError(t, err)

	text, err := svc.RemoveItems(ctx, "s1", []string{"Pizza", "Biryani"}, []any{float64(1), float64(1)})
	require.NoError(t, err)
	assert.Equal(t, "Removed 1 pizza. You still have 2 pizza and 2 samosa.", text)

	c, _ := store.Cart("s1")
	assert.Equal(t, 2, c.Quantity("pizza"))
}

func TestRemoveItemsDrainsCart(t *testing.T) {
	svc, store := newTestService(newFakeDB(menuFixture()...), &fakePublisher{})
	ctx := context.Background()

	_, err := svc.AddItems(ctx, "s1", []string{"Pizza"}, []any{float64(2)})
	require.NoError(t, err)

	text, err := svc.RemoveItems(ctx, "s1", []string{"Pizza"}, []any{float64(5)})
	require.NoError(t, err)
	assert.Equal(t, "Your cart is now empty. What would you like to order?", text)
	assert.Equal(t, 0, store.Sessions())
}

func TestRemoveItemsNoCart(t *testing.T) {
	svc, _ := newTestService(newFakeDB(menuFixture()...), &fakePublisher{})

	_, err := svc.RemoveItems(context.Background(), "s1", []string{"Pizza"}, []any{float64(1)})
	assert.ErrorIs(t, err, domain.ErrNoActiveOrder)
}

func TestRemoveItemsNoneMatched(t *testing.T) {
	svc, _ := newTestService(newFakeDB(menuFixture()...), &fakePublisher{})
	ctx := context.Background()

	_, err := svc.AddItems(ctx, "s1", []string{"Pizza"}, []any{float64(2)})
	require.NoError(t, err)

	text, err := svc.RemoveItems(ctx, "s1", []string{"Biryani"}, []any{float64(1)})
	require.NoError(t, err)
	assert.Equal(t, "Those items aren't in your cart. You still have 2 pizza.", text)
}

func TestFinishPersistsOrder(t *testing.T) {
	db := newFakeDB(menuFixture()...)
	db.lines[[2]int{41, 2}] = domain.OrderLine{OrderID: 41, ItemID: 2, Quantity: 1, TotalPrice: 25}
	db.tracking[41] = domain.OrderTracking{OrderID: 41, Status: "delivered"}

	pub := &fakePublisher{}
	svc, store := newTestService(db, pub)
	ctx := context.Background()

	_, err := svc.AddItems(ctx, "s1", []string{"Pizza"}, []any{float64(2)})
	require.NoError(t, err)

	text, err := svc.Finish(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Your order has been placed successfully. Your order ID is 42. Total: ₹500.00", text)

	line, ok := db.lines[[2]int{42, 1}]
	require.True(t, ok)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, 500.00, line.TotalPrice)

	track, ok := db.tracking[42]
	require.True(t, ok)
	assert.Equal(t, domain.StatusInTransit, track.Status)

	_, ok = store.Cart("s1")
	assert.False(t, ok, "cart must be dropped after successful finalization")

	require.Len(t, pub.events, 1)
	assert.Equal(t, 42, pub.events[0].OrderID)
	assert.Equal(t, 500.00, pub.events[0].TotalAmount)
}

func TestFinishUnknownItemCommitsNothing(t *testing.T) {
	db := newFakeDB(menuFixture()...)
	pub := &fakePublisher{}
	svc, store := newTestService(db, pub)
	ctx := context.Background()

	_, err := svc.AddItems(ctx, "s1", []string{"Pizza", "unicorn-steak"}, []any{float64(2), float64(1)})
	require.NoError(t, err)

	_, err = svc.Finish(ctx, "s1")
	var unknown *domain.UnknownItemError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "unicorn-steak", unknown.Item)

	assert.Empty(t, db.lines)
	assert.Empty(t, db.tracking)
	assert.Empty(t, pub.events)

	c, ok := store.Cart("s1")
	require.True(t, ok, "cart must survive a failed finalization")
	assert.Equal(t, 2, c.Quantity("pizza"))
}

func TestFinishCommitFailureKeepsCart(t *testing.T) {
	db := newFakeDB(menuFixture()...)
	db.failCommit = true
	pub := &fakePublisher{}
	svc, store := newTestService(db, pub)
	ctx := context.Background()

	_, err := svc.AddItems(ctx, "s1", []string{"Pizza"}, []any{float64(1)})
	require.NoError(t, err)

	_, err = svc.Finish(ctx, "s1")
	var pe *domain.PersistenceError
	require.ErrorAs(t, err, &pe)

	assert.Empty(t, db.lines)
	assert.Empty(t, pub.events)
	_, ok := store.Cart("s1")
	assert.True(t, ok)
}

func TestFinishNoActiveOrder(t *testing.T) {
	svc, _ := newTestService(newFakeDB(menuFixture()...), &fakePublisher{})

	_, err := svc.Finish(context.Background(), "s1")
	assert.ErrorIs(t, err, domain.ErrNoActiveOrder)
}

func TestFinishPublishFailureStillSucceeds(t *testing.T) {
	db := newFakeDB(menuFixture()...)
	pub := &fakePublisher{err: errors.New("broker down")}
	svc, store := newTestService(db, pub)
	ctx := context.Background()

	_, err := svc.AddItems(ctx, "s1", []string{"Pizza"}, []any{float64(1)})
	require.NoError(t, err)

	text, err := svc.Finish(ctx, "s1")
	require.NoError(t, err)
	assert.Contains(t, text, "Your order has been placed successfully")

	_, ok := store.Cart("s1")
	assert.False(t, ok)
}

func TestConcurrentFinalizationsGetDistinctIDs(t *testing.T) {
	db := newFakeDB(menuFixture()...)
	svc, _ := newTestService(db, &fakePublisher{})
	ctx := context.Background()

	sessions := []string{"s1", "s2", "s3", "s4"}
	for _, id := range sessions {
		_, err := svc.AddItems(ctx, id, []string{"Pizza"}, []any{float64(1)})
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for _, id := range sessions {
		wg.Add(1)
		go func(session string) {
			defer wg.Done()
			_, err := svc.Finish(ctx, session)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	assert.Len(t, db.tracking, len(sessions))
	for id := 1; id <= len(sessions); id++ {
		_, ok := db.tracking[id]
		assert.True(t, ok, "expected order id %d to be assigned", id)
	}
}

func TestStatus(t *testing.T) {
	db := newFakeDB(menuFixture()...)
	db.tracking[42] = domain.OrderTracking{OrderID: 42, Status: "in transit"}
	svc, _ := newTestService(db, &fakePublisher{})
	ctx := context.Background()

	text, err := svc.Status(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "Your order 42 is currently in transit.", text)

	_, err = svc.Status(ctx, 999999)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	assert.Len(t, db.tracking, 1)
}

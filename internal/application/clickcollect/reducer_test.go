package clickcollect

import (
	"errors"
	"testing"
	"time"

	"github.com/Nassimghoulane/Dionos-1/internal/domain/catalog"
	"github.com/Nassimghoulane/Dionos-1/internal/domain/shared"
	"github.com/Nassimghoulane/Dionos-1/internal/domain/shopping"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedState(t *testing.T) State {
	t.Helper()
	c, err := catalog.NewCatalog(testStores())
	require.NoError(t, err)
	s, err := Reduce(InitialState(), SetStores{Catalog: c})
	require.NoError(t, err)
	return s
}

func pendingOrder(t *testing.T, code string) shopping.Order {
	t.Helper()
	o, err := shopping.NewOrder(shopping.NewOrderParams{
		ID:         uuid.New(),
		Items:      []shopping.LineItem{{Product: testProduct("store-1", "Food Corner", "prod-1", "8.90", 10, true), Quantity: 1}},
		Customer:   checkout().Customer,
		PickupCode: code,
		CreatedAt:  sessionStart,
	})
	require.NoError(t, err)
	return o
}

func mustReduce(t *testing.T, s State, actions ...Action) State {
	t.Helper()
	for _, a := range actions {
		var err error
		s, err = Reduce(s, a)
		require.NoError(t, err, a.ActionType())
	}
	return s
}

func TestReduce_SetStoresNilInstallsEmptyCatalog(t *testing.T) {
	s := mustReduce(t, loadedState(t), SetStores{})
	require.NotNil(t, s.Catalog)
	assert.Zero(t, s.Catalog.Len())
}

func TestReduce_CartActionsDoNotTouchPreviousState(t *testing.T) {
	s0 := loadedState(t)
	burger, _ := s0.Catalog.ProductByID("prod-1")

	s1 := mustReduce(t, s0, AddToCart{Product: burger})
	s2 := mustReduce(t, s1, UpdateCartQuantity{ProductID: "prod-1", Quantity: 4})
	s3 := mustReduce(t, s2, RemoveFromCart{ProductID: "prod-1"})

	assert.True(t, s0.Cart.IsEmpty())
	assert.Equal(t, 1, s1.CartItemCount())
	assert.Equal(t, 4, s2.CartItemCount())
	assert.True(t, s3.Cart.IsEmpty())
}

func TestReduce_SelectionAndToggles(t *testing.T) {
	s := loadedState(t)
	store, _ := s.StoreByID("store-1")

	s = mustReduce(t, s, SetSelectedStore{Store: &store}, SetCartOpen{Open: true}, SetCheckoutOpen{Open: true})
	require.NotNil(t, s.SelectedStore)
	assert.Equal(t, "store-1", s.SelectedStore.ID)
	assert.True(t, s.CartOpen)
	assert.True(t, s.CheckoutOpen)

	store.Name = "changed"
	assert.Equal(t, "Food Corner", s.SelectedStore.Name)

	s = mustReduce(t, s, SetSelectedStore{})
	assert.Nil(t, s.SelectedStore)
}

func TestReduce_AddOrder(t *testing.T) {
	s := loadedState(t)
	burger, _ := s.Catalog.ProductByID("prod-1")
	s = mustReduce(t, s, AddToCart{Product: burger}, SetCartOpen{Open: true}, SetCheckoutOpen{Open: true})

	order := pendingOrder(t, "AB12CD")
	next := mustReduce(t, s, AddOrder{Order: order})

	assert.Equal(t, 1, next.Orders.Len())
	require.NotNil(t, next.CurrentOrderID)
	assert.Equal(t, order.ID, *next.CurrentOrderID)
	assert.True(t, next.Cart.IsEmpty())
	assert.False(t, next.CartOpen)
	assert.False(t, next.CheckoutOpen)

	assert.Equal(t, 1, s.Cart.Len())
	assert.Zero(t, s.Orders.Len())
}

func TestReduce_AddOrderRejections(t *testing.T) {
	s := loadedState(t)

	empty := pendingOrder(t, "AB12CD")
	empty.Items = nil
	_, err := Reduce(s, AddOrder{Order: empty})
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	confirmed := pendingOrder(t, "AB12CD")
	confirmed.Status = shopping.OrderStatusConfirmed
	_, err = Reduce(s, AddOrder{Order: confirmed})
	assert.True(t, errors.Is(err, shared.ErrInvalidState))

	existing := pendingOrder(t, "AB12CD")
	s = mustReduce(t, s, AddOrder{Order: existing})
	got, err := Reduce(s, AddOrder{Order: existing})
	assert.True(t, errors.Is(err, shared.ErrAlreadyExists))
	assert.Equal(t, 1, got.Orders.Len())

	_, err = Reduce(s, AddOrder{Order: pendingOrder(t, "AB12CD")})
	assert.True(t, errors.Is(err, shared.ErrAlreadyExists), "active pickup code reused")
}

func TestReduce_UpdateOrderStatus(t *testing.T) {
	order := pendingOrder(t, "AB12CD")
	s := mustReduce(t, loadedState(t), AddOrder{Order: order})
	at := sessionStart.Add(2 * time.Second)

	next := mustReduce(t, s, UpdateOrderStatus{OrderID: order.ID, Status: shopping.OrderStatusConfirmed, At: at})
	updated, _ := next.Orders.Find(order.ID)
	assert.Equal(t, shopping.OrderStatusConfirmed, updated.Status)
	assert.Equal(t, at, updated.UpdatedAt)

	current, ok := next.CurrentOrder()
	require.True(t, ok)
	assert.Equal(t, shopping.OrderStatusConfirmed, current.Status)

	before, _ := s.Orders.Find(order.ID)
	assert.Equal(t, shopping.OrderStatusPending, before.Status)

	_, err := Reduce(s, UpdateOrderStatus{OrderID: uuid.New(), Status: shopping.OrderStatusReady, At: at})
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestReduce_CancelOrder(t *testing.T) {
	order := pendingOrder(t, "AB12CD")
	s := mustReduce(t, loadedState(t), AddOrder{Order: order})

	cancelled := mustReduce(t, s, CancelOrder{OrderID: order.ID, At: sessionStart})
	o, _ := cancelled.Orders.Find(order.ID)
	assert.Equal(t, shopping.OrderStatusCancelled, o.Status)

	preparing := mustReduce(t, s, UpdateOrderStatus{OrderID: order.ID, Status: shopping.OrderStatusPreparing, At: sessionStart})
	got, err := Reduce(preparing, CancelOrder{OrderID: order.ID, At: sessionStart})
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
	o, _ = got.Orders.Find(order.ID)
	assert.Equal(t, shopping.OrderStatusPreparing, o.Status)

	_, err = Reduce(s, CancelOrder{OrderID: uuid.New(), At: sessionStart})
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestReduce_RestoreOrdersSkipsKnownIDs(t *testing.T) {
	a := pendingOrder(t, "AAAAAA")
	b := pendingOrder(t, "BBBBBB")
	s := mustReduce(t, loadedState(t), AddOrder{Order: a})

	s = mustReduce(t, s, RestoreOrders{Orders: []shopping.Order{a, b}})
	assert.Equal(t, 2, s.Orders.Len())
	require.NotNil(t, s.CurrentOrderID)
	assert.Equal(t, a.ID, *s.CurrentOrderID)
}

func TestEventsFor(t *testing.T) {
	order := pendingOrder(t, "AB12CD")
	s0 := loadedState(t)
	s1 := mustReduce(t, s0, AddOrder{Order: order})

	placed := eventsFor(s0, s1, AddOrder{Order: order})
	require.Len(t, placed, 1)
	assert.Equal(t, shopping.EventTypeOrderPlaced, placed[0].EventType())
	assert.Equal(t, order.ID, placed[0].AggregateID())

	cancel := CancelOrder{OrderID: order.ID, At: sessionStart.Add(time.Second)}
	s2 := mustReduce(t, s1, cancel)
	events := eventsFor(s1, s2, cancel)
	require.Len(t, events, 2)
	changed, ok := events[0].(*shopping.OrderStatusChangedEvent)
	require.True(t, ok)
	assert.Equal(t, shopping.OrderStatusPending, changed.FromStatus)
	assert.Equal(t, shopping.OrderStatusCancelled, changed.ToStatus)
	assert.Equal(t, sessionStart.Add(time.Second), changed.OccurredAt())
	assert.Equal(t, shopping.EventTypeOrderCancelled, events[1].EventType())

	assert.Empty(t, eventsFor(s1, s1, SetCartOpen{Open: true}))
}

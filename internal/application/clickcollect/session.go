package clickcollect

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Nassimghoulane/Dionos-1/internal/domain/catalog"
	"github.com/Nassimghoulane/Dionos-1/internal/domain/shared"
	"github.com/Nassimghoulane/Dionos-1/internal/domain/shopping"
	"github.com/Nassimghoulane/Dionos-1/internal/infrastructure/scheduler"
	"github.com/Nassimghoulane/Dionos-1/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	maxPickupCodeAttempts = 16
	defaultReservationTTL = 24 * time.Hour
)

// ErrSessionClosed is returned by every mutation after Close
var ErrSessionClosed = shared.NewDomainError("INVALID_STATE", "Shopping session is closed")

// TransitionScheduler queues delayed status changes. *scheduler.Scheduler
// implements it.
type TransitionScheduler interface {
	Clock() scheduler.Clock
	SetHandler(fire scheduler.FireFunc)
	Schedule(t scheduler.Transition) error
	CancelOrder(orderID uuid.UUID) int
	Stop(ctx context.Context) error
}

// Listener is notified with the new state after every successful dispatch.
// Listeners run synchronously and must not call back into the Session.
type Listener func(State)

// CheckoutInput is what the checkout form submits. The caller has already
// validated the name and phone format.
type CheckoutInput struct {
	StoreID             *string
	Customer            shopping.CustomerInfo
	SpecialInstructions *string
}

// Session owns the state of one shopping session and is the only place it
// changes. It is created by the composition root and handed to whoever
// needs it; there is no global instance.
type Session struct {
	mu        sync.Mutex
	publishMu sync.Mutex
	state     State
	listeners map[int]Listener
	nextID    int
	closed    bool

	clock          scheduler.Clock
	timers         TransitionScheduler
	publisher      shared.EventPublisher
	codes          shopping.PickupCodeGenerator
	registry       shopping.PickupCodeRegistry
	reservationTTL time.Duration
	newID          func() uuid.UUID
	policy         ProgressionPolicy
	logger         *zap.Logger
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithScheduler sets the transition scheduler; its clock becomes the
// session's clock
func WithScheduler(timers TransitionScheduler) SessionOption {
	return func(s *Session) {
		s.timers = timers
	}
}

// WithEventPublisher sets where order events go
func WithEventPublisher(publisher shared.EventPublisher) SessionOption {
	return func(s *Session) {
		s.publisher = publisher
	}
}

// WithPickupCodeGenerator replaces the random pickup code source
func WithPickupCodeGenerator(codes shopping.PickupCodeGenerator) SessionOption {
	return func(s *Session) {
		s.codes = codes
	}
}

// WithPickupCodeRegistry reserves issued codes in a shared registry
func WithPickupCodeRegistry(registry shopping.PickupCodeRegistry, ttl time.Duration) SessionOption {
	return func(s *Session) {
		s.registry = registry
		if ttl > 0 {
			s.reservationTTL = ttl
		}
	}
}

// WithIDGenerator replaces uuid.New for order ids
func WithIDGenerator(newID func() uuid.UUID) SessionOption {
	return func(s *Session) {
		s.newID = newID
	}
}

// WithProgressionPolicy sets the automatic status delays
func WithProgressionPolicy(policy ProgressionPolicy) SessionOption {
	return func(s *Session) {
		s.policy = policy
	}
}

// WithLogger sets the session logger
func WithLogger(logger *zap.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession creates a session with an empty catalog. Without
// WithScheduler it runs its own wall-clock scheduler, started here; an
// injected scheduler is started by the caller.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		state:          InitialState(),
		listeners:      make(map[int]Listener),
		publisher:      shared.NopPublisher{},
		codes:          shopping.RandomPickupCodeGenerator{},
		reservationTTL: defaultReservationTTL,
		newID:          uuid.New,
		policy:         DefaultProgressionPolicy(),
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("clickcollect")
	var own *scheduler.Scheduler
	if s.timers == nil {
		own = scheduler.New(scheduler.SystemClock{}, s.logger)
		s.timers = own
	}
	s.clock = s.timers.Clock()
	s.timers.SetHandler(s.applyScheduled)
	if own != nil {
		// a fresh scheduler cannot fail to start; Close stops it
		_ = own.Start(context.Background())
	}
	return s
}

// ==================== Dispatch ====================

// Dispatch runs an action through Reduce and commits the result
func (s *Session) Dispatch(ctx context.Context, action Action) (State, error) {
	s.mu.Lock()
	return s.dispatchLocked(ctx, action)
}

// dispatchLocked must be called with s.mu held and always releases it.
// Events and listeners run after the state lock is dropped but under
// publishMu, so they observe commits in order.
func (s *Session) dispatchLocked(ctx context.Context, action Action) (State, error) {
	if s.closed {
		s.mu.Unlock()
		return State{}, ErrSessionClosed
	}
	prev := s.state
	next, err := Reduce(prev, action)
	if err != nil {
		s.mu.Unlock()
		s.logger.Debug("Action rejected",
			zap.String("action", action.ActionType()),
			zap.Error(err),
		)
		return prev, err
	}
	s.state = next
	listeners := make([]Listener, 0, len(s.listeners))
	for _, id := range sortedKeys(s.listeners) {
		listeners = append(listeners, s.listeners[id])
	}
	s.publishMu.Lock()
	s.mu.Unlock()
	defer s.publishMu.Unlock()

	if events := eventsFor(prev, next, action); len(events) > 0 {
		if err := s.publisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish order events",
				zap.String("action", action.ActionType()),
				zap.Error(err),
			)
		}
	}
	for _, l := range listeners {
		l(next)
	}
	return next, nil
}

// Subscribe registers a listener and returns a function that removes it
func (s *Session) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Snapshot returns the current state
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Now returns the session clock reading
func (s *Session) Now() time.Time {
	return s.clock.Now()
}

// ==================== Catalog ====================

// SetStores validates and installs a new catalog
func (s *Session) SetStores(ctx context.Context, stores []catalog.Store) error {
	c, err := catalog.NewCatalog(stores)
	if err != nil {
		return shared.NewDomainError("INVALID_INPUT", err.Error())
	}
	_, err = s.Dispatch(ctx, SetStores{Catalog: c})
	if err == nil {
		s.logger.Info("Catalog loaded", zap.Int("stores", c.Len()))
	}
	return err
}

// GetStoreByID returns a store, or false when the catalog has none
func (s *Session) GetStoreByID(id string) (catalog.Store, bool) {
	return s.Snapshot().StoreByID(id)
}

// Stores returns the loaded stores
func (s *Session) Stores() []catalog.Store {
	return s.Snapshot().Catalog.Stores()
}

// GetProductByID returns a product from the catalog
func (s *Session) GetProductByID(id string) (catalog.Product, bool) {
	return s.Snapshot().Catalog.ProductByID(id)
}

// ==================== Cart ====================

// AddToCart adds one unit of a catalog product
func (s *Session) AddToCart(ctx context.Context, productID string) (shopping.Cart, error) {
	s.mu.Lock()
	product, ok := s.state.Catalog.ProductByID(productID)
	if !ok {
		s.mu.Unlock()
		return shopping.Cart{}, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Product %s not found", productID))
	}
	if !product.Available {
		s.mu.Unlock()
		return shopping.Cart{}, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Product %s is not available", productID))
	}
	next, err := s.dispatchLocked(ctx, AddToCart{Product: product})
	return next.Cart, err
}

// UpdateCartQuantity sets an absolute quantity; <= 0 removes the line
func (s *Session) UpdateCartQuantity(ctx context.Context, productID string, quantity int) (shopping.Cart, error) {
	next, err := s.Dispatch(ctx, UpdateCartQuantity{ProductID: productID, Quantity: quantity})
	return next.Cart, err
}

// RemoveFromCart drops a line item; unknown ids are ignored
func (s *Session) RemoveFromCart(ctx context.Context, productID string) (shopping.Cart, error) {
	next, err := s.Dispatch(ctx, RemoveFromCart{ProductID: productID})
	return next.Cart, err
}

// ClearCart empties the cart
func (s *Session) ClearCart(ctx context.Context) error {
	_, err := s.Dispatch(ctx, ClearCart{})
	return err
}

// Cart returns the current cart
func (s *Session) Cart() shopping.Cart {
	return s.Snapshot().Cart
}

// GetCartTotal returns the sum of price * quantity
func (s *Session) GetCartTotal() decimal.Decimal {
	return s.Snapshot().CartTotal()
}

// GetCartItemCount returns the sum of quantities
func (s *Session) GetCartItemCount() int {
	return s.Snapshot().CartItemCount()
}

// ==================== Selection & visibility ====================

// SetSelectedStore focuses a store by id; nil clears the selection
func (s *Session) SetSelectedStore(ctx context.Context, storeID *string) error {
	s.mu.Lock()
	if storeID == nil {
		_, err := s.dispatchLocked(ctx, SetSelectedStore{})
		return err
	}
	store, ok := s.state.StoreByID(*storeID)
	if !ok {
		s.mu.Unlock()
		return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Store %s not found", *storeID))
	}
	_, err := s.dispatchLocked(ctx, SetSelectedStore{Store: &store})
	return err
}

// SetCartOpen toggles the cart panel
func (s *Session) SetCartOpen(ctx context.Context, open bool) error {
	_, err := s.Dispatch(ctx, SetCartOpen{Open: open})
	return err
}

// SetCheckoutOpen toggles the checkout panel
func (s *Session) SetCheckoutOpen(ctx context.Context, open bool) error {
	_, err := s.Dispatch(ctx, SetCheckoutOpen{Open: open})
	return err
}

// ==================== Orders ====================

// PlaceOrder turns the cart into a pending order. The order is recorded,
// made current, and the cart cleared in a single commit; then its
// automatic status changes are scheduled. The pickup code is reserved
// without holding the state lock, so readers never wait on the registry.
func (s *Session) PlaceOrder(ctx context.Context, in CheckoutInput) (shopping.Order, error) {
	ctx, span := telemetry.StartOrderSpan(ctx, "place")
	defer span.End()

	order, err := s.placeOrder(ctx, in)
	if err != nil {
		telemetry.RecordError(span, err)
		return shopping.Order{}, err
	}
	span.SetAttributes(
		telemetry.OrderID(order.ID),
		telemetry.AttrStoreID.String(order.StoreID),
		telemetry.AttrItemCount.Int(order.ItemCount()),
		telemetry.AttrAmount.String(order.TotalAmount.StringFixed(2)),
	)

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("store_id", order.StoreID),
		zap.String("total", order.TotalAmount.StringFixed(2)),
		zap.Time("estimated_ready_at", order.EstimatedReadyAt),
	)
	s.scheduleProgression(order)
	return order, nil
}

func (s *Session) placeOrder(ctx context.Context, in CheckoutInput) (shopping.Order, error) {
	for attempt := 0; attempt < maxPickupCodeAttempts; attempt++ {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return shopping.Order{}, ErrSessionClosed
		}
		st := s.state
		s.mu.Unlock()

		if _, _, err := resolveCheckoutStore(st, in); err != nil {
			return shopping.Order{}, err
		}
		code, err := s.issuePickupCode(ctx, st.Orders)
		if err != nil {
			return shopping.Order{}, err
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			s.releasePickupCode(ctx, code)
			return shopping.Order{}, ErrSessionClosed
		}
		// another placement may have committed the same code meanwhile
		if s.state.Orders.HasPickupCode(code) {
			s.mu.Unlock()
			s.releasePickupCode(ctx, code)
			continue
		}
		order, err := s.buildOrder(s.state, in, code)
		if err != nil {
			s.mu.Unlock()
			s.releasePickupCode(ctx, code)
			return shopping.Order{}, err
		}
		if _, err := s.dispatchLocked(ctx, AddOrder{Order: order}); err != nil {
			s.releasePickupCode(ctx, code)
			return shopping.Order{}, err
		}
		return order, nil
	}
	return shopping.Order{}, fmt.Errorf("no unique pickup code after %d attempts", maxPickupCodeAttempts)
}

// UpdateOrderStatus moves an order to status. Terminal orders never move.
func (s *Session) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status shopping.OrderStatus) (shopping.Order, error) {
	ctx, span := telemetry.StartOrderSpan(ctx, "update_status",
		telemetry.OrderID(orderID),
		telemetry.AttrOrderStatus.String(status.String()),
	)
	defer span.End()

	next, err := s.Dispatch(ctx, UpdateOrderStatus{OrderID: orderID, Status: status, At: s.clock.Now()})
	if err != nil {
		telemetry.RecordError(span, err)
		return shopping.Order{}, err
	}
	return s.afterStatusChange(ctx, next, orderID), nil
}

// CancelOrder cancels a pending or confirmed order. Later statuses are
// rejected with INVALID_STATE and unknown ids with NOT_FOUND.
func (s *Session) CancelOrder(ctx context.Context, orderID uuid.UUID) (shopping.Order, error) {
	ctx, span := telemetry.StartOrderSpan(ctx, "cancel", telemetry.OrderID(orderID))
	defer span.End()

	next, err := s.Dispatch(ctx, CancelOrder{OrderID: orderID, At: s.clock.Now()})
	if err != nil {
		telemetry.RecordError(span, err)
		return shopping.Order{}, err
	}
	s.logger.Info("Order cancelled", zap.String("order_id", orderID.String()))
	return s.afterStatusChange(ctx, next, orderID), nil
}

// CollectOrder marks a ready order collected once the customer shows the
// matching pickup code at the counter
func (s *Session) CollectOrder(ctx context.Context, orderID uuid.UUID, pickupCode string) (shopping.Order, error) {
	ctx, span := telemetry.StartOrderSpan(ctx, "collect", telemetry.OrderID(orderID))
	defer span.End()

	s.mu.Lock()
	order, ok := s.state.Orders.Find(orderID)
	if !ok {
		s.mu.Unlock()
		err := orderNotFound(orderID.String())
		telemetry.RecordError(span, err)
		return shopping.Order{}, err
	}
	if !order.VerifyPickupCode(pickupCode) {
		s.mu.Unlock()
		err := shared.NewDomainError("INVALID_INPUT", "Pickup code does not match the order")
		telemetry.RecordError(span, err)
		return shopping.Order{}, err
	}
	next, err := s.dispatchLocked(ctx, UpdateOrderStatus{
		OrderID: orderID,
		Status:  shopping.OrderStatusCollected,
		At:      s.clock.Now(),
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return shopping.Order{}, err
	}
	return s.afterStatusChange(ctx, next, orderID), nil
}

// Orders returns every order in display order
func (s *Session) Orders() []shopping.Order {
	return s.Snapshot().Orders.SortedForDisplay()
}

// ActiveOrders returns the non-terminal orders in display order
func (s *Session) ActiveOrders() []shopping.Order {
	return shopping.SortForDisplay(s.Snapshot().Orders.Active())
}

// Order looks up an order by id
func (s *Session) Order(id uuid.UUID) (shopping.Order, bool) {
	return s.Snapshot().Orders.Find(id)
}

// CurrentOrder returns the most recently placed order
func (s *Session) CurrentOrder() (shopping.Order, bool) {
	return s.Snapshot().CurrentOrder()
}

// RestoreOrders loads archived orders and reschedules the automatic
// transitions the active ones have not reached yet
func (s *Session) RestoreOrders(ctx context.Context, orders []shopping.Order) error {
	if len(orders) == 0 {
		return nil
	}
	s.mu.Lock()
	fresh := make([]shopping.Order, 0, len(orders))
	for _, o := range orders {
		if _, known := s.state.Orders.Find(o.ID); !known {
			fresh = append(fresh, o)
		}
	}
	if _, err := s.dispatchLocked(ctx, RestoreOrders{Orders: orders}); err != nil {
		return err
	}
	for _, o := range fresh {
		if !o.IsTerminal() {
			s.scheduleProgression(o)
		}
	}
	s.logger.Info("Orders restored", zap.Int("count", len(fresh)), zap.Int("skipped", len(orders)-len(fresh)))
	return nil
}

// Close stops the session: pending automatic transitions are dropped and
// later mutations fail with ErrSessionClosed
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	return s.timers.Stop(ctx)
}

// ==================== internals ====================

// resolveCheckoutStore picks the store the cart will be ordered from
func resolveCheckoutStore(st State, in CheckoutInput) (storeID, storeName string, err error) {
	if st.Cart.IsEmpty() {
		return "", "", shared.NewDomainError("INVALID_INPUT", "Cannot place an order with an empty cart")
	}
	cartStoreID, _ := st.Cart.StoreID()
	storeID = cartStoreID
	if in.StoreID != nil && *in.StoreID != "" {
		if *in.StoreID != cartStoreID {
			return "", "", shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("Cart holds items from store %s, not %s", cartStoreID, *in.StoreID))
		}
		storeID = *in.StoreID
	}

	if store, ok := st.StoreByID(storeID); ok {
		if !store.AcceptsClickCollect {
			return "", "", shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Store %s does not accept click and collect orders", store.Name))
		}
		storeName = store.Name
	}
	return storeID, storeName, nil
}

func (s *Session) buildOrder(st State, in CheckoutInput, code string) (shopping.Order, error) {
	storeID, storeName, err := resolveCheckoutStore(st, in)
	if err != nil {
		return shopping.Order{}, err
	}

	customer := in.Customer
	customer.Name = strings.TrimSpace(customer.Name)
	customer.Phone = strings.TrimSpace(customer.Phone)

	return shopping.NewOrder(shopping.NewOrderParams{
		ID:                  s.newID(),
		StoreID:             storeID,
		StoreName:           storeName,
		Items:               st.Cart.Items(),
		Customer:            customer,
		PickupCode:          code,
		SpecialInstructions: in.SpecialInstructions,
		CreatedAt:           s.clock.Now(),
	})
}

func (s *Session) issuePickupCode(ctx context.Context, book shopping.OrderBook) (string, error) {
	for attempt := 0; attempt < maxPickupCodeAttempts; attempt++ {
		code, err := s.codes.Generate()
		if err != nil {
			return "", fmt.Errorf("failed to generate pickup code: %w", err)
		}
		if !shopping.ValidPickupCode(code) || book.HasPickupCode(code) {
			continue
		}
		if s.registry == nil {
			return code, nil
		}
		reserved, err := s.registry.Reserve(ctx, code, s.reservationTTL)
		if err != nil {
			return "", fmt.Errorf("failed to reserve pickup code: %w", err)
		}
		if reserved {
			return code, nil
		}
	}
	return "", fmt.Errorf("no unique pickup code after %d attempts", maxPickupCodeAttempts)
}

func (s *Session) releasePickupCode(ctx context.Context, code string) {
	if s.registry == nil || code == "" {
		return
	}
	if err := s.registry.Release(ctx, code); err != nil {
		s.logger.Warn("Failed to release pickup code", zap.String("pickup_code", code), zap.Error(err))
	}
}

func (s *Session) scheduleProgression(order shopping.Order) {
	for _, t := range s.policy.Plan(order) {
		if err := s.timers.Schedule(t); err != nil {
			s.logger.Warn("Failed to schedule status transition",
				zap.String("order_id", order.ID.String()),
				zap.String("target", t.Target.String()),
				zap.Error(err),
			)
		}
	}
}

// afterStatusChange drops timers and the pickup code reservation once an
// order is terminal, and returns the order's new version
func (s *Session) afterStatusChange(ctx context.Context, st State, orderID uuid.UUID) shopping.Order {
	order, _ := st.Orders.Find(orderID)
	if order.IsTerminal() {
		s.timers.CancelOrder(orderID)
		s.releasePickupCode(ctx, order.PickupCode)
	}
	return order
}

// applyScheduled is the scheduler's fire handler. The transition is
// checked against the order's status at fire time, so timers left over
// for cancelled or already advanced orders do nothing.
func (s *Session) applyScheduled(ctx context.Context, t scheduler.Transition) {
	s.mu.Lock()
	order, ok := s.state.Orders.Find(t.OrderID)
	if s.closed || !ok || !order.Status.CanTransitionTo(t.Target) {
		s.mu.Unlock()
		s.logger.Debug("Scheduled transition skipped",
			zap.String("order_id", t.OrderID.String()),
			zap.String("target", t.Target.String()),
		)
		return
	}
	next, err := s.dispatchLocked(ctx, UpdateOrderStatus{OrderID: t.OrderID, Status: t.Target, At: s.clock.Now()})
	if err != nil {
		s.logger.Warn("Scheduled transition failed",
			zap.String("order_id", t.OrderID.String()),
			zap.String("target", t.Target.String()),
			zap.Error(err),
		)
		return
	}
	s.afterStatusChange(ctx, next, t.OrderID)
	s.logger.Debug("Order advanced",
		zap.String("order_id", t.OrderID.String()),
		zap.String("status", t.Target.String()),
	)
}

func sortedKeys(m map[int]Listener) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

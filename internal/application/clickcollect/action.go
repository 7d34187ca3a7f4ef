package clickcollect

import (
	"time"

	"github.com/Nassimghoulane/Dionos-1/internal/domain/catalog"
	"github.com/Nassimghoulane/Dionos-1/internal/domain/shopping"
	"github.com/google/uuid"
)

// Action is a command understood by Reduce. The set is closed: only the
// types in this file implement it.
type Action interface {
	ActionType() string
	sealed()
}

// Action type names, used in logs
const (
	ActionSetStores          = "SET_STORES"
	ActionAddToCart          = "ADD_TO_CART"
	ActionUpdateCartQuantity = "UPDATE_CART_QUANTITY"
	ActionRemoveFromCart     = "REMOVE_FROM_CART"
	ActionClearCart          = "CLEAR_CART"
	ActionSetSelectedStore   = "SET_SELECTED_STORE"
	ActionSetCartOpen        = "SET_CART_OPEN"
	ActionSetCheckoutOpen    = "SET_CHECKOUT_OPEN"
	ActionAddOrder           = "ADD_ORDER"
	ActionUpdateOrderStatus  = "UPDATE_ORDER_STATUS"
	ActionCancelOrder        = "CANCEL_ORDER"
	ActionRestoreOrders      = "RESTORE_ORDERS"
)

// SetStores replaces the catalog wholesale
type SetStores struct {
	Catalog *catalog.Catalog
}

// AddToCart adds one unit of a product
type AddToCart struct {
	Product catalog.Product
}

// UpdateCartQuantity sets an absolute quantity; <= 0 removes the line
type UpdateCartQuantity struct {
	ProductID string
	Quantity  int
}

// RemoveFromCart drops a line item
type RemoveFromCart struct {
	ProductID string
}

// ClearCart empties the cart
type ClearCart struct{}

// SetSelectedStore focuses a store, or clears the focus with nil
type SetSelectedStore struct {
	Store *catalog.Store
}

// SetCartOpen toggles the cart panel
type SetCartOpen struct {
	Open bool
}

// SetCheckoutOpen toggles the checkout panel
type SetCheckoutOpen struct {
	Open bool
}

// AddOrder records a placed order and clears the cart
type AddOrder struct {
	Order shopping.Order
}

// UpdateOrderStatus moves an order along its lifecycle
type UpdateOrderStatus struct {
	OrderID uuid.UUID
	Status  shopping.OrderStatus
	At      time.Time
}

// CancelOrder cancels a pending or confirmed order
type CancelOrder struct {
	OrderID uuid.UUID
	At      time.Time
}

// RestoreOrders loads orders kept by an archive into the order book
type RestoreOrders struct {
	Orders []shopping.Order
}

func (SetStores) ActionType() string          { return ActionSetStores }
func (AddToCart) ActionType() string          { return ActionAddToCart }
func (UpdateCartQuantity) ActionType() string { return ActionUpdateCartQuantity }
func (RemoveFromCart) ActionType() string     { return ActionRemoveFromCart }
func (ClearCart) ActionType() string          { return ActionClearCart }
func (SetSelectedStore) ActionType() string   { return ActionSetSelectedStore }
func (SetCartOpen) ActionType() string        { return ActionSetCartOpen }
func (SetCheckoutOpen) ActionType() string    { return ActionSetCheckoutOpen }
func (AddOrder) ActionType() string           { return ActionAddOrder }
func (UpdateOrderStatus) ActionType() string  { return ActionUpdateOrderStatus }
func (CancelOrder) ActionType() string        { return ActionCancelOrder }
func (RestoreOrders) ActionType() string      { return ActionRestoreOrders }

func (SetStores) sealed()          {}
func (AddToCart) sealed()          {}
func (UpdateCartQuantity) sealed() {}
func (RemoveFromCart) sealed()     {}
func (ClearCart) sealed()          {}
func (SetSelectedStore) sealed()   {}
func (SetCartOpen) sealed()        {}
func (SetCheckoutOpen) sealed()    {}
func (AddOrder) sealed()           {}
func (UpdateOrderStatus) sealed()  {}
func (CancelOrder) sealed()        {}
func (RestoreOrders) sealed()      {}

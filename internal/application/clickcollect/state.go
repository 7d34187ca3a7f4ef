package clickcollect

import (
	"github.com/Nassimghoulane/Dionos-1/internal/domain/catalog"
	"github.com/Nassimghoulane/Dionos-1/internal/domain/shopping"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// State is one immutable snapshot of a shopping session. Reduce never
// edits a State in place; it builds the next one.
type State struct {
	Catalog        *catalog.Catalog
	Cart           shopping.Cart
	Orders         shopping.OrderBook
	SelectedStore  *catalog.Store
	CurrentOrderID *uuid.UUID
	CartOpen       bool
	CheckoutOpen   bool
}

// InitialState returns an empty session with an empty catalog
func InitialState() State {
	return State{Catalog: catalog.Empty()}
}

// StoreByID looks a store up in the loaded catalog
func (s State) StoreByID(id string) (catalog.Store, bool) {
	return s.Catalog.StoreByID(id)
}

// CurrentOrder returns the most recently placed order in its latest version
func (s State) CurrentOrder() (shopping.Order, bool) {
	if s.CurrentOrderID == nil {
		return shopping.Order{}, false
	}
	return s.Orders.Find(*s.CurrentOrderID)
}

// CartTotal returns the sum of price * quantity in the cart
func (s State) CartTotal() decimal.Decimal {
	return s.Cart.Total()
}

// CartItemCount returns the sum of quantities in the cart
func (s State) CartItemCount() int {
	return s.Cart.ItemCount()
}

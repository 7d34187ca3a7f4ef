package clickcollect

import (
	"fmt"

	"github.com/Nassimghoulane/Dionos-1/internal/domain/catalog"
	"github.com/Nassimghoulane/Dionos-1/internal/domain/shared"
	"github.com/Nassimghoulane/Dionos-1/internal/domain/shopping"
)

// Reduce computes the state that follows s after action. It is pure: no
// clock, no randomness, no I/O. On error the returned state is s.
func Reduce(s State, action Action) (State, error) {
	next := s

	switch a := action.(type) {
	case SetStores:
		next.Catalog = a.Catalog
		if next.Catalog == nil {
			next.Catalog = catalog.Empty()
		}

	case AddToCart:
		next.Cart = s.Cart.Add(a.Product)

	case UpdateCartQuantity:
		next.Cart = s.Cart.SetQuantity(a.ProductID, a.Quantity)

	case RemoveFromCart:
		next.Cart = s.Cart.Remove(a.ProductID)

	case ClearCart:
		next.Cart = s.Cart.Clear()

	case SetSelectedStore:
		if a.Store == nil {
			next.SelectedStore = nil
		} else {
			store := *a.Store
			next.SelectedStore = &store
		}

	case SetCartOpen:
		next.CartOpen = a.Open

	case SetCheckoutOpen:
		next.CheckoutOpen = a.Open

	case AddOrder:
		if len(a.Order.Items) == 0 {
			return s, shared.NewDomainError("INVALID_INPUT", "Order must contain at least one line item")
		}
		if a.Order.Status != shopping.OrderStatusPending {
			return s, shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("New orders start pending, got %s", a.Order.Status))
		}
		orders, err := s.Orders.Append(a.Order)
		if err != nil {
			return s, err
		}
		id := a.Order.ID
		next.Orders = orders
		next.CurrentOrderID = &id
		next.Cart = s.Cart.Clear()
		next.CartOpen = false
		next.CheckoutOpen = false

	case UpdateOrderStatus:
		order, ok := s.Orders.Find(a.OrderID)
		if !ok {
			return s, orderNotFound(a.OrderID.String())
		}
		updated, err := order.Transition(a.Status, a.At)
		if err != nil {
			return s, err
		}
		if next.Orders, err = s.Orders.Replace(updated); err != nil {
			return s, err
		}

	case CancelOrder:
		order, ok := s.Orders.Find(a.OrderID)
		if !ok {
			return s, orderNotFound(a.OrderID.String())
		}
		cancelled, err := order.Cancel(a.At)
		if err != nil {
			return s, err
		}
		if next.Orders, err = s.Orders.Replace(cancelled); err != nil {
			return s, err
		}

	case RestoreOrders:
		orders := s.Orders
		for _, o := range a.Orders {
			if _, exists := orders.Find(o.ID); exists {
				continue
			}
			appended, err := orders.Append(o)
			if err != nil {
				return s, err
			}
			orders = appended
		}
		next.Orders = orders

	default:
		return s, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown action %T", action))
	}

	return next, nil
}

func orderNotFound(id string) error {
	return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Order %s not found", id))
}

package shopping

import (
	"fmt"
	"sort"

	"github.com/Nassimghoulane/Dionos-1/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderBook holds every order placed in a session, in placement order.
// Orders are never removed; terminal orders stay as history.
type OrderBook struct {
	orders []Order
}

// NewOrderBook builds a book from existing orders, rejecting duplicate
// ids and pickup codes shared by two active orders.
func NewOrderBook(orders ...Order) (OrderBook, error) {
	var book OrderBook
	for _, o := range orders {
		next, err := book.Append(o)
		if err != nil {
			return OrderBook{}, err
		}
		book = next
	}
	return book, nil
}

// Append adds a newly placed order
func (b OrderBook) Append(o Order) (OrderBook, error) {
	if _, ok := b.Find(o.ID); ok {
		return b, shared.NewDomainError("ALREADY_EXISTS", fmt.Sprintf("Order %s already exists", o.ID))
	}
	if !o.IsTerminal() && b.HasActivePickupCode(o.PickupCode) {
		return b, shared.NewDomainError("ALREADY_EXISTS",
			fmt.Sprintf("Pickup code %s is already in use", o.PickupCode))
	}
	orders := make([]Order, len(b.orders), len(b.orders)+1)
	copy(orders, b.orders)
	return OrderBook{orders: append(orders, o.clone())}, nil
}

// Replace swaps in a new version of an existing order
func (b OrderBook) Replace(o Order) (OrderBook, error) {
	i := b.indexOf(o.ID)
	if i < 0 {
		return b, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Order %s not found", o.ID))
	}
	orders := make([]Order, len(b.orders))
	copy(orders, b.orders)
	orders[i] = o.clone()
	return OrderBook{orders: orders}, nil
}

// Find returns the order with the given id
func (b OrderBook) Find(id uuid.UUID) (Order, bool) {
	i := b.indexOf(id)
	if i < 0 {
		return Order{}, false
	}
	return b.orders[i].clone(), true
}

// FindByPickupCode returns the active order holding a pickup code
func (b OrderBook) FindByPickupCode(code string) (Order, bool) {
	for _, o := range b.orders {
		if !o.IsTerminal() && o.VerifyPickupCode(code) {
			return o.clone(), true
		}
	}
	return Order{}, false
}

// HasPickupCode reports whether any order, active or not, used the code
func (b OrderBook) HasPickupCode(code string) bool {
	for _, o := range b.orders {
		if o.PickupCode == code {
			return true
		}
	}
	return false
}

// HasActivePickupCode reports whether a non-terminal order holds the code
func (b OrderBook) HasActivePickupCode(code string) bool {
	for _, o := range b.orders {
		if !o.IsTerminal() && o.PickupCode == code {
			return true
		}
	}
	return false
}

// Len returns the number of orders
func (b OrderBook) Len() int {
	return len(b.orders)
}

// All returns the orders in placement order
func (b OrderBook) All() []Order {
	result := make([]Order, len(b.orders))
	for i, o := range b.orders {
		result[i] = o.clone()
	}
	return result
}

// Active returns the non-terminal orders in placement order
func (b OrderBook) Active() []Order {
	result := make([]Order, 0, len(b.orders))
	for _, o := range b.orders {
		if !o.IsTerminal() {
			result = append(result, o.clone())
		}
	}
	return result
}

// SortedForDisplay returns the orders as they are listed to the customer
func (b OrderBook) SortedForDisplay() []Order {
	return SortForDisplay(b.All())
}

// SortForDisplay orders active before terminal orders, then by status
// priority (ready, preparing, confirmed, pending, collected, cancelled),
// then most recent first. The input slice is sorted in place and returned.
func SortForDisplay(orders []Order) []Order {
	sort.SliceStable(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		if a.IsTerminal() != b.IsTerminal() {
			return !a.IsTerminal()
		}
		if pa, pb := a.Status.DisplayPriority(), b.Status.DisplayPriority(); pa != pb {
			return pa > pb
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return orders
}

func (b OrderBook) indexOf(id uuid.UUID) int {
	for i, o := range b.orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

package shopping

import (
	"fmt"
	"strings"
	"time"

	"github.com/Nassimghoulane/Dionos-1/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerInfo is the contact snapshot taken at checkout
type CustomerInfo struct {
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
	Email *string `json:"email,omitempty"`
}

// Order is a placed click-and-collect order. Items and TotalAmount are a
// snapshot of the cart at placement and never follow later price changes.
// Orders are values: status changes return a new Order.
type Order struct {
	ID                  uuid.UUID
	StoreID             string
	StoreName           string
	Items               []LineItem
	TotalAmount         decimal.Decimal
	Status              OrderStatus
	CreatedAt           time.Time
	EstimatedReadyAt    time.Time
	UpdatedAt           time.Time
	Customer            CustomerInfo
	PickupCode          string
	SpecialInstructions *string
}

// NewOrderParams carries everything needed to place an order
type NewOrderParams struct {
	ID                  uuid.UUID
	StoreID             string
	StoreName           string
	Items               []LineItem
	Customer            CustomerInfo
	PickupCode          string
	SpecialInstructions *string
	CreatedAt           time.Time
}

// NewOrder snapshots the line items into a pending order.
// The store defaults to the store of the first line item and every line
// item must belong to it.
func NewOrder(p NewOrderParams) (Order, error) {
	if p.ID == uuid.Nil {
		return Order{}, shared.NewDomainError("INVALID_INPUT", "Order ID cannot be empty")
	}
	if len(p.Items) == 0 {
		return Order{}, shared.NewDomainError("INVALID_INPUT", "Order must contain at least one line item")
	}
	if p.CreatedAt.IsZero() {
		return Order{}, shared.NewDomainError("INVALID_INPUT", "Order creation time cannot be empty")
	}
	if strings.TrimSpace(p.Customer.Name) == "" {
		return Order{}, shared.NewDomainError("INVALID_INPUT", "Customer name cannot be empty")
	}
	if strings.TrimSpace(p.Customer.Phone) == "" {
		return Order{}, shared.NewDomainError("INVALID_INPUT", "Customer phone cannot be empty")
	}
	if !ValidPickupCode(p.PickupCode) {
		return Order{}, shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("Pickup code must be %d uppercase alphanumeric characters", PickupCodeLength))
	}

	storeID, storeName := p.StoreID, p.StoreName
	if storeID == "" {
		storeID = p.Items[0].Product.StoreID
	}
	if storeName == "" {
		storeName = p.Items[0].Product.StoreName
	}

	items := make([]LineItem, len(p.Items))
	var longest time.Duration
	for i, item := range p.Items {
		if item.Quantity <= 0 {
			return Order{}, shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("Quantity for product %s must be positive", item.Product.ID))
		}
		if item.Product.StoreID != storeID {
			return Order{}, shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("Product %s belongs to store %s, not %s", item.Product.ID, item.Product.StoreID, storeID))
		}
		if prep := item.Product.PreparationTime(); prep > longest {
			longest = prep
		}
		items[i] = item.clone()
	}

	return Order{
		ID:                  p.ID,
		StoreID:             storeID,
		StoreName:           storeName,
		Items:               items,
		TotalAmount:         SumLineItems(items),
		Status:              OrderStatusPending,
		CreatedAt:           p.CreatedAt,
		EstimatedReadyAt:    p.CreatedAt.Add(longest),
		UpdatedAt:           p.CreatedAt,
		Customer:            p.Customer.clone(),
		PickupCode:          p.PickupCode,
		SpecialInstructions: cloneString(p.SpecialInstructions),
	}, nil
}

// Transition moves the order to target. Terminal orders never move, and
// cancelling goes through the same policy as Cancel.
func (o Order) Transition(target OrderStatus, at time.Time) (Order, error) {
	if !target.IsValid() {
		return Order{}, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown order status %q", target))
	}
	if o.Status.IsTerminal() {
		return Order{}, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot change status of order in %s status", o.Status))
	}
	if target == OrderStatusCancelled {
		return o.Cancel(at)
	}
	if !o.Status.CanTransitionTo(target) {
		return Order{}, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot move order from %s to %s", o.Status, target))
	}
	next := o.clone()
	next.Status = target
	next.UpdatedAt = at
	return next, nil
}

// Cancel cancels a pending or confirmed order
func (o Order) Cancel(at time.Time) (Order, error) {
	if !o.Status.CanCancel() {
		return Order{}, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	next := o.clone()
	next.Status = OrderStatusCancelled
	next.UpdatedAt = at
	return next, nil
}

// VerifyPickupCode compares a code presented at the counter, ignoring case
// and surrounding whitespace.
func (o Order) VerifyPickupCode(code string) bool {
	return strings.EqualFold(strings.TrimSpace(code), o.PickupCode)
}

// IsTerminal returns true if the order is collected or cancelled
func (o Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}

// ItemCount returns the total quantity across line items
func (o Order) ItemCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

func (o Order) clone() Order {
	items := make([]LineItem, len(o.Items))
	for i, item := range o.Items {
		items[i] = item.clone()
	}
	o.Items = items
	o.Customer = o.Customer.clone()
	o.SpecialInstructions = cloneString(o.SpecialInstructions)
	return o
}

func (c CustomerInfo) clone() CustomerInfo {
	c.Email = cloneString(c.Email)
	return c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

package shopping

import (
	"time"

	"github.com/Nassimghoulane/Dionos-1/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeOrder = "ClickCollectOrder"

// Event type constants
const (
	EventTypeOrderPlaced        = "OrderPlaced"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
	EventTypeOrderCancelled     = "OrderCancelled"
)

// OrderPlacedEvent is raised when checkout turns the cart into an order
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderID          uuid.UUID       `json:"order_id"`
	StoreID          string          `json:"store_id"`
	PickupCode       string          `json:"pickup_code"`
	ItemCount        int             `json:"item_count"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	EstimatedReadyAt time.Time       `json:"estimated_ready_at"`
	Order            Order           `json:"-"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent
func NewOrderPlacedEvent(order Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, order.ID, order.CreatedAt),
		OrderID:          order.ID,
		StoreID:          order.StoreID,
		PickupCode:       order.PickupCode,
		ItemCount:        order.ItemCount(),
		TotalAmount:      order.TotalAmount,
		EstimatedReadyAt: order.EstimatedReadyAt,
		Order:            order.clone(),
	}
}

// EventType returns the event type name
func (e *OrderPlacedEvent) EventType() string {
	return EventTypeOrderPlaced
}

// OrderStatusChangedEvent is raised on every status change, scheduled or not
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID    uuid.UUID   `json:"order_id"`
	StoreID    string      `json:"store_id"`
	PickupCode string      `json:"pickup_code"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status"`
	Order      Order       `json:"-"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(order Order, from OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, order.ID, order.UpdatedAt),
		OrderID:         order.ID,
		StoreID:         order.StoreID,
		PickupCode:      order.PickupCode,
		FromStatus:      from,
		ToStatus:        order.Status,
		Order:           order.clone(),
	}
}

// EventType returns the event type name
func (e *OrderStatusChangedEvent) EventType() string {
	return EventTypeOrderStatusChanged
}

// OrderCancelledEvent is raised when the customer cancels an order
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	StoreID     string          `json:"store_id"`
	FromStatus  OrderStatus     `json:"from_status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(order Order, from OrderStatus) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, AggregateTypeOrder, order.ID, order.UpdatedAt),
		OrderID:         order.ID,
		StoreID:         order.StoreID,
		FromStatus:      from,
		TotalAmount:     order.TotalAmount,
	}
}

// EventType returns the event type name
func (e *OrderCancelledEvent) EventType() string {
	return EventTypeOrderCancelled
}

package clickcollect

import (
	"github.com/Nassimghoulane/Dionos-1/internal/domain/shared"
	"github.com/Nassimghoulane/Dionos-1/internal/domain/shopping"
	"github.com/google/uuid"
)

// eventsFor derives the domain events of a committed action by comparing
// the order book before and after it
func eventsFor(prev, next State, action Action) []shared.DomainEvent {
	switch a := action.(type) {
	case AddOrder:
		if o, ok := next.Orders.Find(a.Order.ID); ok {
			return []shared.DomainEvent{shopping.NewOrderPlacedEvent(o)}
		}
	case UpdateOrderStatus:
		return statusEvents(prev, next, a.OrderID)
	case CancelOrder:
		return statusEvents(prev, next, a.OrderID)
	}
	return nil
}

func statusEvents(prev, next State, orderID uuid.UUID) []shared.DomainEvent {
	before, ok := prev.Orders.Find(orderID)
	if !ok {
		return nil
	}
	after, ok := next.Orders.Find(orderID)
	if !ok || after.Status == before.Status {
		return nil
	}
	events := []shared.DomainEvent{shopping.NewOrderStatusChangedEvent(after, before.Status)}
	if after.Status == shopping.OrderStatusCancelled {
		events = append(events, shopping.NewOrderCancelledEvent(after, before.Status))
	}
	return events
}

package shopping

// OrderStatus represents where an order is in its pickup lifecycle
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCollected OrderStatus = "collected"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// AllOrderStatuses lists every status in lifecycle order
var AllOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusCollected,
	OrderStatusCancelled,
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusReady, OrderStatusCollected, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no transition leaves this status
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCollected || s == OrderStatusCancelled
}

// IsActive reports whether the order is still in progress
func (s OrderStatus) IsActive() bool {
	return s.IsValid() && !s.IsTerminal()
}

// CanCancel reports whether a customer may still cancel.
// Once preparation has started the store cannot unwind it.
func (s OrderStatus) CanCancel() bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed
}

// CanTransitionTo checks if the status can transition to the target status.
// Forward moves may skip intermediate steps so a late timer never strands
// an order; collection requires the order to be ready.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusConfirmed || target == OrderStatusPreparing ||
			target == OrderStatusReady || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusPreparing || target == OrderStatusReady ||
			target == OrderStatusCancelled
	case OrderStatusPreparing:
		return target == OrderStatusReady
	case OrderStatusReady:
		return target == OrderStatusCollected
	case OrderStatusCollected, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// DisplayPriority ranks statuses for order lists; higher shows first.
func (s OrderStatus) DisplayPriority() int {
	switch s {
	case OrderStatusReady:
		return 6
	case OrderStatusPreparing:
		return 5
	case OrderStatusConfirmed:
		return 4
	case OrderStatusPending:
		return 3
	case OrderStatusCollected:
		return 2
	case OrderStatusCancelled:
		return 1
	}
	return 0
}

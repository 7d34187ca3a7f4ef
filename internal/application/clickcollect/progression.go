package clickcollect

import (
	"time"

	"github.com/Nassimghoulane/Dionos-1/internal/domain/shopping"
	"github.com/Nassimghoulane/Dionos-1/internal/infrastructure/scheduler"
)

// ProgressionPolicy holds the delays of the automatic status changes.
// The ready transition always targets the order's estimated ready time.
type ProgressionPolicy struct {
	ConfirmAfter   time.Duration
	PreparingAfter time.Duration
}

// DefaultProgressionPolicy confirms after 2s and starts preparing after 5s
func DefaultProgressionPolicy() ProgressionPolicy {
	return ProgressionPolicy{
		ConfirmAfter:   2 * time.Second,
		PreparingAfter: 5 * time.Second,
	}
}

// Plan returns the transitions still reachable from the order's current
// status, anchored on its creation time
func (p ProgressionPolicy) Plan(o shopping.Order) []scheduler.Transition {
	candidates := []scheduler.Transition{
		{FireAt: o.CreatedAt.Add(p.ConfirmAfter), OrderID: o.ID, Target: shopping.OrderStatusConfirmed},
		{FireAt: o.CreatedAt.Add(p.PreparingAfter), OrderID: o.ID, Target: shopping.OrderStatusPreparing},
		{FireAt: o.EstimatedReadyAt, OrderID: o.ID, Target: shopping.OrderStatusReady},
	}
	plan := make([]scheduler.Transition, 0, len(candidates))
	for _, t := range candidates {
		if o.Status.CanTransitionTo(t.Target) {
			plan = append(plan, t)
		}
	}
	return plan
}

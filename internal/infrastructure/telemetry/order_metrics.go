package telemetry

import (
	"context"
	"errors"

	"github.com/Nassimghoulane/Dionos-1/internal/domain/shared"
	"github.com/Nassimghoulane/Dionos-1/internal/domain/shopping"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// OrderMetrics turns order events into OpenTelemetry instruments. It is
// subscribed to the event bus like any other handler.
type OrderMetrics struct {
	logger   *zap.Logger
	currency string

	placed        metric.Int64Counter
	revenue       metric.Float64Counter
	statusChanges metric.Int64Counter
	cancelled     metric.Int64Counter
	collected     metric.Int64Counter
	active        metric.Int64UpDownCounter
	timeToReady   metric.Float64Histogram
}

// OrderMetricsConfig holds configuration for order metrics.
type OrderMetricsConfig struct {
	Meter    metric.Meter
	Logger   *zap.Logger
	Currency string // reported as an attribute on revenue
}

// NewOrderMetrics creates the instruments on cfg.Meter.
func NewOrderMetrics(cfg OrderMetricsConfig) (*OrderMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	in := NewInstruments(cfg.Meter)
	m := &OrderMetrics{
		logger:        logger,
		currency:      cfg.Currency,
		placed:        in.Counter("clickcollect.orders.placed", "Orders placed at checkout", "{order}"),
		revenue:       in.FloatCounter("clickcollect.orders.revenue", "Total amount of placed orders", "{currency}"),
		statusChanges: in.Counter("clickcollect.orders.status_changes", "Order status transitions", "{transition}"),
		cancelled:     in.Counter("clickcollect.orders.cancelled", "Orders cancelled by the customer", "{order}"),
		collected:     in.Counter("clickcollect.orders.collected", "Orders handed over at the counter", "{order}"),
		active:        in.UpDownCounter("clickcollect.orders.active", "Orders not yet collected or cancelled", "{order}"),
		timeToReady: in.Histogram("clickcollect.orders.time_to_ready",
			"Time from placement to ready for pickup", "s", PreparationBuckets),
	}
	if err := in.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// ObservePendingTransitions reports pending() as the number of automatic
// status changes waiting on the scheduler, read at each collection.
func ObservePendingTransitions(meter metric.Meter, pending func() int) error {
	if meter == nil {
		return ErrMeterNil
	}
	in := NewInstruments(meter)
	in.Gauge("clickcollect.scheduler.pending_transitions",
		"Automatic status changes waiting to fire", "{transition}",
		func() int64 { return int64(pending()) })
	return in.Err()
}

// EventTypes implements shared.EventHandler
func (m *OrderMetrics) EventTypes() []string {
	return []string{
		shopping.EventTypeOrderPlaced,
		shopping.EventTypeOrderStatusChanged,
		shopping.EventTypeOrderCancelled,
	}
}

// Handle implements shared.EventHandler
func (m *OrderMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *shopping.OrderPlacedEvent:
		store := metric.WithAttributes(AttrStoreID.String(e.StoreID))
		m.placed.Add(ctx, 1, store)
		m.revenue.Add(ctx, e.TotalAmount.InexactFloat64(),
			metric.WithAttributes(AttrStoreID.String(e.StoreID), AttrCurrency.String(m.currency)))
		m.active.Add(ctx, 1, store)

	case *shopping.OrderStatusChangedEvent:
		store := metric.WithAttributes(AttrStoreID.String(e.StoreID))
		m.statusChanges.Add(ctx, 1, metric.WithAttributes(
			AttrStoreID.String(e.StoreID),
			AttrFromStatus.String(string(e.FromStatus)),
			AttrToStatus.String(string(e.ToStatus)),
		))
		switch e.ToStatus {
		case shopping.OrderStatusReady:
			m.timeToReady.Record(ctx, e.Order.UpdatedAt.Sub(e.Order.CreatedAt).Seconds(), store)
		case shopping.OrderStatusCollected:
			m.collected.Add(ctx, 1, store)
		}
		if e.ToStatus.IsTerminal() && !e.FromStatus.IsTerminal() {
			m.active.Add(ctx, -1, store)
		}

	case *shopping.OrderCancelledEvent:
		m.cancelled.Add(ctx, 1, metric.WithAttributes(
			AttrStoreID.String(e.StoreID),
			AttrFromStatus.String(string(e.FromStatus)),
		))

	default:
		m.logger.Debug("order metrics ignoring event", zap.String("event_type", event.EventType()))
	}
	return nil
}

// ErrMeterNil is returned when an instrumented component gets no meter
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

var _ shared.EventHandler = (*OrderMetrics)(nil)

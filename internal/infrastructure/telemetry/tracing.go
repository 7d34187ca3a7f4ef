package telemetry

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName scopes the spans of session operations
const TracerName = "click-collect"

// Span attribute keys of order operations. Store spans reuse AttrStoreID.
var (
	AttrOrderID     = attribute.Key("order_id")
	AttrOrderStatus = attribute.Key("order_status")
	AttrItemCount   = attribute.Key("item_count")
	AttrAmount      = attribute.Key("amount")
)

// StartOrderSpan starts the internal span "order.<op>" on the global
// tracer provider. The caller ends it.
func StartOrderSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "order."+op,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// OrderID is the span attribute of an order id
func OrderID(id uuid.UUID) attribute.KeyValue {
	return AttrOrderID.String(id.String())
}

// RecordError marks span failed with err. A nil err leaves it untouched.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metric attribute keys
var (
	AttrHTTPMethod     = attribute.Key("http.method")
	AttrHTTPStatusCode = attribute.Key("http.status_code")
	AttrHTTPRoute      = attribute.Key("http.route")

	AttrStoreID    = attribute.Key("store_id")
	AttrFromStatus = attribute.Key("from_status")
	AttrToStatus   = attribute.Key("to_status")
	AttrCurrency   = attribute.Key("currency")
)

// Histogram boundaries, in seconds
var (
	HTTPDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	PreparationBuckets  = []float64{1, 5, 10, 30, 60, 300, 600, 900, 1800, 3600}
)

// Instruments declares a group of instruments on one meter. Creation
// errors are collected instead of returned per call: after the first
// failure every later declaration yields a no-op instrument, and Err
// reports the failure once the group is declared.
type Instruments struct {
	meter metric.Meter
	err   error
}

// NewInstruments starts a group on meter
func NewInstruments(meter metric.Meter) *Instruments {
	return &Instruments{meter: meter}
}

// Err returns the first creation error of the group
func (in *Instruments) Err() error {
	return in.err
}

func (in *Instruments) fail(name string, err error) {
	if in.err == nil && err != nil {
		in.err = fmt.Errorf("instrument %s: %w", name, err)
	}
}

// Counter declares a monotonic integer counter
func (in *Instruments) Counter(name, description, unit string) metric.Int64Counter {
	if in.err != nil {
		return noop.Int64Counter{}
	}
	c, err := in.meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		in.fail(name, err)
		return noop.Int64Counter{}
	}
	return c
}

// FloatCounter declares a monotonic float counter, used for amounts
func (in *Instruments) FloatCounter(name, description, unit string) metric.Float64Counter {
	if in.err != nil {
		return noop.Float64Counter{}
	}
	c, err := in.meter.Float64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		in.fail(name, err)
		return noop.Float64Counter{}
	}
	return c
}

// UpDownCounter declares an integer counter that may decrease
func (in *Instruments) UpDownCounter(name, description, unit string) metric.Int64UpDownCounter {
	if in.err != nil {
		return noop.Int64UpDownCounter{}
	}
	c, err := in.meter.Int64UpDownCounter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		in.fail(name, err)
		return noop.Int64UpDownCounter{}
	}
	return c
}

// Histogram declares a float histogram with explicit bucket boundaries
func (in *Instruments) Histogram(name, description, unit string, boundaries []float64) metric.Float64Histogram {
	if in.err != nil {
		return noop.Float64Histogram{}
	}
	h, err := in.meter.Float64Histogram(name,
		metric.WithDescription(description),
		metric.WithUnit(unit),
		metric.WithExplicitBucketBoundaries(boundaries...),
	)
	if err != nil {
		in.fail(name, err)
		return noop.Float64Histogram{}
	}
	return h
}

// Gauge declares an asynchronous gauge whose value is read from observe
// at every collection
func (in *Instruments) Gauge(name, description, unit string, observe func() int64) {
	if in.err != nil {
		return
	}
	_, err := in.meter.Int64ObservableGauge(name,
		metric.WithDescription(description),
		metric.WithUnit(unit),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(observe())
			return nil
		}),
	)
	in.fail(name, err)
}

package instrument

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
)

// Counter is an int64 counter that never fails to construct.
type Counter struct {
	c metric.Int64Counter
}

// NewCounter creates a counter on meter, falling back to a noop counter
// when the meter rejects the instrument.
func NewCounter(meter metric.Meter, name, desc string) Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		slog.Warn("failed to create counter", "name", name, "error", err)
		c = metricnoop.Int64Counter{}
	}
	return Counter{c: c}
}

// Inc adds one with the given string attributes, passed as key/value pairs.
func (c Counter) Inc(ctx context.Context, kv ...string) {
	if c.c == nil {
		return
	}
	attrs := make([]attribute.KeyValue, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		attrs = append(attrs, attribute.String(kv[i], kv[i+1]))
	}
	c.c.Add(ctx, 1, metric.WithAttributes(attrs...))
}

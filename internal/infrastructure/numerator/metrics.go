package numerator

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	corenumerator "custody/internal/core/numerator"
)

type instruments struct {
	allocations metric.Int64Counter
}

// newInstruments registers allocator counters on the global meter provider,
// which stays a no-op unless the host installs one.
func newInstruments() *instruments {
	meter := otel.Meter("custody/numerator")
	allocations, err := meter.Int64Counter("invoice_sequence_allocations_total",
		metric.WithDescription("Sequence values handed out, per prefix"))
	if err != nil {
		allocations, _ = noop.NewMeterProvider().Meter("custody/numerator").Int64Counter("invoice_sequence_allocations_total")
	}
	return &instruments{allocations: allocations}
}

func (m *instruments) recordAllocation(ctx context.Context, key corenumerator.Key, backend string) {
	if m == nil {
		return
	}
	m.allocations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("prefix", key.Prefix),
		attribute.String("backend", backend),
	))
}

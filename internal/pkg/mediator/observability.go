package mediator

import (
	"context"
	"log/slog"
	"reflect"

	"github.com/shandysiswandi/gopatient/internal/pkg/clock"
	"github.com/shandysiswandi/gopatient/internal/pkg/goerror"
	"github.com/shandysiswandi/gopatient/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ObservabilityBehavior opens a span around the handler and records a request
// counter and a duration histogram labelled by request type and status.
type ObservabilityBehavior[Req, Res any] struct {
	clock    clock.Clocker
	tracer   trace.Tracer
	counter  metric.Int64Counter
	duration metric.Float64Histogram
	name     string
}

// NewObservabilityBehavior builds the behavior from ins. Instruments that fail
// to register are logged and skipped. A nil clock uses wall time.
func NewObservabilityBehavior[Req, Res any](ins instrument.Instrumentation, clk clock.Clocker) *ObservabilityBehavior[Req, Res] {
	if clk == nil {
		clk = clock.New()
	}
	if ins == nil {
		ins = instrument.NewNoop()
	}
	meter := ins.Meter("mediator")

	counter, err := meter.Int64Counter("mediator.requests", metric.WithDescription("Number of dispatched requests"))
	if err != nil {
		slog.Error("failed to create mediator request counter", "error", err)
	}

	duration, err := meter.Float64Histogram("mediator.duration", metric.WithDescription("Handler duration in milliseconds"))
	if err != nil {
		slog.Error("failed to create mediator duration histogram", "error", err)
	}

	return &ObservabilityBehavior[Req, Res]{
		clock:    clk,
		tracer:   ins.Tracer("mediator"),
		counter:  counter,
		duration: duration,
		name:     reflect.TypeFor[Req]().String(),
	}
}

// Handle implements Behavior.
func (b *ObservabilityBehavior[Req, Res]) Handle(ctx context.Context, req Req, next Next[Res]) (Res, error) {
	if next == nil {
		var zero Res
		return zero, goerror.NewServer(ErrNilNext)
	}

	start := b.clock.Now()
	ctx, span := b.tracer.Start(ctx, "mediator."+b.name, trace.WithAttributes(
		attribute.String("mediator.request", b.name),
	))

	res, err := next(ctx)

	status := statusOf(res)
	if err != nil {
		status = "failed"
	}
	attrs := metric.WithAttributes(
		attribute.String("request", b.name),
		attribute.String("status", status),
	)

	span.SetAttributes(attribute.String("mediator.status", status))
	instrument.EndSpan(span, err)

	if b.counter != nil {
		b.counter.Add(ctx, 1, attrs)
	}
	if b.duration != nil {
		b.duration.Record(ctx, float64(clock.Since(b.clock, start).Milliseconds()), attrs)
	}

	return res, err
}

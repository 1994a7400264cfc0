package mediator

import (
	"context"
	"log/slog"
	"reflect"
	"time"

	"github.com/shandysiswandi/gopatient/internal/pkg/clock"
	"github.com/shandysiswandi/gopatient/internal/pkg/goerror"
	"github.com/shandysiswandi/gopatient/internal/pkg/result"
)

// LoggingBehavior logs the outcome and latency of every dispatch that passed
// validation.
type LoggingBehavior[Req, Res any] struct {
	clock clock.Clocker
	name  string
}

// NewLoggingBehavior returns a LoggingBehavior. A nil clock uses wall time.
func NewLoggingBehavior[Req, Res any](clk clock.Clocker) *LoggingBehavior[Req, Res] {
	if clk == nil {
		clk = clock.New()
	}
	return &LoggingBehavior[Req, Res]{clock: clk, name: reflect.TypeFor[Req]().String()}
}

// Handle implements Behavior.
func (b *LoggingBehavior[Req, Res]) Handle(ctx context.Context, req Req, next Next[Res]) (Res, error) {
	if next == nil {
		var zero Res
		return zero, goerror.NewServer(ErrNilNext)
	}

	start := b.clock.Now()
	res, err := next(ctx)
	latency := clock.Since(b.clock, start)

	if err != nil {
		slog.ErrorContext(ctx, "mediator: request failed",
			"request", b.name,
			"latency", latency.Round(time.Microsecond).String(),
			"error", err,
		)
		return res, err
	}

	slog.InfoContext(ctx, "mediator: request handled",
		"request", b.name,
		"status", statusOf(res),
		"latency", latency.Round(time.Microsecond).String(),
	)
	return res, nil
}

func statusOf(res any) string {
	if r, ok := res.(result.Resulter); ok {
		return r.Status().String()
	}
	return "n/a"
}

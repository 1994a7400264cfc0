package mediator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/gopatient/internal/pkg/instrument"
	"github.com/shandysiswandi/gopatient/internal/pkg/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// stepClock advances by step on every read.
type stepClock struct {
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

type meteredInstrumentation struct {
	instrument.Instrumentation
	provider *sdkmetric.MeterProvider
}

func (m meteredInstrumentation) Meter(name string) metric.Meter {
	return m.provider.Meter(name)
}

func collectHistogram(t *testing.T, reader sdkmetric.Reader, name string) metricdata.HistogramDataPoint[float64] {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			hist, ok := m.Data.(metricdata.Histogram[float64])
			require.True(t, ok)
			require.Len(t, hist.DataPoints, 1)
			return hist.DataPoints[0]
		}
	}
	require.FailNow(t, "metric not recorded", name)
	return metricdata.HistogramDataPoint[float64]{}
}

func TestObservabilityBehavior_DurationUsesClock(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "handled"},
		{name: "failed", err: errors.New("handler failed")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := sdkmetric.NewManualReader()
			ins := meteredInstrumentation{
				Instrumentation: instrument.NewNoop(),
				provider:        sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
			}
			clk := &stepClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), step: 250 * time.Millisecond}
			b := NewObservabilityBehavior[lookupQuery, result.Result[lookupResponse]](ins, clk)
			next := &countingNext{res: result.Success(lookupResponse{ID: 1}), err: tt.err}

			_, err := b.Handle(context.Background(), lookupQuery{ID: "1"}, next.next)

			assert.Equal(t, tt.err, err)
			point := collectHistogram(t, reader, "mediator.duration")
			assert.EqualValues(t, 1, point.Count)
			assert.InDelta(t, 250, point.Sum, 0.001)
		})
	}
}

func TestObservabilityBehavior_NilNextIsWiringError(t *testing.T) {
	b := NewObservabilityBehavior[lookupQuery, result.Result[lookupResponse]](nil, nil)

	_, err := b.Handle(context.Background(), lookupQuery{ID: "1"}, nil)

	require.ErrorIs(t, err, ErrNilNext)
}

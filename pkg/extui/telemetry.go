package extui

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/justyntemme/lv2extui/pkg/extui"

// telemetry holds the instruments shared by a library and the instances
// created from it. Instruments are created once per Library.
type telemetry struct {
	tracer trace.Tracer

	// instantiations counts successful UI instantiations.
	instantiations metric.Int64Counter

	// drained counts control messages handed to the host.
	drained metric.Int64Counter

	// dropped counts write callbacks that could not be delivered.
	dropped metric.Int64Counter
}

func newTelemetry(cfg Config) *telemetry {
	meter := cfg.MeterProvider.Meter(instrumentationName)
	t := &telemetry{tracer: cfg.TracerProvider.Tracer(instrumentationName)}

	var err error
	t.instantiations, err = meter.Int64Counter(
		"extui.instantiations",
		metric.WithDescription("External UI instances created"),
		metric.WithUnit("1"),
	)
	if err != nil {
		cfg.Logger.Warn("create instantiation counter: %v", err)
		t.instantiations = noopCounter()
	}

	t.drained, err = meter.Int64Counter(
		"extui.messages.drained",
		metric.WithDescription("Control messages drained by the host"),
		metric.WithUnit("1"),
	)
	if err != nil {
		cfg.Logger.Warn("create drained counter: %v", err)
		t.drained = noopCounter()
	}

	t.dropped, err = meter.Int64Counter(
		"extui.messages.dropped",
		metric.WithDescription("Control messages dropped because the host stopped listening"),
		metric.WithUnit("1"),
	)
	if err != nil {
		cfg.Logger.Warn("create dropped counter: %v", err)
		t.dropped = noopCounter()
	}

	return t
}

func noopCounter() metric.Int64Counter {
	c, _ := noop.NewMeterProvider().Meter(instrumentationName).Int64Counter("noop")
	return c
}

func (t *telemetry) add(c metric.Int64Counter, n int64) {
	if n == 0 {
		return
	}
	c.Add(context.Background(), n)
}

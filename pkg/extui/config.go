package extui

import (
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/justyntemme/lv2extui/pkg/debug"
)

// DefaultRunInterval is the pause between two widget run calls.
const DefaultRunInterval = 100 * time.Millisecond

// Config controls how UI modules are loaded, instantiated and driven.
// Zero fields take the values of DefaultConfig.
type Config struct {
	// Logger receives lifecycle messages and dropped-message diagnostics.
	Logger *debug.Logger

	// RunInterval is the UI loop cadence used by Session.Start.
	RunInterval time.Duration

	// PluginLabel is handed to the UI as plugin_human_id. Defaults to the
	// plugin URI.
	PluginLabel string

	// DescriptorIndex is passed to the module's entry symbol.
	DescriptorIndex uint32

	MeterProvider  metric.MeterProvider
	TracerProvider trace.TracerProvider
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		Logger:         debug.Default().WithPrefix("extui"),
		RunInterval:    DefaultRunInterval,
		MeterProvider:  otel.GetMeterProvider(),
		TracerProvider: otel.GetTracerProvider(),
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Logger == nil {
		c.Logger = def.Logger
	}
	if c.RunInterval <= 0 {
		c.RunInterval = def.RunInterval
	}
	if c.MeterProvider == nil {
		c.MeterProvider = def.MeterProvider
	}
	if c.TracerProvider == nil {
		c.TracerProvider = def.TracerProvider
	}
	return c
}

// Package host holds the plugin-side state a UI controls: the control
// ports that drained UI writes are applied to.
package host

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Port is a control input of the plugin. Its value is stored in plain
// (unnormalized) units and can be read from any goroutine.
type Port struct {
	Index   uint32
	Symbol  string
	Name    string
	Min     float64
	Max     float64
	Default float64

	value atomic.Uint64
}

// Value returns the current plain value.
func (p *Port) Value() float64 {
	return math.Float64frombits(p.value.Load())
}

// SetValue stores value clamped to [Min, Max].
func (p *Port) SetValue(value float64) {
	p.value.Store(math.Float64bits(p.clamp(value)))
}

// Reset restores the default value.
func (p *Port) Reset() {
	p.SetValue(p.Default)
}

// Normalized returns the current value mapped to [0, 1].
func (p *Port) Normalized() float64 {
	return p.Normalize(p.Value())
}

// Normalize maps a plain value to [0, 1].
func (p *Port) Normalize(plain float64) float64 {
	if p.Max <= p.Min {
		return 0
	}
	normalized := (plain - p.Min) / (p.Max - p.Min)
	if normalized < 0 {
		return 0
	}
	if normalized > 1 {
		return 1
	}
	return normalized
}

// Denormalize maps a [0, 1] value to the plain range.
func (p *Port) Denormalize(normalized float64) float64 {
	return p.Min + normalized*(p.Max-p.Min)
}

func (p *Port) clamp(value float64) float64 {
	if math.IsNaN(value) {
		return p.Default
	}
	if p.Max <= p.Min {
		return p.Min
	}
	return math.Max(p.Min, math.Min(p.Max, value))
}

func (p *Port) String() string {
	return fmt.Sprintf("%d:%s=%g", p.Index, p.Symbol, p.Value())
}

// PortBuilder provides a fluent API for declaring ports.
type PortBuilder struct {
	port *Port
}

// NewPort starts a port in the range [0, 1] with default 0.
func NewPort(index uint32, symbol string) *PortBuilder {
	return &PortBuilder{
		port: &Port{
			Index:  index,
			Symbol: symbol,
			Name:   symbol,
			Max:    1,
		},
	}
}

// Name sets the human-readable name.
func (b *PortBuilder) Name(name string) *PortBuilder {
	b.port.Name = name
	return b
}

// Range sets the min and max values.
func (b *PortBuilder) Range(min, max float64) *PortBuilder {
	b.port.Min = min
	b.port.Max = max
	return b
}

// Default sets the default value, in plain units.
func (b *PortBuilder) Default(value float64) *PortBuilder {
	b.port.Default = value
	return b
}

// Build returns the port set to its default value.
func (b *PortBuilder) Build() *Port {
	b.port.Reset()
	return b.port
}

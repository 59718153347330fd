package host

import (
	"iter"
	"math"
	"slices"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/justyntemme/lv2extui/pkg/extui"
)

type sliceSource []extui.ControlMessage

func (s sliceSource) PendingControlMessages() iter.Seq[extui.ControlMessage] {
	return slices.Values(s)
}

func floatMessage(port uint32, value *float32) extui.ControlMessage {
	return extui.ControlMessage{
		PortIndex:  port,
		BufferSize: 4,
		Buffer:     unsafe.Pointer(value),
	}
}

func testPorts(t *testing.T) *Ports {
	t.Helper()
	ports := NewPorts()
	require.NoError(t, ports.Add(
		NewPort(5, "cutoff").Name("Cutoff").Range(20, 20000).Default(1000).Build(),
		NewPort(9, "gain").Build(),
	))
	return ports
}

func TestPortBuilder(t *testing.T) {
	p := NewPort(2, "drive").Range(-12, 12).Default(3).Build()

	assert.Equal(t, uint32(2), p.Index)
	assert.Equal(t, "drive", p.Name)
	assert.Equal(t, 3.0, p.Value())
	assert.InDelta(t, 0.625, p.Normalized(), 1e-9)
	assert.Equal(t, 0.0, p.Denormalize(0.5))

	p.SetValue(100)
	assert.Equal(t, 12.0, p.Value())
	p.SetValue(-100)
	assert.Equal(t, -12.0, p.Value())
	p.SetValue(math.NaN())
	assert.Equal(t, 3.0, p.Value())

	p.SetValue(6)
	p.Reset()
	assert.Equal(t, 3.0, p.Value())
	assert.Equal(t, "2:drive=3", p.String())
}

func TestPortsRegistry(t *testing.T) {
	ports := testPorts(t)

	assert.Equal(t, 2, ports.Count())
	assert.Equal(t, "cutoff", ports.Get(5).Symbol)
	assert.Nil(t, ports.Get(6))

	all := ports.All()
	require.Len(t, all, 2)
	assert.Equal(t, uint32(5), all[0].Index)
	assert.Equal(t, uint32(9), all[1].Index)

	err := ports.Add(NewPort(9, "other").Build())
	assert.ErrorContains(t, err, "port 9 (other) already registered")
	assert.Equal(t, 2, ports.Count())
}

func TestApplyControl(t *testing.T) {
	ports := testPorts(t)

	cutoff := float32(440)
	assert.True(t, ports.ApplyControl(floatMessage(5, &cutoff)))
	assert.Equal(t, 440.0, ports.Get(5).Value())

	tooLoud := float32(3)
	assert.True(t, ports.ApplyControl(floatMessage(9, &tooLoud)))
	assert.Equal(t, 1.0, ports.Get(9).Value(), "values are clamped to the port range")

	unknown := float32(0.5)
	assert.False(t, ports.ApplyControl(floatMessage(7, &unknown)))

	event := floatMessage(5, &cutoff)
	event.Protocol = 1
	assert.False(t, ports.ApplyControl(event))

	wide := floatMessage(5, &cutoff)
	wide.BufferSize = 8
	assert.False(t, ports.ApplyControl(wide))

	assert.Equal(t, 440.0, ports.Get(5).Value())
}

func TestPoll(t *testing.T) {
	ports := testPorts(t)
	first, second, stray := float32(880), float32(0.5), float32(1)

	event := floatMessage(9, &second)
	event.Protocol = 7

	applied, ignored := Poll(sliceSource{
		floatMessage(5, &first),
		floatMessage(9, &second),
		floatMessage(42, &stray),
		event,
	}, ports)

	assert.Equal(t, 2, applied)
	assert.Equal(t, 2, ignored)
	assert.Equal(t, 880.0, ports.Get(5).Value())
	assert.Equal(t, 0.5, ports.Get(9).Value())

	applied, ignored = Poll(sliceSource{}, ports)
	assert.Zero(t, applied)
	assert.Zero(t, ignored)
}

func TestPollLastWriteWins(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		port := NewPort(0, "value").Range(-1, 1).Build()
		ports := NewPorts()
		if err := ports.Add(port); err != nil {
			t.Fatal(err)
		}

		values := rapid.SliceOfN(rapid.Float32Range(-4, 4), 1, 32).Draw(t, "values")
		msgs := make(sliceSource, len(values))
		for i := range values {
			msgs[i] = floatMessage(0, &values[i])
		}

		applied, ignored := Poll(msgs, ports)
		if applied != len(values) || ignored != 0 {
			t.Fatalf("applied %d ignored %d of %d", applied, ignored, len(values))
		}

		last := math.Max(-1, math.Min(1, float64(values[len(values)-1])))
		if port.Value() != last {
			t.Fatalf("got %g, want %g", port.Value(), last)
		}
	})
}

func TestStaticInstance(t *testing.T) {
	inst := NewStaticInstance("urn:test:synth", nil)
	uri, ok := inst.URI()
	assert.True(t, ok)
	assert.Equal(t, "urn:test:synth", uri)
	assert.Nil(t, inst.Handle())

	var _ extui.PluginInstance = inst

	_, ok = NewStaticInstance("", nil).URI()
	assert.False(t, ok)
}

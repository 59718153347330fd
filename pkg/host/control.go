package host

import (
	"iter"
	"unsafe"

	"github.com/justyntemme/lv2extui/pkg/debug"
	"github.com/justyntemme/lv2extui/pkg/extui"
	"github.com/justyntemme/lv2extui/pkg/lv2"
)

// StaticInstance is a PluginInstance with a fixed handle and URI, for hosts
// that manage the plugin themselves or run a UI without one.
type StaticInstance struct {
	PluginURI string
	Ptr       unsafe.Pointer
}

// NewStaticInstance returns a plugin instance for uri. handle may be nil
// when no plugin is loaded; the UI then sees a NULL instance-access handle.
func NewStaticInstance(uri string, handle unsafe.Pointer) *StaticInstance {
	return &StaticInstance{PluginURI: uri, Ptr: handle}
}

func (s *StaticInstance) Handle() unsafe.Pointer { return s.Ptr }

func (s *StaticInstance) URI() (string, bool) { return s.PluginURI, s.PluginURI != "" }

// ApplyControl sets the port a float-protocol message addresses. It reports
// false for other protocols, payloads that are not a single float, and
// unknown ports.
func (r *Ports) ApplyControl(msg extui.ControlMessage) bool {
	if msg.Protocol != lv2.FloatProtocol {
		return false
	}
	value, ok := msg.Float32()
	if !ok {
		return false
	}
	port := r.Get(msg.PortIndex)
	if port == nil {
		return false
	}
	port.SetValue(float64(value))
	return true
}

// MessageSource is anything that yields pending UI control messages, such
// as *extui.Instance.
type MessageSource interface {
	PendingControlMessages() iter.Seq[extui.ControlMessage]
}

// Poll drains src once and applies every message to ports.
func Poll(src MessageSource, ports *Ports) (applied, ignored int) {
	for msg := range src.PendingControlMessages() {
		if ports.ApplyControl(msg) {
			applied++
			continue
		}
		ignored++
		debug.Debug("ignored control message %s", msg)
	}
	return applied, ignored
}

// Package lv2 holds the well-known URIs and protocol tags the external UI
// bridge exchanges with plugins and UI modules.
package lv2

const (
	// ExternalUIURI is the kxstudio external UI extension namespace.
	ExternalUIURI = "http://kxstudio.sf.net/ns/lv2ext/external-ui"

	// ExternalUIWidget is the UI class an external UI declares. It is the
	// only UI kind the bridge can host.
	ExternalUIWidget = ExternalUIURI + "#Widget"

	// ExternalUIHost identifies the host-callback feature.
	ExternalUIHost = ExternalUIURI + "#Host"

	// InstanceAccess identifies the feature carrying the plugin's LV2_Handle.
	InstanceAccess = "http://lv2plug.in/ns/ext/instance-access"

	// DescriptorSymbol is the entry point every UI module exports.
	DescriptorSymbol = "lv2ui_descriptor"
)

// Port protocols a UI write may carry.
const (
	// FloatProtocol is protocol 0: the buffer holds a single float.
	FloatProtocol uint32 = 0
)

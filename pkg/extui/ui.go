// Package extui hosts LV2 external UIs: UI modules that run their own event
// loop outside the audio thread and report control changes through a write
// callback.
//
// The flow is discovery (PluginUIs), loading (LoadLibrary), instantiation
// (Library.Instantiate) and then two independently scheduled halves: the
// Runner, driven from a dedicated UI goroutine, and the Instance, polled by
// the host for pending ControlMessages. Session ties them together and owns
// the teardown order.
package extui

import (
	"github.com/justyntemme/lv2extui/pkg/lv2"
)

// unknownURI stands in for a UI whose URI could not be resolved.
const unknownURI = "unknown"

// BinaryPath is a filesystem location declared by plugin metadata.
// Hostname is kept for diagnostics; loading only uses Path.
type BinaryPath struct {
	Hostname string
	Path     string
}

// Entry is one UI declared by a plugin, as exposed by the metadata store.
type Entry interface {
	// URI returns the UI's identifying URI, if it has one.
	URI() (string, bool)

	// IsA reports whether the UI declares the given class.
	IsA(classURI string) bool

	BinaryPath() (BinaryPath, bool)
	BundlePath() (BinaryPath, bool)
}

// UI is the result of classifying an Entry: *ExternalUI or *UnsupportedUI.
type UI interface {
	// UIURI returns the UI's identifying URI.
	UIURI() string

	isUI()
}

// ExternalUI is a UI the bridge can load and instantiate.
type ExternalUI struct {
	URI    string
	Binary BinaryPath
	Bundle BinaryPath
}

func (u *ExternalUI) UIURI() string { return u.URI }
func (*ExternalUI) isUI()           {}

// Load opens the UI's binary.
func (u *ExternalUI) Load(cfg Config) (*Library, error) {
	return LoadLibrary(u.Binary.Path, cfg)
}

// UnsupportedUI is a UI of any other kind.
type UnsupportedUI struct {
	URI string
}

func (u *UnsupportedUI) UIURI() string { return u.URI }
func (*UnsupportedUI) isUI()           {}

// IsExternalUI reports whether the entry declares the external UI class.
func IsExternalUI(e Entry) bool {
	return e.IsA(lv2.ExternalUIWidget)
}

// NewExternalUI builds an ExternalUI from an entry. It fails with
// ErrNotExternalUI for other UI kinds and ErrInspect when a path is missing.
func NewExternalUI(e Entry) (*ExternalUI, error) {
	if !IsExternalUI(e) {
		return nil, ErrNotExternalUI
	}

	binary, ok := e.BinaryPath()
	if !ok || binary.Path == "" {
		return nil, ErrInspect
	}
	bundle, ok := e.BundlePath()
	if !ok || bundle.Path == "" {
		return nil, ErrInspect
	}

	return &ExternalUI{
		URI:    entryURI(e),
		Binary: binary,
		Bundle: bundle,
	}, nil
}

// Classify maps one entry to a UI. Only an external UI with missing paths
// is an error; every other kind is an UnsupportedUI.
func Classify(e Entry) (UI, error) {
	if !IsExternalUI(e) {
		return &UnsupportedUI{URI: entryURI(e)}, nil
	}
	ui, err := NewExternalUI(e)
	if err != nil {
		return nil, err
	}
	return ui, nil
}

// PluginUIs classifies every entry of a plugin and fails on the first entry
// that cannot be inspected. A plugin without UI entries yields an empty
// slice.
func PluginUIs(entries []Entry) ([]UI, error) {
	uis := make([]UI, 0, len(entries))
	for i, e := range entries {
		ui, err := Classify(e)
		if err != nil {
			return nil, &EntryError{Index: i, URI: entryURI(e), Err: err}
		}
		uis = append(uis, ui)
	}
	return uis, nil
}

// PluginUIsBestEffort classifies every entry and keeps the ones that
// succeed. Failures are reported together as a *DiscoveryError.
func PluginUIsBestEffort(entries []Entry) ([]UI, error) {
	uis := make([]UI, 0, len(entries))
	var failed []*EntryError
	for i, e := range entries {
		ui, err := Classify(e)
		if err != nil {
			failed = append(failed, &EntryError{Index: i, URI: entryURI(e), Err: err})
			continue
		}
		uis = append(uis, ui)
	}
	if len(failed) > 0 {
		return uis, &DiscoveryError{Entries: failed}
	}
	return uis, nil
}

// ExternalUIs filters a discovery result down to the loadable UIs.
func ExternalUIs(uis []UI) []*ExternalUI {
	var out []*ExternalUI
	for _, ui := range uis {
		if ext, ok := ui.(*ExternalUI); ok {
			out = append(out, ext)
		}
	}
	return out
}

func entryURI(e Entry) string {
	if uri, ok := e.URI(); ok && uri != "" {
		return uri
	}
	return unknownURI
}

// Package metadata loads plugin and UI declarations from a YAML manifest.
// It stands in for a full RDF world: each declared UI is exposed as an
// extui.Entry so discovery can classify it.
package metadata

import (
	"fmt"
	"net/url"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/justyntemme/lv2extui/pkg/extui"
)

// Manifest is the on-disk form of a metadata store.
type Manifest struct {
	Plugins []*Plugin `yaml:"plugins"`
}

// Plugin is one plugin and the UIs it declares.
type Plugin struct {
	URI   string     `yaml:"uri"`
	Name  string     `yaml:"name,omitempty"`
	Ports []PortDecl `yaml:"ports,omitempty"`
	UIs   []*UIEntry `yaml:"uis,omitempty"`
}

// PortDecl declares a control input port of a plugin.
type PortDecl struct {
	Index   uint32  `yaml:"index"`
	Symbol  string  `yaml:"symbol"`
	Name    string  `yaml:"name,omitempty"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Default float64 `yaml:"default"`
}

// UIEntry is one UI declaration. Binary and Bundle are file:// URIs.
type UIEntry struct {
	ID     string   `yaml:"uri"`
	Types  []string `yaml:"types,omitempty"`
	Binary string   `yaml:"binary,omitempty"`
	Bundle string   `yaml:"bundle,omitempty"`
}

// URI implements extui.Entry.
func (e *UIEntry) URI() (string, bool) {
	return e.ID, e.ID != ""
}

// IsA implements extui.Entry.
func (e *UIEntry) IsA(classURI string) bool {
	return slices.Contains(e.Types, classURI)
}

// BinaryPath implements extui.Entry. It fails for anything but a file://
// URI with a non-empty path.
func (e *UIEntry) BinaryPath() (extui.BinaryPath, bool) {
	return ParseFileURI(e.Binary)
}

// BundlePath implements extui.Entry.
func (e *UIEntry) BundlePath() (extui.BinaryPath, bool) {
	return ParseFileURI(e.Bundle)
}

// ParseFileURI splits a file:// URI into hostname and path.
func ParseFileURI(raw string) (extui.BinaryPath, bool) {
	if raw == "" {
		return extui.BinaryPath{}, false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "file" || u.Path == "" {
		return extui.BinaryPath{}, false
	}
	return extui.BinaryPath{Hostname: u.Hostname(), Path: u.Path}, true
}

// Entries returns the plugin's UI declarations in manifest order.
func (p *Plugin) Entries() []extui.Entry {
	entries := make([]extui.Entry, len(p.UIs))
	for i, ui := range p.UIs {
		entries[i] = ui
	}
	return entries
}

// Store indexes a manifest by plugin URI.
type Store struct {
	plugins []*Plugin
	byURI   map[string]*Plugin
}

// Load reads and indexes the manifest at path.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	store, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return store, nil
}

// Parse indexes a manifest held in memory.
func Parse(data []byte) (*Store, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return NewStore(m)
}

// NewStore indexes m. Plugins without a URI, duplicate plugin URIs and
// ports with an inverted range are rejected.
func NewStore(m Manifest) (*Store, error) {
	s := &Store{byURI: make(map[string]*Plugin, len(m.Plugins))}
	for i, p := range m.Plugins {
		if p == nil || p.URI == "" {
			return nil, fmt.Errorf("plugin %d has no uri", i)
		}
		if _, exists := s.byURI[p.URI]; exists {
			return nil, fmt.Errorf("duplicate plugin %s", p.URI)
		}
		for _, port := range p.Ports {
			if port.Max < port.Min {
				return nil, fmt.Errorf("plugin %s: port %d (%s) has max %g below min %g",
					p.URI, port.Index, port.Symbol, port.Max, port.Min)
			}
		}
		s.byURI[p.URI] = p
		s.plugins = append(s.plugins, p)
	}
	return s, nil
}

// Plugin returns the plugin with the given URI.
func (s *Store) Plugin(uri string) (*Plugin, bool) {
	p, ok := s.byURI[uri]
	return p, ok
}

// Plugins returns every plugin in manifest order.
func (s *Store) Plugins() []*Plugin {
	return slices.Clone(s.plugins)
}

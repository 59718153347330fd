package extui

import (
	"context"
	"fmt"
	"sync"
	"unsafe"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/justyntemme/lv2extui/pkg/lv2"
)

// Library is an opened UI module and the descriptor resolved from it.
//
// The module is never unmapped: a live widget may still call into it. The
// descriptor copy is freed by Close once no Instance refers to it.
type Library struct {
	path       string
	handle     unsafe.Pointer
	descriptor unsafe.Pointer
	uri        string

	cfg Config
	tel *telemetry

	mu        sync.Mutex
	instances int
	closed    bool
}

// LoadLibrary opens the UI module at path and resolves its descriptor.
func LoadLibrary(path string, cfg Config) (*Library, error) {
	cfg = cfg.withDefaults()
	tel := newTelemetry(cfg)

	_, span := tel.tracer.Start(context.Background(), "extui.load")
	defer span.End()
	span.SetAttributes(attribute.String("extui.binary", path))

	handle, err := dlopen(path)
	if err != nil {
		err = &LoadLibraryError{Path: path, Err: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, "dlopen failed")
		return nil, err
	}

	lib, err := newLibrary(path, handle, dlsym(handle, lv2.DescriptorSymbol), cfg, tel)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "descriptor resolution failed")
		return nil, err
	}

	span.SetAttributes(attribute.String("extui.descriptor", lib.uri))
	cfg.Logger.Info("loaded external UI %s from %s", lib.uri, path)
	return lib, nil
}

// newLibrary resolves the descriptor through an already located entry
// function.
func newLibrary(path string, handle, entry unsafe.Pointer, cfg Config, tel *telemetry) (*Library, error) {
	if entry == nil {
		return nil, fmt.Errorf("%s: symbol %s not found: %w", path, lv2.DescriptorSymbol, ErrLoadDescriptor)
	}

	d := copyDescriptor(entry, cfg.DescriptorIndex)
	if d == nil {
		return nil, fmt.Errorf("%s: no descriptor at index %d: %w", path, cfg.DescriptorIndex, ErrLoadDescriptor)
	}

	return &Library{
		path:       path,
		handle:     handle,
		descriptor: d,
		uri:        descriptorURI(d),
		cfg:        cfg,
		tel:        tel,
	}, nil
}

// Path returns the path the module was loaded from.
func (l *Library) Path() string {
	return l.path
}

// URI returns the URI declared by the descriptor.
func (l *Library) URI() string {
	return l.uri
}

func (l *Library) acquire() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return fmt.Errorf("library %s: %w", l.path, ErrClosed)
	}
	l.instances++
	return nil
}

func (l *Library) release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.instances > 0 {
		l.instances--
	}
}

// Close frees the descriptor. It fails with ErrUIActive while instances
// created from this library are open.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	if l.instances > 0 {
		return fmt.Errorf("library %s has %d open instances: %w", l.path, l.instances, ErrUIActive)
	}

	l.closed = true
	freeDescriptor(l.descriptor)
	l.descriptor = nil
	return nil
}

package extui

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotExternalUI is returned when a UI entry is not an external UI.
	// Discovery reports such entries as UnsupportedUI instead of failing.
	ErrNotExternalUI = errors.New("UI is not an external UI")

	// ErrInspect is returned when a UI entry lacks its binary or bundle path.
	ErrInspect = errors.New("failed to inspect UI information")

	// ErrLoadDescriptor is returned when the UI module has no descriptor
	// entry symbol or the symbol returns no descriptor.
	ErrLoadDescriptor = errors.New("failed to load UI descriptor")

	// ErrFunctionUnavailable is wrapped by an InstantiateError when a
	// widget or descriptor function is absent.
	ErrFunctionUnavailable = errors.New("no such function available")

	// ErrClosed is returned by operations on a closed Library, Instance,
	// Runner or Session.
	ErrClosed = errors.New("external UI closed")

	// ErrUIActive is returned when closing would free memory a live UI can
	// still reach: an Instance whose Runner is open, or a Library with open
	// instances.
	ErrUIActive = errors.New("external UI still active")
)

// LoadLibraryError reports a UI module the dynamic loader could not open.
type LoadLibraryError struct {
	Path string
	Err  error
}

func (e *LoadLibraryError) Error() string {
	return fmt.Sprintf("failed to load external UI library %s: %v", e.Path, e.Err)
}

func (e *LoadLibraryError) Unwrap() error {
	return e.Err
}

// InstantiateError reports a failure while building the instantiation
// arguments, invoking the UI's instantiate function, or calling a widget
// lifecycle function.
type InstantiateError struct {
	Reason string
	Err    error
}

func (e *InstantiateError) Error() string {
	return "failed to instantiate UI: " + e.Reason
}

func (e *InstantiateError) Unwrap() error {
	return e.Err
}

func instantiateError(reason string) error {
	return &InstantiateError{Reason: reason}
}

func unavailable(op string) error {
	return &InstantiateError{
		Reason: fmt.Sprintf("no %s function available", op),
		Err:    ErrFunctionUnavailable,
	}
}

// EntryError is one UI entry that could not be classified.
type EntryError struct {
	Index int
	URI   string
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("UI entry %d (%s): %v", e.Index, e.URI, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// DiscoveryError collects the per-entry failures of a best-effort discovery.
type DiscoveryError struct {
	Entries []*EntryError
}

func (e *DiscoveryError) Error() string {
	var sb strings.Builder
	for i, entry := range e.Entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(entry.Error())
	}
	return sb.String()
}

// Unwrap exposes the per-entry errors to errors.Is and errors.As.
func (e *DiscoveryError) Unwrap() []error {
	errs := make([]error, len(e.Entries))
	for i, entry := range e.Entries {
		errs[i] = entry
	}
	return errs
}

// Package extuitest provides an in-process, headless external UI module for
// tests. Test files cannot use cgo, so the fake module lives here and is
// handed out as raw descriptor entry functions.
package extuitest

// #cgo CFLAGS: -I${SRCDIR}/../../../include -I${SRCDIR}/../../..
// #include "bridge/fake_ui.c"
//
// static int fake_plugin_instance;
// static void* fake_plugin_handle(void) { return &fake_plugin_instance; }
import "C"

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"unsafe"
)

// URI is the descriptor URI every fake module reports.
const URI = "urn:lv2extui:test:fake-ui"

// Kind selects the behavior of the fake module.
type Kind int

const (
	// Full implements instantiate, cleanup and show/hide/run. Each run
	// writes port 5 (0.25 * run count) and then port 9 (0.5).
	Full Kind = iota
	// NoLifecycle instantiates a widget without show, hide or run.
	NoLifecycle
	// NoInstantiate has a descriptor without an instantiate function.
	NoInstantiate
	// NullHandle has an instantiate function that returns NULL.
	NullHandle
	// NullWidget returns a UI handle but never sets the widget.
	NullWidget
	// Empty returns no descriptor at all.
	Empty
)

// DescriptorFunc returns the lv2ui_descriptor entry function of the fake
// module of the given kind.
func DescriptorFunc(kind Kind) unsafe.Pointer {
	return C.fake_entry(C.int(kind))
}

// PluginHandle returns a stable C pointer usable as a fake LV2_Handle.
func PluginHandle() unsafe.Pointer {
	return C.fake_plugin_handle()
}

// CleanupCount returns how many fake UIs have been cleaned up in this
// process.
func CleanupCount() int {
	return int(C.fake_cleanup_count())
}

// Widget inspects a widget created by a fake module. It is only valid until
// the owning UI instance is cleaned up.
type Widget struct {
	ptr unsafe.Pointer
}

// Inspect wraps a widget pointer returned by the fake module.
func Inspect(widget unsafe.Pointer) Widget {
	return Widget{ptr: widget}
}

func (w Widget) Shows() int { return int(C.fake_shows(w.ptr)) }
func (w Widget) Hides() int { return int(C.fake_hides(w.ptr)) }
func (w Widget) Runs() int  { return int(C.fake_runs(w.ptr)) }

// SawHostFeature reports whether instantiate received the host feature.
func (w Widget) SawHostFeature() bool { return C.fake_saw_host(w.ptr) != 0 }

// SawInstanceAccess reports whether instantiate received instance access.
func (w Widget) SawInstanceAccess() bool { return C.fake_saw_instance(w.ptr) != 0 }

// InstanceHandle returns the plugin handle received through instance access.
func (w Widget) InstanceHandle() unsafe.Pointer { return C.fake_instance_handle(w.ptr) }

// Label returns the plugin_human_id read from the host feature.
func (w Widget) Label() string { return C.GoString(C.fake_label(w.ptr)) }

func (w Widget) PluginURI() string  { return C.GoString(C.fake_plugin_uri(w.ptr)) }
func (w Widget) BundlePath() string { return C.GoString(C.fake_bundle_path(w.ptr)) }

// Write makes the UI call its write function for port with a float value,
// as it would from its own event loop.
func (w Widget) Write(port uint32, value float32) {
	C.fake_write(w.ptr, C.uint32_t(port), C.float(value))
}

// moduleSource wraps the fake module of one kind behind the exported entry
// symbol a real UI binary carries.
const moduleSource = `#include "bridge/fake_ui.c"

const LV2UI_Descriptor* lv2ui_descriptor(uint32_t index) {
	return ((LV2UI_DescriptorFunction)fake_entry(FAKE_KIND))(index);
}
`

// BuildModule compiles the fake module of the given kind into a shared
// object under tb.TempDir and returns its path. The test is skipped when no
// C compiler is available.
//
// The module has its own copy of the fake's state, so CleanupCount does not
// observe it. Widgets it creates can still be inspected.
func BuildModule(tb testing.TB, kind Kind) string {
	tb.Helper()

	cc := os.Getenv("CC")
	if cc == "" {
		cc = "cc"
	}
	if _, err := exec.LookPath(cc); err != nil {
		tb.Skipf("no C compiler to build a UI module: %v", err)
	}

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		tb.Fatal("cannot locate the fake module sources")
	}
	root := filepath.Join(filepath.Dir(file), "..", "..", "..")

	dir := tb.TempDir()
	src := filepath.Join(dir, "fake_ui_module.c")
	if err := os.WriteFile(src, []byte(moduleSource), 0o644); err != nil {
		tb.Fatal(err)
	}

	out := filepath.Join(dir, "fake_ui.so")
	cmd := exec.Command(cc, "-shared", "-fPIC",
		"-I", filepath.Join(root, "include"),
		"-I", root,
		fmt.Sprintf("-DFAKE_KIND=%d", int(kind)),
		"-o", out, src)
	if output, err := cmd.CombinedOutput(); err != nil {
		tb.Fatalf("build UI module: %v\n%s", err, output)
	}
	return out
}

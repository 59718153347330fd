package extui

// Thin Go wrappers over bridge/extui.c. No policy here: every function maps
// one C call and converts between C and Go types.

// #cgo CFLAGS: -I${SRCDIR}/../../include -I${SRCDIR}/../..
// #cgo linux LDFLAGS: -ldl
// #include "bridge/extui.c"
import "C"

import (
	"errors"
	"unsafe"
)

// dlerrorSize bounds the copied loader message.
const dlerrorSize = 512

func dlopen(path string) (unsafe.Pointer, error) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	var buf [dlerrorSize]C.char
	handle := C.extui_dlopen(cpath, &buf[0], C.size_t(len(buf)))
	if handle == nil {
		return nil, errors.New(C.GoString(&buf[0]))
	}
	return handle, nil
}

func dlsym(handle unsafe.Pointer, name string) unsafe.Pointer {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return C.extui_dlsym(handle, cname)
}

// copyDescriptor calls the entry function and returns a C-heap copy of the
// descriptor, or nil.
func copyDescriptor(fn unsafe.Pointer, index uint32) unsafe.Pointer {
	return unsafe.Pointer(C.extui_copy_descriptor(fn, C.uint32_t(index)))
}

func freeDescriptor(d unsafe.Pointer) {
	C.free(d)
}

func descriptorURI(d unsafe.Pointer) string {
	desc := (*C.LV2UI_Descriptor)(d)
	if desc.URI == nil {
		return ""
	}
	return C.GoString(desc.URI)
}

func descriptorHasInstantiate(d unsafe.Pointer) bool {
	return C.extui_has_instantiate((*C.LV2UI_Descriptor)(d)) != 0
}

func newHostRecord(label string) unsafe.Pointer {
	clabel := C.CString(label)
	defer C.free(unsafe.Pointer(clabel))
	return unsafe.Pointer(C.extui_host_new(clabel))
}

func freeHostRecord(host unsafe.Pointer) {
	C.extui_host_free((*C.LV2_External_UI_Host)(host))
}

func newFeatures(instanceHandle, host unsafe.Pointer) unsafe.Pointer {
	return unsafe.Pointer(C.extui_features_new(instanceHandle, (*C.LV2_External_UI_Host)(host)))
}

func freeFeatures(f unsafe.Pointer) {
	C.free(f)
}

func newController(producerID uintptr) unsafe.Pointer {
	return unsafe.Pointer(C.extui_controller_new(C.uintptr_t(producerID)))
}

func controllerWidget(c unsafe.Pointer) unsafe.Pointer {
	return unsafe.Pointer((*C.extui_controller)(c).widget)
}

func freeController(c unsafe.Pointer) {
	C.free(c)
}

// instantiateForeign invokes descriptor->instantiate with the write
// trampoline. The strings are only borrowed for the duration of the call.
func instantiateForeign(d unsafe.Pointer, pluginURI, bundlePath string, controller, features unsafe.Pointer) unsafe.Pointer {
	curi := C.CString(pluginURI)
	defer C.free(unsafe.Pointer(curi))
	cbundle := C.CString(bundlePath)
	defer C.free(unsafe.Pointer(cbundle))

	f := (*C.extui_features)(features)
	return unsafe.Pointer(C.extui_instantiate(
		(*C.LV2UI_Descriptor)(d),
		curi,
		cbundle,
		(*C.extui_controller)(controller),
		C.extui_features_list(f),
	))
}

func cleanupForeign(d, handle unsafe.Pointer) {
	C.extui_cleanup((*C.LV2UI_Descriptor)(d), C.LV2UI_Handle(handle))
}

func widgetShow(widget unsafe.Pointer) bool {
	return C.extui_widget_show(widget) != 0
}

func widgetHide(widget unsafe.Pointer) bool {
	return C.extui_widget_hide(widget) != 0
}

func widgetRun(widget unsafe.Pointer) bool {
	return C.extui_widget_run(widget) != 0
}

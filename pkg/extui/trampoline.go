package extui

// #include <stdint.h>
import "C"

import (
	"unsafe"

	"github.com/justyntemme/lv2extui/pkg/debug"
)

// goExtuiWrite is the target of the C write trampoline. It runs on whatever
// thread the UI calls its write function from and must never block or fail
// back into the UI.
//
//export goExtuiWrite
func goExtuiWrite(id C.uintptr_t, portIndex, bufferSize, portProtocol C.uint32_t, buffer unsafe.Pointer) {
	defer recoverPanic("goExtuiWrite")

	p := lookupProducer(uintptr(id))
	if p == nil {
		debug.Warn("control message for port %d dropped: UI runner is closed", uint32(portIndex))
		return
	}

	err := p.channel.send(ControlMessage{
		PortIndex:  uint32(portIndex),
		BufferSize: uint32(bufferSize),
		Protocol:   uint32(portProtocol),
		Buffer:     buffer,
	})
	if err != nil {
		p.log.Warn("failed to send control message from UI (port %d): %v", uint32(portIndex), err)
		p.tel.add(p.tel.dropped, 1)
	}
}

// recoverPanic keeps a panic in Go code from unwinding into C frames.
func recoverPanic(operation string) {
	if r := recover(); r != nil {
		debug.Error("panic in %s: %v", operation, r)
	}
}

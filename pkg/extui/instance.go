package extui

import (
	"fmt"
	"iter"
	"sync"
	"unsafe"

	"github.com/google/uuid"

	"github.com/justyntemme/lv2extui/pkg/debug"
)

// Instance is the host's side of an instantiated UI. It owns the
// host-callback feature, the controller record and the receiving end of the
// control channel.
type Instance struct {
	id         uuid.UUID
	lib        *Library
	descriptor unsafe.Pointer
	handle     unsafe.Pointer
	host       unsafe.Pointer
	controller unsafe.Pointer
	channel    *controlChannel
	runner     *Runner
	pluginURI  string

	tel *telemetry
	log *debug.Logger

	mu     sync.Mutex
	closed bool
}

// ID identifies this instance in logs and traces.
func (i *Instance) ID() uuid.UUID {
	return i.id
}

// PluginURI returns the URI of the plugin the UI controls.
func (i *Instance) PluginURI() string {
	return i.pluginURI
}

// Pending returns the number of queued control messages.
func (i *Instance) Pending() int {
	return i.channel.pending()
}

// PendingControlMessages drains the messages queued so far without
// blocking. Each call returns a new finite sequence; messages that arrive
// while it is being ranged over are left for the next call. A closed
// instance yields nothing.
//
// The payload of each message must be consumed before the loop body
// returns.
func (i *Instance) PendingControlMessages() iter.Seq[ControlMessage] {
	return func(yield func(ControlMessage) bool) {
		var n int64
		defer func() { i.tel.add(i.tel.drained, n) }()

		for msg := range i.channel.drain() {
			n++
			if !yield(msg) {
				return
			}
		}
	}
}

// Close destroys the UI instance. The Runner must be closed first, so no
// widget call can reach the freed host feature; otherwise Close fails with
// ErrUIActive and changes nothing.
func (i *Instance) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return nil
	}
	if !i.runner.isClosed() {
		return fmt.Errorf("instance %s: runner still open: %w", i.id, ErrUIActive)
	}

	i.closed = true
	i.channel.close()
	cleanupForeign(i.descriptor, i.handle)
	freeController(i.controller)
	freeHostRecord(i.host)
	i.handle, i.controller, i.host = nil, nil, nil
	i.lib.release()

	i.log.Info("closed UI for plugin %s", i.pluginURI)
	return nil
}

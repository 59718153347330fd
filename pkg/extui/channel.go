package extui

import (
	"fmt"
	"iter"
	"sync"
	"unsafe"

	"github.com/justyntemme/lv2extui/pkg/lv2"
)

// ControlMessage is one write callback issued by a UI.
//
// Buffer points into memory owned by the UI. It is only guaranteed valid
// until the UI runs again, so consumers must interpret or copy it within the
// drain iteration that yielded the message and never retain it.
type ControlMessage struct {
	PortIndex  uint32
	BufferSize uint32
	Protocol   uint32
	Buffer     unsafe.Pointer
}

// Bytes returns a view of the payload. The slice aliases UI memory.
func (m ControlMessage) Bytes() []byte {
	if m.Buffer == nil || m.BufferSize == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(m.Buffer), m.BufferSize)
}

// CopyPayload returns a Go-owned copy of the payload.
func (m ControlMessage) CopyPayload() []byte {
	b := m.Bytes()
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

// Float32 decodes a float protocol payload.
func (m ControlMessage) Float32() (float32, bool) {
	if m.Protocol != lv2.FloatProtocol || m.BufferSize != 4 || m.Buffer == nil {
		return 0, false
	}
	return *(*float32)(m.Buffer), true
}

func (m ControlMessage) String() string {
	return fmt.Sprintf("port=%d size=%d protocol=%d", m.PortIndex, m.BufferSize, m.Protocol)
}

// compactThreshold is the consumed prefix length above which the queue is
// shifted down instead of growing.
const compactThreshold = 64

// controlChannel is an unbounded FIFO with one producer (the UI thread,
// through the write trampoline) and one consumer (the host thread). Both
// sides hold the lock only for an append or a pop.
type controlChannel struct {
	mu     sync.Mutex
	queue  []ControlMessage
	head   int
	closed bool
}

func newControlChannel() *controlChannel {
	return &controlChannel{
		queue: make([]ControlMessage, 0, 64),
	}
}

func (c *controlChannel) send(msg ControlMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("receiver is gone: %w", ErrClosed)
	}
	c.queue = append(c.queue, msg)
	return nil
}

func (c *controlChannel) pop() (ControlMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.head >= len(c.queue) {
		return ControlMessage{}, false
	}

	msg := c.queue[c.head]
	c.queue[c.head] = ControlMessage{}
	c.head++

	switch {
	case c.head == len(c.queue):
		c.queue = c.queue[:0]
		c.head = 0
	case c.head > compactThreshold && c.head > len(c.queue)/2:
		n := copy(c.queue, c.queue[c.head:])
		c.queue = c.queue[:n]
		c.head = 0
	}

	return msg, true
}

func (c *controlChannel) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue) - c.head
}

// drain yields at most the messages queued when iteration starts. Messages
// sent during iteration are left for the next call. Stopping early leaves
// the rest queued.
func (c *controlChannel) drain() iter.Seq[ControlMessage] {
	return func(yield func(ControlMessage) bool) {
		n := c.pending()
		for i := 0; i < n; i++ {
			msg, ok := c.pop()
			if !ok {
				return
			}
			if !yield(msg) {
				return
			}
		}
	}
}

// close rejects further sends and discards queued messages.
func (c *controlChannel) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.queue = nil
	c.head = 0
}

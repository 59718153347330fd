package extui

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"
	"unsafe"

	"github.com/justyntemme/lv2extui/pkg/debug"
)

// Runner drives the widget of one UI instance. Its methods are meant to be
// called from a single UI goroutine; Close may be called from any
// goroutine and waits for an in-flight call to return.
type Runner struct {
	mu         sync.Mutex
	widget     unsafe.Pointer
	producerID uintptr
	shown      bool
	closed     bool
	log        *debug.Logger
}

// Show asks the UI to display itself.
func (r *Runner) Show() error {
	return r.call("show", func(w unsafe.Pointer) bool {
		if !widgetShow(w) {
			return false
		}
		r.shown = true
		return true
	})
}

// Hide asks the UI to hide itself.
func (r *Runner) Hide() error {
	return r.call("hide", func(w unsafe.Pointer) bool {
		if !widgetHide(w) {
			return false
		}
		r.shown = false
		return true
	})
}

// Run pumps the UI's event loop once. The UI may issue any number of write
// callbacks before it returns.
func (r *Runner) Run() error {
	return r.call("run", widgetRun)
}

func (r *Runner) call(op string, fn func(unsafe.Pointer) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("%s: %w", op, ErrClosed)
	}
	if !fn(r.widget) {
		return unavailable(op)
	}
	return nil
}

// Loop shows the UI and runs it every interval until ctx is done, then
// hides it. The goroutine is locked to its OS thread for the duration,
// since UI toolkits expect a stable thread.
func (r *Runner) Loop(ctx context.Context, interval time.Duration) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if interval <= 0 {
		interval = DefaultRunInterval
	}

	if err := r.Show(); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := r.Run(); err != nil {
			r.hideOnExit()
			return err
		}

		select {
		case <-ctx.Done():
			r.hideOnExit()
			return nil
		case <-ticker.C:
		}
	}
}

func (r *Runner) hideOnExit() {
	err := r.Hide()
	if err != nil && !errors.Is(err, ErrFunctionUnavailable) && !errors.Is(err, ErrClosed) {
		r.log.Warn("hide on exit: %v", err)
	}
}

// Close hides the widget if it is shown and detaches the producer, so later
// write callbacks are dropped. Further Show, Hide and Run calls return
// ErrClosed.
func (r *Runner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	if r.shown {
		widgetHide(r.widget)
		r.shown = false
	}

	r.closed = true
	unregisterProducer(r.producerID)
	r.widget = nil
	return nil
}

func (r *Runner) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

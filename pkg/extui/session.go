package extui

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Session is a loaded, instantiated external UI with its UI goroutine.
// Close tears it down in the only safe order: stop the UI goroutine (which
// hides the widget), close the Runner, close the Instance, close the
// Library.
type Session struct {
	lib      *Library
	instance *Instance
	runner   *Runner
	cfg      Config

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	loopErr error
	closed  bool
}

// Open loads the UI's module and instantiates it for the plugin.
func Open(ui *ExternalUI, plugin PluginInstance, cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()

	lib, err := ui.Load(cfg)
	if err != nil {
		return nil, err
	}

	inst, runner, err := lib.Instantiate(ui, plugin)
	if err != nil {
		_ = lib.Close()
		return nil, err
	}

	return newSession(lib, inst, runner, cfg), nil
}

func newSession(lib *Library, inst *Instance, runner *Runner, cfg Config) *Session {
	return &Session{
		lib:      lib,
		instance: inst,
		runner:   runner,
		cfg:      cfg,
	}
}

// ID identifies the session in logs and traces.
func (s *Session) ID() uuid.UUID {
	return s.instance.ID()
}

// Instance returns the host-side handle to drain control messages from.
func (s *Session) Instance() *Instance {
	return s.instance
}

// Start launches the UI goroutine. It returns immediately; Done is closed
// when the goroutine exits, either because Close was called or because a
// widget call failed.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("session %s: %w", s.ID(), ErrClosed)
	}
	if s.done != nil {
		return fmt.Errorf("session %s already started", s.ID())
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		if err := s.runner.Loop(ctx, s.cfg.RunInterval); err != nil {
			s.loopErr = err
			s.instance.log.Error("UI thread error: %v", err)
		}
	}()
	return nil
}

// Done is closed when the UI goroutine has returned. It is nil before
// Start.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Err returns the error the UI goroutine stopped with, once Done is closed.
func (s *Session) Err() error {
	done := s.Done()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return s.loopErr
	default:
		return nil
	}
}

// Close stops the UI goroutine, waits for its last widget call to return,
// and releases the Runner, the Instance and the Library in that order.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.cancel != nil {
		s.cancel()
		<-s.done
	}

	if err := s.runner.Close(); err != nil {
		return fmt.Errorf("close runner: %w", err)
	}
	if err := s.instance.Close(); err != nil {
		return fmt.Errorf("close instance: %w", err)
	}
	if err := s.lib.Close(); err != nil {
		return fmt.Errorf("close library: %w", err)
	}
	return nil
}

package host

import (
	"fmt"
	"sync"
)

// Ports manages the control ports of one plugin instance.
type Ports struct {
	ports map[uint32]*Port
	order []uint32
	mu    sync.RWMutex
}

// NewPorts creates an empty port registry.
func NewPorts() *Ports {
	return &Ports{
		ports: make(map[uint32]*Port),
	}
}

// Add registers ports. A port index can only be registered once.
func (r *Ports) Add(ports ...*Port) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range ports {
		if _, exists := r.ports[p.Index]; exists {
			return fmt.Errorf("port %d (%s) already registered", p.Index, p.Symbol)
		}
		r.ports[p.Index] = p
		r.order = append(r.order, p.Index)
	}
	return nil
}

// Get retrieves a port by index.
func (r *Ports) Get(index uint32) *Port {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.ports[index]
}

// Count returns the number of ports.
func (r *Ports) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}

// All returns all ports in registration order.
func (r *Ports) All() []*Port {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Port, len(r.order))
	for i, index := range r.order {
		result[i] = r.ports[index]
	}
	return result
}

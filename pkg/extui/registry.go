package extui

import (
	"sync"

	"github.com/justyntemme/lv2extui/pkg/debug"
)

// producer is the UI-thread end of a control channel. The foreign UI
// reaches it only through the integer ID stored in its controller record.
type producer struct {
	channel *controlChannel
	log     *debug.Logger
	tel     *telemetry
}

var (
	// Live producers indexed by the ID handed to C.
	producers      = make(map[uintptr]*producer)
	producersMu    sync.RWMutex
	nextProducerID uintptr = 1
)

func registerProducer(p *producer) uintptr {
	producersMu.Lock()
	defer producersMu.Unlock()
	id := nextProducerID
	nextProducerID++
	producers[id] = p
	return id
}

func unregisterProducer(id uintptr) {
	producersMu.Lock()
	defer producersMu.Unlock()
	delete(producers, id)
}

func lookupProducer(id uintptr) *producer {
	if id == 0 {
		return nil
	}
	producersMu.RLock()
	defer producersMu.RUnlock()
	return producers[id]
}

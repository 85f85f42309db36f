// Package feed turns "something changed" signals into live streams of full
// collection snapshots.
//
// A Hub fans out change signals per collection key ("users",
// "users/{ownerId}/items"). A Subscription re-reads the whole collection after
// every signal and hands the result to its consumer. Consumers always replace
// their local copy with the latest snapshot; a snapshot that was not picked up
// before the next one is ready is dropped.
package feed

import "sync"

// Hub distributes change signals to the listeners of a collection key.
// The zero value is not usable; create one with NewHub.
type Hub struct {
	mu        sync.Mutex
	listeners map[string]map[chan struct{}]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{listeners: make(map[string]map[chan struct{}]struct{})}
}

// Notify signals every listener of key. It never blocks: a listener that has
// not consumed its previous signal keeps a single pending one.
func (h *Hub) Notify(key string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.listeners[key] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Listen registers a listener for key. The returned stop function removes it
// and may be called more than once.
func (h *Hub) Listen(key string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	set, ok := h.listeners[key]
	if !ok {
		set = make(map[chan struct{}]struct{})
		h.listeners[key] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.listeners[key], ch)
			if len(h.listeners[key]) == 0 {
				delete(h.listeners, key)
			}
		})
	}
	return ch, stop
}

// Listeners returns the number of listeners registered for key.
func (h *Hub) Listeners(key string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners[key])
}

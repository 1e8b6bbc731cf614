package broadcast

import (
	"sync"

	"github.com/rs/zerolog"
)

// Subscriber is one attached stream consumer. Implementations must be
// safe for concurrent Enqueue and Close calls.
type Subscriber interface {
	ID() string
	// Enqueue hands the subscriber a payload without blocking and
	// reports false when the subscriber cannot take it.
	Enqueue(payload []byte) bool
	// Close releases the subscriber's transport. It must be idempotent.
	Close()
}

// Hub owns the live subscriber set and fans published payloads out to
// it. A subscriber that cannot keep up is removed rather than allowed
// to stall the rest.
type Hub struct {
	mu     sync.RWMutex
	subs   map[Subscriber]bool
	logger zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		subs:   make(map[Subscriber]bool),
		logger: logger,
	}
}

// Register adds a subscriber to the live set.
func (h *Hub) Register(s Subscriber) {
	h.mu.Lock()
	h.subs[s] = true
	h.mu.Unlock()
}

// Unregister removes a subscriber and closes it. Calling it again for
// the same subscriber is harmless.
func (h *Hub) Unregister(s Subscriber) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
	s.Close()
}

// Publish delivers payload to every live subscriber. It never blocks
// on a slow consumer: subscribers whose buffers are full are dropped
// from the live set and delivery to the rest proceeds.
func (h *Hub) Publish(payload []byte) {
	var stalled []Subscriber

	h.mu.RLock()
	for s := range h.subs {
		if !s.Enqueue(payload) {
			stalled = append(stalled, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range stalled {
		h.logger.Warn().Str("subscriber", s.ID()).Msg("Dropping backed-up subscriber")
		h.Unregister(s)
	}
}

// Count reports how many subscribers are currently attached.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

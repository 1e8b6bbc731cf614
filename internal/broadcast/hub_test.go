package broadcast_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/DMounas/TradePulse-HFT/internal/broadcast"
)

// mockSub is an in-memory Subscriber with a fixed buffer capacity.
type mockSub struct {
	id string

	mu     sync.Mutex
	got    [][]byte
	cap    int
	dead   bool
	closes int
}

func newMockSub(id string, capacity int) *mockSub {
	return &mockSub{id: id, cap: capacity}
}

func (m *mockSub) ID() string { return m.id }

func (m *mockSub) Enqueue(payload []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dead || len(m.got) >= m.cap {
		return false
	}
	m.got = append(m.got, payload)
	return true
}

func (m *mockSub) Close() {
	m.mu.Lock()
	m.closes++
	m.dead = true
	m.mu.Unlock()
}

func (m *mockSub) received() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.got))
	for i, b := range m.got {
		out[i] = string(b)
	}
	return out
}

func (m *mockSub) closeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

func TestPublishDeliversToAllInOrder(t *testing.T) {
	h := broadcast.NewHub(zerolog.Nop())
	subs := []*mockSub{newMockSub("a", 10), newMockSub("b", 10), newMockSub("c", 10)}
	for _, s := range subs {
		h.Register(s)
	}

	h.Publish([]byte("one"))
	h.Publish([]byte("two"))
	h.Publish([]byte("three"))

	for _, s := range subs {
		got := s.received()
		if len(got) != 3 || got[0] != "one" || got[1] != "two" || got[2] != "three" {
			t.Errorf("subscriber %s received %v, want [one two three]", s.ID(), got)
		}
	}
}

func TestPublishDropsDeadSubscriber(t *testing.T) {
	h := broadcast.NewHub(zerolog.Nop())
	alive1 := newMockSub("alive1", 10)
	dead := newMockSub("dead", 10)
	alive2 := newMockSub("alive2", 10)
	h.Register(alive1)
	h.Register(dead)
	h.Register(alive2)

	// Simulate a transport that died before the hub noticed.
	dead.Close()

	h.Publish([]byte("event"))

	if got := alive1.received(); len(got) != 1 {
		t.Errorf("alive1 received %v, want one event", got)
	}
	if got := alive2.received(); len(got) != 1 {
		t.Errorf("alive2 received %v, want one event", got)
	}
	if h.Count() != 2 {
		t.Errorf("Count() = %d after dropping dead subscriber, want 2", h.Count())
	}

	// The removal must not disturb later publishes.
	h.Publish([]byte("later"))
	if got := alive1.received(); len(got) != 2 {
		t.Errorf("alive1 received %v after second publish, want two events", got)
	}
}

func TestPublishDropsBackedUpSubscriber(t *testing.T) {
	h := broadcast.NewHub(zerolog.Nop())
	slow := newMockSub("slow", 1)
	fast := newMockSub("fast", 10)
	h.Register(slow)
	h.Register(fast)

	h.Publish([]byte("first"))
	// slow's buffer is now full; the next publish must evict it.
	h.Publish([]byte("second"))

	if h.Count() != 1 {
		t.Errorf("Count() = %d, want 1 after evicting the slow subscriber", h.Count())
	}
	if slow.closeCount() == 0 {
		t.Error("slow subscriber was evicted but never closed")
	}
	if got := fast.received(); len(got) != 2 {
		t.Errorf("fast subscriber received %v, want both events", got)
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	h := broadcast.NewHub(zerolog.Nop())
	s := newMockSub("s", 10)
	h.Register(s)

	h.Unregister(s)
	h.Unregister(s)

	if h.Count() != 0 {
		t.Errorf("Count() = %d, want 0", h.Count())
	}

	h.Publish([]byte("after"))
	if got := s.received(); len(got) != 0 {
		t.Errorf("unregistered subscriber still received %v", got)
	}
}

func TestConcurrentPublishAndChurn(t *testing.T) {
	h := broadcast.NewHub(zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s := newMockSub(fmt.Sprintf("sub-%d-%d", n, j), 4)
				h.Register(s)
				h.Publish([]byte("tick"))
				h.Unregister(s)
			}
		}(i)
	}
	wg.Wait()

	if h.Count() != 0 {
		t.Errorf("Count() = %d after churn, want 0", h.Count())
	}
}

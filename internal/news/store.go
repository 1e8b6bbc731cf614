package news

import (
	"sync"
	"time"

	"github.com/DMounas/TradePulse-HFT/models"
)

// defaultCapacity bounds how many headlines the store keeps.
const defaultCapacity = 100

// Store keeps recent headlines in memory. The oldest entries fall off
// once the capacity is reached.
type Store struct {
	mu     sync.Mutex
	items  []models.Headline
	cap    int
	nextID int64
}

func NewStore(capacity int) *Store {
	if capacity < 1 {
		capacity = defaultCapacity
	}
	return &Store{cap: capacity}
}

// Add assigns an id and timestamp and stores the headline. The stored
// copy is returned.
func (s *Store) Add(h models.Headline) models.Headline {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	h.ID = s.nextID
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}

	s.items = append(s.items, h)
	if len(s.items) > s.cap {
		copy(s.items, s.items[1:])
		s.items = s.items[:s.cap]
	}

	return h
}

// Recent returns up to limit headlines, newest first.
func (s *Store) Recent(limit int) []models.Headline {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit > len(s.items) {
		limit = len(s.items)
	}

	out := make([]models.Headline, 0, limit)
	for i := len(s.items) - 1; i >= len(s.items)-limit; i-- {
		out = append(out, s.items[i])
	}
	return out
}

// Len reports how many headlines are stored.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

package memory

import (
	"context"
	"sync"

	"github.com/figurestore/go-order-api/internal/domains/orders/domain"
	"github.com/figurestore/go-order-api/internal/domains/orders/ports"
)

var _ ports.InventoryStore = (*InventoryStore)(nil)

// InventoryStore is an in-process key-counter store for development and
// tests. It only honors the get/set contract; the reservation service owns
// the check-and-write critical section.
type InventoryStore struct {
	mu     sync.RWMutex
	counts map[domain.Kind]int
}

// NewInventoryStore starts with every counter at zero.
func NewInventoryStore() *InventoryStore {
	return &InventoryStore{counts: map[domain.Kind]int{}}
}

// NewInventoryStoreWithCounts seeds initial stock levels.
func NewInventoryStoreWithCounts(counts map[domain.Kind]int) *InventoryStore {
	store := NewInventoryStore()
	for kind, count := range counts {
		store.counts[kind] = count
	}
	return store
}

// GetCount returns the current counter; unknown variants read as zero.
func (s *InventoryStore) GetCount(_ context.Context, kind domain.Kind) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts[kind], nil
}

// SetCount overwrites the counter for a variant.
func (s *InventoryStore) SetCount(_ context.Context, kind domain.Kind, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[kind] = count
	return nil
}

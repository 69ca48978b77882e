package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/figurestore/go-order-api/internal/domains/orders/domain"
	"github.com/figurestore/go-order-api/internal/domains/orders/ports"
	"github.com/figurestore/go-order-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

type storedOrder struct {
	order     domain.Order
	createdAt time.Time
	updatedAt time.Time
}

// Repository is an in-memory order persistence adapter.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]storedOrder
	now    func() time.Time
}

func NewRepository() *Repository {
	return &Repository{orders: map[string]storedOrder{}, now: time.Now}
}

func (r *Repository) Save(_ context.Context, order *domain.Order) (*projection.Projection[*domain.Order], error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if order.ID == "" {
		return nil, errors.New("order id is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	stored := storedOrder{order: cloneOrder(order), createdAt: now, updatedAt: now}
	if existing, ok := r.orders[order.ID]; ok {
		stored.createdAt = existing.createdAt
	}
	r.orders[order.ID] = stored
	return toProjection(stored), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*projection.Projection[*domain.Order], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return toProjection(stored), nil
}

func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *Repository) List(_ context.Context) ([]*projection.Projection[*domain.Order], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*projection.Projection[*domain.Order], 0, len(r.orders))
	for _, stored := range r.orders {
		list = append(list, toProjection(stored))
	}
	return list, nil
}

func cloneOrder(order *domain.Order) domain.Order {
	clone := *order
	clone.Lines = append([]domain.Line{}, order.Lines...)
	return clone
}

func toProjection(stored storedOrder) *projection.Projection[*domain.Order] {
	clone := cloneOrder(&stored.order)
	return projection.Of(&clone, stored.createdAt, stored.updatedAt)
}

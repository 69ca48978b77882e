package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/figurestore/go-order-api/internal/domains/orders/domain"
	"github.com/figurestore/go-order-api/internal/domains/orders/ports"
)

// Reservations orchestrates check-then-reserve against the inventory
// counter store. With a plain get/set store, check+write is made a single
// critical section per figure type with a process-local mutex; no two
// concurrent reservations against the same type can both observe
// sufficient stock and overcommit it. Stores that also implement
// ports.CounterAdjuster get the read-modify-write pushed down as one
// atomic backend operation, which extends the guarantee across processes.
type Reservations struct {
	store ports.InventoryStore
	locks sync.Map // map[domain.Kind]*sync.Mutex
}

// NewReservations wires the reservation service over a counter store.
func NewReservations(store ports.InventoryStore) *Reservations {
	return &Reservations{store: store}
}

// lockKind acquires the per-type mutex and returns its unlock func.
func (r *Reservations) lockKind(kind domain.Kind) func() {
	if v, ok := r.locks.Load(kind); ok {
		m := v.(*sync.Mutex)
		m.Lock()
		return m.Unlock
	}
	m := &sync.Mutex{}
	actual, _ := r.locks.LoadOrStore(kind, m)
	mtx := actual.(*sync.Mutex)
	mtx.Lock()
	return mtx.Unlock
}

// CheckAvailable reports whether current stock covers count. Read-only:
// it never mutates the counter. A non-positive count is a request error,
// not a trivial success.
func (r *Reservations) CheckAvailable(ctx context.Context, kind domain.Kind, count int) (bool, error) {
	if count <= 0 {
		return false, fmt.Errorf("%w: got %d for %s", domain.ErrInvalidCount, count, kind)
	}
	current, err := r.store.GetCount(ctx, kind)
	if err != nil {
		return false, err
	}
	return current >= count, nil
}

// Reserve re-reads current stock under the per-type lock, verifies it
// covers count, and only then writes current minus count. It never trusts a
// prior availability check; on shortfall it fails with
// ErrInsufficientStock and performs no write. A store with an atomic
// adjust gets the whole check-and-decrement pushed down instead, which
// also serializes against writers in other processes.
func (r *Reservations) Reserve(ctx context.Context, kind domain.Kind, count int) error {
	if count <= 0 {
		return fmt.Errorf("%w: got %d for %s", domain.ErrInvalidCount, count, kind)
	}
	unlock := r.lockKind(kind)
	defer unlock()

	if adjuster, ok := r.store.(ports.CounterAdjuster); ok {
		applied, err := adjuster.AdjustCount(ctx, kind, -count)
		if err != nil {
			return err
		}
		if !applied {
			return fmt.Errorf("%w: %s cannot cover %d", ErrInsufficientStock, kind, count)
		}
		return nil
	}

	current, err := r.store.GetCount(ctx, kind)
	if err != nil {
		return err
	}
	if current < count {
		return fmt.Errorf("%w: %s has %d, requested %d", ErrInsufficientStock, kind, current, count)
	}
	return r.store.SetCount(ctx, kind, current-count)
}

// Release is the compensating increment undoing a committed reservation.
func (r *Reservations) Release(ctx context.Context, kind domain.Kind, count int) error {
	if count <= 0 {
		return fmt.Errorf("%w: got %d for %s", domain.ErrInvalidCount, count, kind)
	}
	unlock := r.lockKind(kind)
	defer unlock()

	if adjuster, ok := r.store.(ports.CounterAdjuster); ok {
		_, err := adjuster.AdjustCount(ctx, kind, count)
		return err
	}

	current, err := r.store.GetCount(ctx, kind)
	if err != nil {
		return err
	}
	return r.store.SetCount(ctx, kind, current+count)
}

// ReserveAll reserves every (type, count) pair of an order. Reservation
// across types is not globally atomic; on the first failure the lines
// already reserved in this call are released again, so a rejected order
// leaves stock exactly where it started.
func (r *Reservations) ReserveAll(ctx context.Context, quantities map[domain.Kind]int) error {
	kinds := sortedKinds(quantities)
	reserved := make([]domain.Kind, 0, len(kinds))
	for _, kind := range kinds {
		if err := r.Reserve(ctx, kind, quantities[kind]); err != nil {
			for _, prior := range reserved {
				if releaseErr := r.Release(ctx, prior, quantities[prior]); releaseErr != nil {
					err = errors.Join(err, fmt.Errorf("compensating release for %s failed: %w", prior, releaseErr))
				}
			}
			return err
		}
		reserved = append(reserved, kind)
	}
	return nil
}

// ReleaseAll returns every reserved unit of an order to stock.
func (r *Reservations) ReleaseAll(ctx context.Context, quantities map[domain.Kind]int) error {
	var errs error
	for _, kind := range sortedKinds(quantities) {
		if err := r.Release(ctx, kind, quantities[kind]); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

func sortedKinds(quantities map[domain.Kind]int) []domain.Kind {
	kinds := make([]domain.Kind, 0, len(quantities))
	for kind := range quantities {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

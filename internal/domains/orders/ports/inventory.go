package ports

import (
	"context"
	"errors"

	"github.com/figurestore/go-order-api/internal/domains/orders/domain"
)

// ErrInventoryUnavailable signals the counter store could not be reached.
// Recoverable by retry; never fatal to the process.
var ErrInventoryUnavailable = errors.New("inventory store unavailable")

// InventoryStore is the contract the core needs from the external
// key-counter service: read and write a per-variant stock level. No
// compound atomic operation is assumed; the reservation service above is
// responsible for correctness under concurrent access.
type InventoryStore interface {
	GetCount(ctx context.Context, kind domain.Kind) (int, error)
	SetCount(ctx context.Context, kind domain.Kind, count int) error
}

// CounterAdjuster is an optional extension of InventoryStore for backends
// shared by more than one process, where a process-local critical section
// around get/set cannot serialize writers. AdjustCount applies delta as a
// single atomic read-modify-write in the backend. A negative delta that
// would take the counter below zero is not applied and reports false.
type CounterAdjuster interface {
	AdjustCount(ctx context.Context, kind domain.Kind, delta int) (bool, error)
}

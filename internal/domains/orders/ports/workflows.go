package ports

import (
	"context"

	ordertypes "github.com/figurestore/go-order-api/internal/domains/orders/application/types"
)

// PersistOrderInput hands an already-reserved order to the durable
// persistence flow. The snapshot carries the reservation quantities so a
// terminal persistence failure can run the compensating release.
type PersistOrderInput struct {
	Order          ordertypes.OrderSnapshot
	IdempotencyKey string
}

// WorkflowOrchestrator exposes the durable order-persistence operation.
// Implementations must await the result; reservations are never left
// orphaned behind a fire-and-forget handle.
type WorkflowOrchestrator interface {
	PersistOrder(ctx context.Context, input PersistOrderInput) (*ordertypes.OrderReceipt, error)
}

package ports

import (
	"context"

	ordertypes "github.com/figurestore/go-order-api/internal/domains/orders/application/types"
)

// Service exposes the order fulfillment use cases to adapters (inbound port).
type Service interface {
	// SubmitOrder runs the whole fulfillment pipeline: availability check,
	// figure validation, reservation, durable persistence, total.
	SubmitOrder(ctx context.Context, input ordertypes.SubmitOrderInput) (*ordertypes.OrderReceipt, error)
	GetOrder(ctx context.Context, input ordertypes.OrderIdentifier) (*ordertypes.OrderView, error)
	// CancelOrder deletes a persisted order and releases its reserved units.
	CancelOrder(ctx context.Context, input ordertypes.OrderIdentifier) error
	// Inventory reports the current counter per figure variant.
	Inventory(ctx context.Context) ([]ordertypes.StockLevel, error)
	// SetStock overwrites a variant's counter (seeding/admin flows).
	SetStock(ctx context.Context, input ordertypes.SetStockInput) (*ordertypes.StockLevel, error)
}

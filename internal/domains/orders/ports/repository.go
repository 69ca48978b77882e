package ports

import (
	"context"
	"errors"

	"github.com/figurestore/go-order-api/internal/domains/orders/domain"
	"github.com/figurestore/go-order-api/internal/shared/projection"
)

var ErrNotFound = errors.New("order not found")

// Repository persists accepted orders. Save returns the stored projection
// carrying the accepted total, which is what the fulfillment flow reports
// back to the caller.
type Repository interface {
	Save(ctx context.Context, order *domain.Order) (*projection.Projection[*domain.Order], error)
	GetByID(ctx context.Context, id string) (*projection.Projection[*domain.Order], error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*projection.Projection[*domain.Order], error)
}

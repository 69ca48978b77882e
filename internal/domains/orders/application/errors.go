package application

import (
	"errors"
	"fmt"

	"github.com/figurestore/go-order-api/internal/domains/orders/domain"
)

var (
	// ErrInvalidRequest signals a malformed cart (non-positive count or
	// similar) before any inventory effect.
	ErrInvalidRequest = errors.New("invalid order request")
	// ErrUnavailable is the check-time outcome: current stock cannot cover
	// the requested quantity.
	ErrUnavailable = errors.New("requested quantity unavailable")
	// ErrInsufficientStock is the reservation-time outcome, distinct from
	// the check-time result because stock may change between the two.
	ErrInsufficientStock = errors.New("insufficient stock at reservation")
	// ErrPersistenceFailure wraps order-store failures after reservations
	// have been compensated.
	ErrPersistenceFailure = errors.New("order persistence failed")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidCount) {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return err
}

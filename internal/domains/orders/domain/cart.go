package domain

import (
	"errors"
	"fmt"
)

var ErrInvalidCount = errors.New("requested count must be greater than zero")

// Position is one requested line item in a cart: a figure variant, its
// measurements, and the quantity requested. Positions are transient and
// never persisted directly.
type Position struct {
	Kind       Kind
	Dimensions Dimensions
	Count      int
}

// Validate checks the quantity; geometric constraints are enforced later
// by the figure factory.
func (p Position) Validate() error {
	if p.Count <= 0 {
		return fmt.Errorf("%w: got %d for %s", ErrInvalidCount, p.Count, p.Kind)
	}
	return nil
}

// Cart is the ordered sequence of requested positions. A nil or empty
// cart is legal and yields an empty order.
type Cart []Position

// Validate checks every position's quantity up front so no inventory is
// touched for a cart that can never fulfil.
func (c Cart) Validate() error {
	for _, position := range c {
		if err := position.Validate(); err != nil {
			return err
		}
	}
	return nil
}

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Currency is the single currency the store trades in.
const Currency = "EUR"

// Line is one accepted order line: the validated figure, the reserved
// quantity, and the quantity-weighted price.
type Line struct {
	Figure    Figure
	Quantity  int
	LineTotal decimal.Decimal
}

// Order is the aggregate persisted once every position has passed both the
// availability check and figure validation. Immutable once built.
type Order struct {
	ID       string
	Lines    []Line
	Total    decimal.Decimal
	PlacedAt time.Time
}

// BuildOrder turns a cart into an order: every position goes through the
// figure factory and validation, then gets priced. Any failure aborts the
// whole build; there are no partial orders. An empty cart yields an empty
// order with a zero total.
func BuildOrder(cart Cart, prices *PriceList) (*Order, error) {
	if err := cart.Validate(); err != nil {
		return nil, err
	}
	order := &Order{
		ID:       uuid.NewString(),
		Lines:    make([]Line, 0, len(cart)),
		Total:    decimal.Zero,
		PlacedAt: time.Now().UTC(),
	}
	for _, position := range cart {
		figure, err := NewFigure(position.Kind, position.Dimensions)
		if err != nil {
			return nil, err
		}
		unitPrice, err := prices.LineTotal(figure)
		if err != nil {
			return nil, err
		}
		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(position.Count)))
		order.Lines = append(order.Lines, Line{
			Figure:    figure,
			Quantity:  position.Count,
			LineTotal: lineTotal,
		})
		order.Total = order.Total.Add(lineTotal)
	}
	return order, nil
}

// Quantities aggregates the reserved units per figure variant, the shape
// the reservation and release flows work with.
func (o *Order) Quantities() map[Kind]int {
	quantities := make(map[Kind]int, len(o.Lines))
	for _, line := range o.Lines {
		quantities[line.Figure.Kind()] += line.Quantity
	}
	return quantities
}

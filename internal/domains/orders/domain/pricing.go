package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrIncompletePriceList = errors.New("price list does not cover every figure variant")

// PriceList maps each figure variant to its markup factor. The line price
// is area times markup, computed in fixed-point decimals.
type PriceList struct {
	markups map[Kind]decimal.Decimal
}

// NewPriceList validates that the markup table covers every known variant
// with a positive markup.
func NewPriceList(markups map[Kind]decimal.Decimal) (*PriceList, error) {
	for _, kind := range Kinds {
		markup, ok := markups[kind]
		if !ok {
			return nil, fmt.Errorf("%w: missing markup for %s", ErrIncompletePriceList, kind)
		}
		if !markup.IsPositive() {
			return nil, fmt.Errorf("%w: markup for %s must be positive, got %s", ErrIncompletePriceList, kind, markup)
		}
	}
	copied := make(map[Kind]decimal.Decimal, len(markups))
	for kind, markup := range markups {
		copied[kind] = markup
	}
	return &PriceList{markups: copied}, nil
}

// DefaultPriceList carries the store's standard markups.
func DefaultPriceList() *PriceList {
	prices, err := NewPriceList(map[Kind]decimal.Decimal{
		KindTriangle: decimal.NewFromFloat(1.2),
		KindSquare:   decimal.NewFromInt(1),
		KindCircle:   decimal.NewFromFloat(0.9),
	})
	if err != nil {
		// The literal table above covers Kinds by construction.
		panic(err)
	}
	return prices
}

// Markup returns the factor for a variant.
func (p *PriceList) Markup(kind Kind) (decimal.Decimal, error) {
	markup, ok := p.markups[kind]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: missing markup for %s", ErrIncompletePriceList, kind)
	}
	return markup, nil
}

// LineTotal prices a single validated figure as area times markup.
func (p *PriceList) LineTotal(figure Figure) (decimal.Decimal, error) {
	markup, err := p.Markup(figure.Kind())
	if err != nil {
		return decimal.Decimal{}, err
	}
	area := figure.Area()
	if !isFinite(area) {
		return decimal.Decimal{}, fmt.Errorf("%w: %s area is not finite", ErrFigureInvalid, figure.Kind())
	}
	return decimal.NewFromFloat(area).Mul(markup), nil
}

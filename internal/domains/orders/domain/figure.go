package domain

import (
	"errors"
	"fmt"
	"math"
)

// Kind identifies a geometric figure variant sold by the store.
type Kind string

const (
	KindTriangle Kind = "triangle"
	KindSquare   Kind = "square"
	KindCircle   Kind = "circle"
)

// Kinds lists every figure variant the store knows about. The pricing
// table and the figure factory must both cover exactly this set.
var Kinds = []Kind{KindTriangle, KindSquare, KindCircle}

// dimensionEpsilon tolerates floating-point noise when two measurements
// are required to agree (square sides supplied twice).
const dimensionEpsilon = 1e-9

var (
	ErrUnknownFigureType = errors.New("unknown figure type")
	ErrFigureInvalid     = errors.New("figure violates geometric constraints")
)

// Dimensions carries the up-to-three measurements of a cart position.
// Unused slots are zero.
type Dimensions struct {
	A float64
	B float64
	C float64
}

// Figure is a validated geometric shape with an area formula. The set of
// implementations is closed: Triangle, Square, and Circle.
type Figure interface {
	Kind() Kind
	// Validate enforces the variant's geometric invariants.
	Validate() error
	// Area computes the surface area. Callers must Validate first; the
	// result is undefined for an invalid figure.
	Area() float64
}

// NewFigure is the single factory dispatching on the variant tag. Adding a
// new variant means extending this switch, Kinds, and the price list.
func NewFigure(kind Kind, dims Dimensions) (Figure, error) {
	var figure Figure
	switch kind {
	case KindTriangle:
		figure = Triangle{SideA: dims.A, SideB: dims.B, SideC: dims.C}
	case KindSquare:
		if dims.B != 0 && (!isFinite(dims.B) || math.Abs(dims.A-dims.B) > dimensionEpsilon) {
			return nil, fmt.Errorf("%w: square sides %v and %v differ", ErrFigureInvalid, dims.A, dims.B)
		}
		figure = Square{Side: dims.A}
	case KindCircle:
		figure = Circle{Radius: dims.A}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFigureType, kind)
	}
	if err := figure.Validate(); err != nil {
		return nil, err
	}
	return figure, nil
}

// ParseKind maps an inbound type tag onto a known variant.
func ParseKind(raw string) (Kind, error) {
	switch Kind(raw) {
	case KindTriangle, KindSquare, KindCircle:
		return Kind(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFigureType, raw)
	}
}

// Triangle is defined by its three side lengths.
type Triangle struct {
	SideA float64
	SideB float64
	SideC float64
}

func (t Triangle) Kind() Kind { return KindTriangle }

// Validate requires strictly positive finite sides satisfying the strict
// triangle inequality for every side.
func (t Triangle) Validate() error {
	if !finitePositive(t.SideA, t.SideB, t.SideC) {
		return fmt.Errorf("%w: triangle sides must be positive finite numbers", ErrFigureInvalid)
	}
	if t.SideA >= t.SideB+t.SideC || t.SideB >= t.SideA+t.SideC || t.SideC >= t.SideA+t.SideB {
		return fmt.Errorf("%w: triangle inequality not satisfied", ErrFigureInvalid)
	}
	if !isFinite(t.Area()) {
		return fmt.Errorf("%w: triangle area overflows", ErrFigureInvalid)
	}
	return nil
}

// Area uses Heron's formula over the validated sides.
func (t Triangle) Area() float64 {
	s := (t.SideA + t.SideB + t.SideC) / 2
	return math.Sqrt(s * (s - t.SideA) * (s - t.SideB) * (s - t.SideC))
}

// Square carries a single authoritative side length. It is not a general
// rectangle; the factory rejects mismatched second measurements.
type Square struct {
	Side float64
}

func (s Square) Kind() Kind { return KindSquare }

func (s Square) Validate() error {
	if !finitePositive(s.Side) {
		return fmt.Errorf("%w: square side must be a positive finite number", ErrFigureInvalid)
	}
	if !isFinite(s.Area()) {
		return fmt.Errorf("%w: square area overflows", ErrFigureInvalid)
	}
	return nil
}

func (s Square) Area() float64 {
	return s.Side * s.Side
}

// Circle is defined by its radius.
type Circle struct {
	Radius float64
}

func (c Circle) Kind() Kind { return KindCircle }

func (c Circle) Validate() error {
	if !finitePositive(c.Radius) {
		return fmt.Errorf("%w: circle radius must be a positive finite number", ErrFigureInvalid)
	}
	if !isFinite(c.Area()) {
		return fmt.Errorf("%w: circle area overflows", ErrFigureInvalid)
	}
	return nil
}

func (c Circle) Area() float64 {
	return math.Pi * c.Radius * c.Radius
}

func isFinite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

func finitePositive(vals ...float64) bool {
	for _, v := range vals {
		if v <= 0 || !isFinite(v) {
			return false
		}
	}
	return true
}

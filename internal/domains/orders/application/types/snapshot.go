package types

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/figurestore/go-order-api/internal/domains/orders/domain"
)

// LineSnapshot is the wire-safe form of an order line. Durable workflow
// payloads round-trip through JSON, so the figure is flattened to its tag
// and measurements instead of the domain interface.
type LineSnapshot struct {
	FigureType string          `json:"figureType"`
	Dimensions []float64       `json:"dimensions"`
	Quantity   int             `json:"quantity"`
	LineTotal  decimal.Decimal `json:"lineTotal"`
}

// OrderSnapshot is the wire-safe form of a built order.
type OrderSnapshot struct {
	ID       string          `json:"id"`
	Lines    []LineSnapshot  `json:"lines"`
	Total    decimal.Decimal `json:"total"`
	PlacedAt time.Time       `json:"placedAt"`
}

// SnapshotFromOrder flattens a built order for transport.
func SnapshotFromOrder(order *domain.Order) OrderSnapshot {
	snapshot := OrderSnapshot{
		ID:       order.ID,
		Lines:    make([]LineSnapshot, 0, len(order.Lines)),
		Total:    order.Total,
		PlacedAt: order.PlacedAt,
	}
	for _, line := range order.Lines {
		snapshot.Lines = append(snapshot.Lines, LineSnapshot{
			FigureType: string(line.Figure.Kind()),
			Dimensions: FigureDimensions(line.Figure),
			Quantity:   line.Quantity,
			LineTotal:  line.LineTotal,
		})
	}
	return snapshot
}

// ToOrder rebuilds the domain aggregate, re-running figure validation.
func (s OrderSnapshot) ToOrder() (*domain.Order, error) {
	order := &domain.Order{
		ID:       s.ID,
		Lines:    make([]domain.Line, 0, len(s.Lines)),
		Total:    s.Total,
		PlacedAt: s.PlacedAt,
	}
	for _, line := range s.Lines {
		kind, err := domain.ParseKind(line.FigureType)
		if err != nil {
			return nil, err
		}
		figure, err := domain.NewFigure(kind, dimensionsFromSlice(line.Dimensions))
		if err != nil {
			return nil, err
		}
		order.Lines = append(order.Lines, domain.Line{
			Figure:    figure,
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal,
		})
	}
	return order, nil
}

// Quantities returns the reserved units per variant, the shape the
// compensating release works with.
func (s OrderSnapshot) Quantities() map[string]int {
	quantities := make(map[string]int, len(s.Lines))
	for _, line := range s.Lines {
		quantities[line.FigureType] += line.Quantity
	}
	return quantities
}

// FigureDimensions lists the measurements a figure was built from.
func FigureDimensions(figure domain.Figure) []float64 {
	switch f := figure.(type) {
	case domain.Triangle:
		return []float64{f.SideA, f.SideB, f.SideC}
	case domain.Square:
		return []float64{f.Side}
	case domain.Circle:
		return []float64{f.Radius}
	default:
		return nil
	}
}

func dimensionsFromSlice(dims []float64) domain.Dimensions {
	var d domain.Dimensions
	if len(dims) > 0 {
		d.A = dims[0]
	}
	if len(dims) > 1 {
		d.B = dims[1]
	}
	if len(dims) > 2 {
		d.C = dims[2]
	}
	return d
}

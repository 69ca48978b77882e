package mapper

import (
	"time"

	ordertypes "github.com/figurestore/go-order-api/internal/domains/orders/application/types"
)

// CartPosition is the transport-layer shape of one inbound cart line.
type CartPosition struct {
	FigureType string  `json:"figureType" binding:"required"`
	SideA      float64 `json:"sideA,omitempty"`
	SideB      float64 `json:"sideB,omitempty"`
	SideC      float64 `json:"sideC,omitempty"`
	Count      int     `json:"count" binding:"required"`
}

// SubmitOrderRequest is the body of a cart submission.
type SubmitOrderRequest struct {
	Positions []CartPosition `json:"positions"`
}

// OrderReceiptResponse is the body returned for an accepted submission.
type OrderReceiptResponse struct {
	OrderID  string `json:"orderId"`
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

// OrderLineResponse is the read shape of one accepted line.
type OrderLineResponse struct {
	FigureType string    `json:"figureType"`
	Dimensions []float64 `json:"dimensions"`
	Quantity   int       `json:"quantity"`
	LineTotal  string    `json:"lineTotal"`
}

// OrderResponse is the read shape of a persisted order.
type OrderResponse struct {
	ID        string              `json:"id"`
	Lines     []OrderLineResponse `json:"lines"`
	Total     string              `json:"total"`
	Currency  string              `json:"currency"`
	PlacedAt  time.Time           `json:"placedAt"`
	CreatedAt time.Time           `json:"createdAt,omitempty"`
	UpdatedAt time.Time           `json:"updatedAt,omitempty"`
}

// StockLevelResponse reports one variant counter.
type StockLevelResponse struct {
	FigureType string `json:"figureType"`
	Count      int    `json:"count"`
}

// SetStockRequest overwrites one variant counter.
type SetStockRequest struct {
	Count int `json:"count"`
}

// ToSubmitOrderInput converts the transport cart into the application input.
func ToSubmitOrderInput(req SubmitOrderRequest, idempotencyKey string) ordertypes.SubmitOrderInput {
	positions := make([]ordertypes.PositionInput, 0, len(req.Positions))
	for _, p := range req.Positions {
		positions = append(positions, ordertypes.PositionInput{
			FigureType: p.FigureType,
			SideA:      p.SideA,
			SideB:      p.SideB,
			SideC:      p.SideC,
			Count:      p.Count,
		})
	}
	return ordertypes.SubmitOrderInput{
		Positions:      positions,
		IdempotencyKey: idempotencyKey,
	}
}

// FromReceipt converts the application receipt to the transport response.
func FromReceipt(receipt *ordertypes.OrderReceipt) OrderReceiptResponse {
	if receipt == nil {
		return OrderReceiptResponse{}
	}
	return OrderReceiptResponse{
		OrderID:  receipt.OrderID,
		Total:    receipt.Total.StringFixed(4),
		Currency: receipt.Currency,
	}
}

// FromOrderView converts the application read model to the transport response.
func FromOrderView(view *ordertypes.OrderView) OrderResponse {
	if view == nil {
		return OrderResponse{}
	}
	lines := make([]OrderLineResponse, 0, len(view.Lines))
	for _, line := range view.Lines {
		lines = append(lines, OrderLineResponse{
			FigureType: line.FigureType,
			Dimensions: line.Dimensions,
			Quantity:   line.Quantity,
			LineTotal:  line.LineTotal.StringFixed(4),
		})
	}
	return OrderResponse{
		ID:        view.ID,
		Lines:     lines,
		Total:     view.Total.StringFixed(4),
		Currency:  view.Currency,
		PlacedAt:  view.PlacedAt,
		CreatedAt: view.CreatedAt,
		UpdatedAt: view.UpdatedAt,
	}
}

// FromStockLevel converts one counter reading.
func FromStockLevel(level ordertypes.StockLevel) StockLevelResponse {
	return StockLevelResponse{FigureType: level.FigureType, Count: level.Count}
}

// FromStockLevels converts the full inventory listing.
func FromStockLevels(levels []ordertypes.StockLevel) []StockLevelResponse {
	out := make([]StockLevelResponse, 0, len(levels))
	for _, level := range levels {
		out = append(out, FromStockLevel(level))
	}
	return out
}

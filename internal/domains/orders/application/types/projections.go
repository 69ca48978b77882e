package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderReceipt is the caller-facing result of a fulfilled submission.
type OrderReceipt struct {
	OrderID  string
	Total    decimal.Decimal
	Currency string
}

// LineView is the read shape of one accepted order line.
type LineView struct {
	FigureType string
	Dimensions []float64
	Quantity   int
	LineTotal  decimal.Decimal
}

// OrderView is the read shape of a persisted order.
type OrderView struct {
	ID        string
	Lines     []LineView
	Total     decimal.Decimal
	Currency  string
	PlacedAt  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StockLevel reports the current counter for one figure variant.
type StockLevel struct {
	FigureType string
	Count      int
}

package types

// PositionInput is one inbound cart line before any validation: the raw
// variant tag, up to three measurements, and the requested quantity.
type PositionInput struct {
	FigureType string
	SideA      float64
	SideB      float64
	SideC      float64
	Count      int
}

// SubmitOrderInput carries the whole cart plus the optional client-supplied
// idempotency key for safe retries of the submission.
type SubmitOrderInput struct {
	Positions      []PositionInput
	IdempotencyKey string
}

// OrderIdentifier addresses a persisted order.
type OrderIdentifier struct {
	ID string
}

// SetStockInput sets the absolute counter for a figure variant.
type SetStockInput struct {
	FigureType string
	Count      int
}

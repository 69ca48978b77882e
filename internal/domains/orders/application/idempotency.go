package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	ordertypes "github.com/figurestore/go-order-api/internal/domains/orders/application/types"
)

type normalizedPosition struct {
	FigureType string  `json:"figureType"`
	SideA      float64 `json:"sideA"`
	SideB      float64 `json:"sideB"`
	SideC      float64 `json:"sideC"`
	Count      int     `json:"count"`
}

// FingerprintSubmitOrder builds a deterministic hash of the cart payload
// (excluding the idempotency key) so replays with a diverging cart can be
// rejected as conflicts.
func FingerprintSubmitOrder(input ordertypes.SubmitOrderInput) (string, error) {
	normalized := make([]normalizedPosition, 0, len(input.Positions))
	for _, position := range input.Positions {
		normalized = append(normalized, normalizedPosition{
			FigureType: position.FigureType,
			SideA:      position.SideA,
			SideB:      position.SideB,
			SideC:      position.SideC,
			Count:      position.Count,
		})
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

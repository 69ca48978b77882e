package figurestoreserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/figurestore/go-order-api/internal/domains/orders/adapters/http/mapper"
	ordertypes "github.com/figurestore/go-order-api/internal/domains/orders/application/types"
	ordersports "github.com/figurestore/go-order-api/internal/domains/orders/ports"
)

// StoreAPI exposes the inventory counters over HTTP.
type StoreAPI struct {
	service ordersports.Service
}

// NewStoreAPI creates a StoreAPI backed by the provided service.
func NewStoreAPI(service ordersports.Service) StoreAPI {
	return StoreAPI{service: service}
}

// Get /v1/store/inventory
// Returns the current counter per figure variant
func (api *StoreAPI) GetInventory(c *gin.Context) {
	levels, err := api.service.Inventory(c.Request.Context())
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromStockLevels(levels))
}

// Put /v1/store/inventory/:figureType
// Overwrites the counter for one figure variant
func (api *StoreAPI) SetInventory(c *gin.Context) {
	figureType := strings.TrimSpace(c.Param("figureType"))
	var payload orderhttpmapper.SetStockRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	level, err := api.service.SetStock(c.Request.Context(), ordertypes.SetStockInput{
		FigureType: figureType,
		Count:      payload.Count,
	})
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromStockLevel(*level))
}

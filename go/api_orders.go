package figurestoreserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/figurestore/go-order-api/internal/domains/orders/adapters/http/mapper"
	ordertypes "github.com/figurestore/go-order-api/internal/domains/orders/application/types"
	ordersports "github.com/figurestore/go-order-api/internal/domains/orders/ports"
)

// OrderAPI wires HTTP transport with the orders bounded context service.
type OrderAPI struct {
	service ordersports.Service
}

// NewOrderAPI creates an OrderAPI backed by the provided service.
func NewOrderAPI(service ordersports.Service) OrderAPI {
	return OrderAPI{service: service}
}

// Post /v1/orders
// Submit a cart of figures for fulfillment
func (api *OrderAPI) SubmitOrder(c *gin.Context) {
	var payload orderhttpmapper.SubmitOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	idempotencyKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	input := orderhttpmapper.ToSubmitOrderInput(payload, idempotencyKey)
	receipt, err := api.service.SubmitOrder(c.Request.Context(), input)
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromReceipt(receipt))
}

// Get /v1/orders/:orderId
// Fetch a persisted order
func (api *OrderAPI) GetOrder(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	view, err := api.service.GetOrder(c.Request.Context(), ordertypes.OrderIdentifier{ID: id})
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromOrderView(view))
}

// Delete /v1/orders/:orderId
// Cancel an order and release its reserved units
func (api *OrderAPI) CancelOrder(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	if err := api.service.CancelOrder(c.Request.Context(), ordertypes.OrderIdentifier{ID: id}); err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func orderIDParam(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("orderId"))
	if id == "" {
		respondBadRequest(c, errMissingOrderID)
		return "", false
	}
	return id, true
}

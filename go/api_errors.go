package figurestoreserver

import (
	"errors"

	"github.com/gin-gonic/gin"

	ordersapp "github.com/figurestore/go-order-api/internal/domains/orders/application"
	ordersdomain "github.com/figurestore/go-order-api/internal/domains/orders/domain"
	ordersports "github.com/figurestore/go-order-api/internal/domains/orders/ports"
	apierrors "github.com/figurestore/go-order-api/internal/shared/errors"
)

var errMissingOrderID = errors.New("orderId path parameter is required")

// respondBadRequest returns an RFC 7807 response for malformed transport input.
func respondBadRequest(c *gin.Context, err error) {
	apierrors.Respond(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
}

// respondOrderServiceError translates application and domain sentinels into
// RFC 7807 problem responses. Rejections a well-formed client can provoke
// map to 4xx; an unknown figure type slipping past transport validation is a
// server-side bug and stays 500.
func respondOrderServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, ordersports.ErrNotFound):
		apierrors.Respond(c, apierrors.ErrNotFound.WithDetail(err.Error()))
	case errors.Is(err, ordersdomain.ErrFigureInvalid),
		errors.Is(err, ordersapp.ErrInvalidRequest):
		apierrors.Respond(c, apierrors.ErrUnprocessable.WithDetail(err.Error()))
	case errors.Is(err, ordersapp.ErrUnavailable),
		errors.Is(err, ordersapp.ErrInsufficientStock):
		apierrors.Respond(c, apierrors.ErrConflict.
			WithDetail(err.Error()).
			WithExtension("reason", "insufficient-stock"))
	case errors.Is(err, ordersports.ErrIdempotencyConflict):
		apierrors.Respond(c, apierrors.ErrConflict.
			WithDetail(err.Error()).
			WithExtension("reason", "idempotency-key-reuse"))
	case errors.Is(err, ordersports.ErrInventoryUnavailable):
		apierrors.Respond(c, apierrors.ErrUnavailable.WithDetail(err.Error()))
	default:
		apierrors.Respond(c, apierrors.ErrInternal.WithDetail(err.Error()))
	}
}

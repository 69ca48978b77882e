package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	ordertypes "github.com/figurestore/go-order-api/internal/domains/orders/application/types"
	ordersports "github.com/figurestore/go-order-api/internal/domains/orders/ports"
	orderactivities "github.com/figurestore/go-order-api/internal/platform/temporal/activities/orders"
)

// RunOrderPersistenceSequence persists an already-reserved order. When the
// persist activity exhausts its retries the compensating release runs so the
// reserved units go back to stock before the failure surfaces.
func RunOrderPersistenceSequence(ctx workflow.Context, input ordersports.PersistOrderInput) (*ordertypes.OrderReceipt, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("order persistence sequence started", "orderId", input.Order.ID)
	persistOptions := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	releaseOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    5 * time.Second,
			MaximumAttempts:    3,
		},
	}

	var receipt ordertypes.OrderReceipt
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, persistOptions), orderactivities.PersistOrderActivityName, input).Get(ctx, &receipt)
	if err != nil {
		logger.Error("order persistence sequence failed", "orderId", input.Order.ID, "error", err)
		releaseCtx := workflow.WithActivityOptions(ctx, releaseOptions)
		if releaseErr := workflow.ExecuteActivity(releaseCtx, orderactivities.ReleaseReservationsActivityName, input.Order).Get(ctx, nil); releaseErr != nil {
			logger.Error("order persistence compensation failed", "orderId", input.Order.ID, "error", releaseErr)
		} else {
			logger.Info("order persistence compensated", "orderId", input.Order.ID)
		}
		return nil, err
	}
	logger.Info("order persistence sequence persisted", "orderId", receipt.OrderID)
	return &receipt, nil
}

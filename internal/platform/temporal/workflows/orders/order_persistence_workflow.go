package orders

import (
	"go.temporal.io/sdk/workflow"

	ordertypes "github.com/figurestore/go-order-api/internal/domains/orders/application/types"
	ordersports "github.com/figurestore/go-order-api/internal/domains/orders/ports"
	"github.com/figurestore/go-order-api/internal/platform/temporal/sequences"
)

const (
	// OrderPersistenceWorkflowName is the public identifier for registering the workflow.
	OrderPersistenceWorkflowName = "orders.workflows.Persistence"
	// OrderPersistenceTaskQueue is the queue consumed by the worker processing order workflows.
	OrderPersistenceTaskQueue = "ORDER_PERSISTENCE"
)

// OrderPersistenceWorkflowInput captures the payload for persisting a reserved order.
type OrderPersistenceWorkflowInput struct {
	Command ordersports.PersistOrderInput
	TraceID string
}

// OrderPersistenceWorkflow orchestrates the activities that persist an order
// aggregate, compensating the reservation if persistence terminally fails.
func OrderPersistenceWorkflow(ctx workflow.Context, input OrderPersistenceWorkflowInput) (*ordertypes.OrderReceipt, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("OrderPersistenceWorkflow started", withTraceID(input.TraceID, "orderId", input.Command.Order.ID)...)
	receipt, err := sequences.RunOrderPersistenceSequence(ctx, input.Command)
	if err != nil {
		logger.Error("OrderPersistenceWorkflow failed", withTraceID(input.TraceID, "orderId", input.Command.Order.ID, "error", err)...)
		return nil, err
	}
	logger.Info("OrderPersistenceWorkflow completed", withTraceID(input.TraceID, "orderId", receipt.OrderID)...)
	return receipt, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}

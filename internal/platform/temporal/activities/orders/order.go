package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	ordertypes "github.com/figurestore/go-order-api/internal/domains/orders/application/types"
	ordersports "github.com/figurestore/go-order-api/internal/domains/orders/ports"
)

const (
	// PersistOrderActivityName stores an already-reserved order aggregate.
	PersistOrderActivityName = "orders.activities.PersistOrder"
	// ReleaseReservationsActivityName returns the order's reserved units to
	// stock after a terminal persistence failure.
	ReleaseReservationsActivityName = "orders.activities.ReleaseReservations"
)

// OrderPersister is the slice of the application service the activities need.
type OrderPersister interface {
	SaveOrder(ctx context.Context, snapshot ordertypes.OrderSnapshot) (*ordertypes.OrderReceipt, error)
	ReleaseOrder(ctx context.Context, snapshot ordertypes.OrderSnapshot) error
}

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	persister OrderPersister
}

// NewActivities wires the order collaborators into the Temporal activities bundle.
// The persister must be built without a workflow orchestrator so the activity
// persists directly instead of re-entering Temporal.
func NewActivities(persister OrderPersister) *Activities {
	return &Activities{persister: persister}
}

// PersistOrder stores the order snapshot and returns the receipt.
func (a *Activities) PersistOrder(ctx context.Context, input ordersports.PersistOrderInput) (*ordertypes.OrderReceipt, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.persister == nil {
		logger.Error("order persist activity not initialized", "orderId", input.Order.ID)
		return nil, errors.New("order persist activity not initialized")
	}
	logger.Info("PersistOrder activity started", "orderId", input.Order.ID)
	receipt, err := a.persister.SaveOrder(ctx, input.Order)
	if err != nil {
		logger.Error("PersistOrder activity failed", "orderId", input.Order.ID, "error", err)
		return nil, err
	}
	logger.Info("PersistOrder activity completed", "orderId", receipt.OrderID, "total", receipt.Total.String())
	return receipt, nil
}

// ReleaseReservations increments the counters back by the snapshot quantities.
// Safe to retry only via the heartbeat guard, a double release would
// overstate stock.
func (a *Activities) ReleaseReservations(ctx context.Context, snapshot ordertypes.OrderSnapshot) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.persister == nil {
		logger.Error("order release activity not initialized", "orderId", snapshot.ID)
		return errors.New("order release activity not initialized")
	}

	var hb releaseHeartbeat
	if activity.HasHeartbeatDetails(ctx) {
		_ = activity.GetHeartbeatDetails(ctx, &hb)
	}
	if hb.Completed {
		logger.Info("ReleaseReservations already completed in prior attempt; skipping", "orderId", snapshot.ID)
		return nil
	}

	logger.Info("ReleaseReservations activity started", "orderId", snapshot.ID)
	if err := a.persister.ReleaseOrder(ctx, snapshot); err != nil {
		logger.Error("ReleaseReservations activity failed", "orderId", snapshot.ID, "error", err)
		return err
	}
	activity.RecordHeartbeat(ctx, releaseHeartbeat{Completed: true})
	logger.Info("ReleaseReservations activity completed", "orderId", snapshot.ID)
	return nil
}

type releaseHeartbeat struct {
	Completed bool
}

package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	ordertypes "github.com/figurestore/go-order-api/internal/domains/orders/application/types"
	"github.com/figurestore/go-order-api/internal/domains/orders/ports"
	orderworkflows "github.com/figurestore/go-order-api/internal/platform/temporal/workflows/orders"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalOrderWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineOrderWorkflows)(nil)
)

// TemporalOrderWorkflows starts order persistence workflows on a Temporal cluster.
type TemporalOrderWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalOrderWorkflows wires a Temporal client into the orchestrator.
func NewTemporalOrderWorkflows(c client.Client) *TemporalOrderWorkflows {
	return &TemporalOrderWorkflows{client: c, taskQueue: orderworkflows.OrderPersistenceTaskQueue}
}

// PersistOrder starts the Temporal workflow that persists a reserved order
// and blocks for its receipt. A replayed idempotency key attaches to the
// already-running workflow instead of starting a second one.
func (o *TemporalOrderWorkflows) PersistOrder(ctx context.Context, input ports.PersistOrderInput) (*ordertypes.OrderReceipt, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal order workflows not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildOrderPersistenceWorkflowID(input, traceComponent)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		orderworkflows.OrderPersistenceWorkflow,
		orderworkflows.OrderPersistenceWorkflowInput{Command: input, TraceID: traceComponent},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) && strings.TrimSpace(input.IdempotencyKey) != "" {
			existingRun := o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
			var receipt ordertypes.OrderReceipt
			if err := existingRun.Get(ctx, &receipt); err != nil {
				return nil, err
			}
			return &receipt, nil
		}
		return nil, err
	}
	var receipt ordertypes.OrderReceipt
	if err := run.Get(ctx, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// InlineOrderWorkflows persists directly without Temporal, useful for tests
// or dev fallbacks. A persistence failure triggers the compensating release
// immediately since no durable retry will happen.
type InlineOrderWorkflows struct {
	persister OrderPersister
}

// OrderPersister is the slice of the application service the inline path needs.
type OrderPersister interface {
	SaveOrder(ctx context.Context, snapshot ordertypes.OrderSnapshot) (*ordertypes.OrderReceipt, error)
	ReleaseOrder(ctx context.Context, snapshot ordertypes.OrderSnapshot) error
}

// NewInlineOrderWorkflows wraps the order persister for synchronous execution.
func NewInlineOrderWorkflows(persister OrderPersister) *InlineOrderWorkflows {
	return &InlineOrderWorkflows{persister: persister}
}

// PersistOrder saves synchronously, releasing the reservation on failure.
func (o *InlineOrderWorkflows) PersistOrder(ctx context.Context, input ports.PersistOrderInput) (*ordertypes.OrderReceipt, error) {
	if o == nil || o.persister == nil {
		return nil, errors.New("inline order workflows not configured")
	}
	receipt, err := o.persister.SaveOrder(ctx, input.Order)
	if err != nil {
		if releaseErr := o.persister.ReleaseOrder(ctx, input.Order); releaseErr != nil {
			return nil, errors.Join(err, releaseErr)
		}
		return nil, err
	}
	return receipt, nil
}

func buildOrderPersistenceWorkflowID(input ports.PersistOrderInput, traceComponent string) string {
	if key := strings.TrimSpace(input.IdempotencyKey); key != "" {
		return fmt.Sprintf("order-persistence-idem-%s", hashIdempotencyKey(key))
	}
	idComponent := input.Order.ID
	if idComponent == "" {
		idComponent = fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("order-persistence-%s-%s", idComponent, traceComponent)
}

func hashIdempotencyKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	// First 16 hex chars keep workflow IDs readable while remaining deterministic.
	return hex.EncodeToString(sum[:8])
}

func workflowTraceComponent(ctx context.Context) string {
	if traceID := workflowTraceID(ctx); traceID != "" {
		return traceID
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	traceID := spanCtx.TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}

package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/figurestore/go-order-api/internal/domains/orders/application"
	ordertypes "github.com/figurestore/go-order-api/internal/domains/orders/application/types"
	"github.com/figurestore/go-order-api/internal/domains/orders/domain"
	"github.com/figurestore/go-order-api/internal/domains/orders/ports"
)

const tracerName = "github.com/figurestore/go-order-api/internal/domains/orders/adapters/observability/service"

// Service decorates an orders application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// SubmitOrder runs the fulfillment pipeline with instrumentation. Rejections
// are counted per reason so shortage spikes are visible without log digging.
func (s *Service) SubmitOrder(ctx context.Context, input ordertypes.SubmitOrderInput) (*ordertypes.OrderReceipt, error) {
	ctx, span := s.startSpan(ctx, "Service.SubmitOrder",
		attribute.Int("order.positions", len(input.Positions)),
	)
	defer span.End()

	s.logInfo(ctx, "submitting order", slog.Int("positions", len(input.Positions)))
	result, err := s.inner.SubmitOrder(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, rejectionReason(err))
		return nil, s.handleError(ctx, span, err, "failed to submit order", slog.Int("positions", len(input.Positions)))
	}
	if result != nil {
		total, _ := result.Total.Float64()
		span.SetAttributes(
			attribute.String("order.id", result.OrderID),
			attribute.Float64("order.total", total),
		)
		s.metrics.recordSubmitted(ctx, total)
		s.logInfo(ctx, "order submitted",
			slog.String("order.id", result.OrderID),
			slog.String("order.total", result.Total.String()),
			slog.String("order.currency", result.Currency),
		)
	}
	return result, nil
}

// GetOrder loads a single persisted order.
func (s *Service) GetOrder(ctx context.Context, input ordertypes.OrderIdentifier) (*ordertypes.OrderView, error) {
	ctx, span := s.startSpan(ctx, "Service.GetOrder", attribute.String("order.id", input.ID))
	defer span.End()

	s.logInfo(ctx, "loading order", slog.String("order.id", input.ID))
	result, err := s.inner.GetOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order.id", input.ID))
	}
	if result != nil {
		span.SetAttributes(attribute.Int("order.lines", len(result.Lines)))
		s.logInfo(ctx, "order loaded", slog.String("order.id", result.ID), slog.Int("lines", len(result.Lines)))
	}
	return result, nil
}

// CancelOrder deletes an order and releases its reserved units.
func (s *Service) CancelOrder(ctx context.Context, input ordertypes.OrderIdentifier) error {
	ctx, span := s.startSpan(ctx, "Service.CancelOrder", attribute.String("order.id", input.ID))
	defer span.End()

	s.logInfo(ctx, "cancelling order", slog.String("order.id", input.ID))
	if err := s.inner.CancelOrder(ctx, input); err != nil {
		return s.handleError(ctx, span, err, "failed to cancel order", slog.String("order.id", input.ID))
	}
	s.metrics.recordCancelled(ctx)
	s.logInfo(ctx, "order cancelled", slog.String("order.id", input.ID))
	return nil
}

// Inventory reports the counter per figure variant.
func (s *Service) Inventory(ctx context.Context) ([]ordertypes.StockLevel, error) {
	ctx, span := s.startSpan(ctx, "Service.Inventory")
	defer span.End()

	s.logInfo(ctx, "reading inventory")
	result, err := s.inner.Inventory(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to read inventory")
	}
	span.SetAttributes(attribute.Int("inventory.variants", len(result)))
	return result, nil
}

// SetStock overwrites a variant counter.
func (s *Service) SetStock(ctx context.Context, input ordertypes.SetStockInput) (*ordertypes.StockLevel, error) {
	ctx, span := s.startSpan(ctx, "Service.SetStock",
		attribute.String("inventory.figure_type", input.FigureType),
		attribute.Int("inventory.count", input.Count),
	)
	defer span.End()

	s.logInfo(ctx, "setting stock", slog.String("figure_type", input.FigureType), slog.Int("count", input.Count))
	result, err := s.inner.SetStock(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to set stock", slog.String("figure_type", input.FigureType))
	}
	s.logInfo(ctx, "stock set", slog.String("figure_type", input.FigureType), slog.Int("count", input.Count))
	return result, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnknownFigureType):
		return "unknown_figure_type"
	case errors.Is(err, domain.ErrFigureInvalid):
		return "invalid_figure"
	case errors.Is(err, application.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, application.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, application.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, application.ErrPersistenceFailure):
		return "persistence_failure"
	case errors.Is(err, ports.ErrIdempotencyConflict):
		return "idempotency_conflict"
	case errors.Is(err, ports.ErrInventoryUnavailable):
		return "inventory_unavailable"
	default:
		return "internal"
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	ordersSubmitted metric.Int64Counter
	ordersRejected  metric.Int64Counter
	ordersCancelled metric.Int64Counter
	orderTotals     metric.Float64Histogram
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersSubmitted, _ := m.Int64Counter("orders.service.submitted", metric.WithDescription("Number of orders accepted"))
	ordersRejected, _ := m.Int64Counter("orders.service.rejected", metric.WithDescription("Number of order submissions rejected"))
	ordersCancelled, _ := m.Int64Counter("orders.service.cancelled", metric.WithDescription("Number of orders cancelled"))
	orderTotals, _ := m.Float64Histogram("orders.service.total", metric.WithDescription("Distribution of accepted order totals"))
	return serviceMetrics{
		ordersSubmitted: ordersSubmitted,
		ordersRejected:  ordersRejected,
		ordersCancelled: ordersCancelled,
		orderTotals:     orderTotals,
	}
}

func (m serviceMetrics) recordSubmitted(ctx context.Context, total float64) {
	addCounter(ctx, m.ordersSubmitted, 1)
	if m.orderTotals != nil {
		m.orderTotals.Record(ctx, total)
	}
}

func (m serviceMetrics) recordRejected(ctx context.Context, reason string) {
	addCounter(ctx, m.ordersRejected, 1, attribute.String("order.rejection_reason", reason))
}

func (m serviceMetrics) recordCancelled(ctx context.Context) {
	addCounter(ctx, m.ordersCancelled, 1)
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)

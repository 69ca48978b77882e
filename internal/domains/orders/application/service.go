package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	ordertypes "github.com/figurestore/go-order-api/internal/domains/orders/application/types"
	"github.com/figurestore/go-order-api/internal/domains/orders/domain"
	"github.com/figurestore/go-order-api/internal/domains/orders/ports"
	"github.com/figurestore/go-order-api/internal/shared/projection"
)

// Service is the fulfillment orchestrator. A submission moves through
// availability checks, figure construction, reservation, and durable
// persistence; any rejection before persistence leaves inventory exactly
// where it started.
type Service struct {
	repo         ports.Repository
	reservations *Reservations
	prices       *domain.PriceList
	persister    ports.WorkflowOrchestrator
	idempotency  ports.IdempotencyStore
}

// NewService wires the fulfillment service. A nil price list falls back to
// the store defaults; persister and idempotency are optional and default to
// direct persistence and no replay protection.
func NewService(repo ports.Repository, inventory ports.InventoryStore, prices *domain.PriceList, persister ports.WorkflowOrchestrator, idempotency ports.IdempotencyStore) *Service {
	if prices == nil {
		prices = domain.DefaultPriceList()
	}
	return &Service{
		repo:         repo,
		reservations: NewReservations(inventory),
		prices:       prices,
		persister:    persister,
		idempotency:  idempotency,
	}
}

// Reservations exposes the reservation service for adapters that need the
// compensating release (cancellation, durable workflows).
func (s *Service) Reservations() *Reservations {
	return s.reservations
}

// WithOrchestrator returns a service that persists through the given
// orchestrator while sharing every other collaborator with the receiver.
// Sharing matters for the reservations: a compensating release issued by
// the orchestrator must serialize with reservations taken here, so both
// handles go through the same per-variant critical sections.
func (s *Service) WithOrchestrator(persister ports.WorkflowOrchestrator) *Service {
	derived := *s
	derived.persister = persister
	return &derived
}

// SubmitOrder runs the pipeline: replay check, cart validation, per-line
// availability checks, order build, reservation, awaited persistence.
func (s *Service) SubmitOrder(ctx context.Context, input ordertypes.SubmitOrderInput) (*ordertypes.OrderReceipt, error) {
	fingerprint, replay, err := s.replayedReceipt(ctx, input)
	if err != nil {
		return nil, err
	}
	if replay != nil {
		return replay, nil
	}

	cart, err := cartFromInput(input)
	if err != nil {
		return nil, mapError(err)
	}

	if err := s.checkAvailability(ctx, cart); err != nil {
		return nil, err
	}

	order, err := domain.BuildOrder(cart, s.prices)
	if err != nil {
		return nil, mapError(err)
	}

	if err := s.reservations.ReserveAll(ctx, order.Quantities()); err != nil {
		return nil, mapError(err)
	}

	receipt, err := s.persist(ctx, order, input.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	s.recordIdempotency(ctx, input.IdempotencyKey, fingerprint, receipt.OrderID)
	return receipt, nil
}

// GetOrder loads a persisted order.
func (s *Service) GetOrder(ctx context.Context, input ordertypes.OrderIdentifier) (*ordertypes.OrderView, error) {
	stored, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return orderViewOf(stored), nil
}

// CancelOrder deletes a persisted order and returns its reserved units to
// stock. Both must happen; a failed release is surfaced rather than
// dropped so the counters can be repaired.
func (s *Service) CancelOrder(ctx context.Context, input ordertypes.OrderIdentifier) error {
	stored, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, input.ID); err != nil {
		return err
	}
	return s.reservations.ReleaseAll(ctx, stored.Entity.Quantities())
}

// Inventory reads the current counter for every known variant.
func (s *Service) Inventory(ctx context.Context) ([]ordertypes.StockLevel, error) {
	levels := make([]ordertypes.StockLevel, 0, len(domain.Kinds))
	for _, kind := range domain.Kinds {
		count, err := s.reservations.store.GetCount(ctx, kind)
		if err != nil {
			return nil, err
		}
		levels = append(levels, ordertypes.StockLevel{FigureType: string(kind), Count: count})
	}
	return levels, nil
}

// SetStock overwrites a variant's counter.
func (s *Service) SetStock(ctx context.Context, input ordertypes.SetStockInput) (*ordertypes.StockLevel, error) {
	kind, err := domain.ParseKind(input.FigureType)
	if err != nil {
		return nil, err
	}
	if input.Count < 0 {
		return nil, fmt.Errorf("%w: stock level must not be negative", ErrInvalidRequest)
	}
	if err := s.reservations.store.SetCount(ctx, kind, input.Count); err != nil {
		return nil, err
	}
	return &ordertypes.StockLevel{FigureType: string(kind), Count: input.Count}, nil
}

// SaveOrder persists a built order and returns the accepted receipt. It is
// the persistence step of the pipeline, shared by the inline path and the
// durable workflow activities; it performs no compensation itself.
func (s *Service) SaveOrder(ctx context.Context, snapshot ordertypes.OrderSnapshot) (*ordertypes.OrderReceipt, error) {
	order, err := snapshot.ToOrder()
	if err != nil {
		return nil, err
	}
	stored, err := s.repo.Save(ctx, order)
	if err != nil {
		return nil, err
	}
	return &ordertypes.OrderReceipt{
		OrderID:  stored.Entity.ID,
		Total:    stored.Entity.Total,
		Currency: domain.Currency,
	}, nil
}

// ReleaseOrder is the compensating release for an order whose persistence
// failed terminally: every reserved unit goes back to stock.
func (s *Service) ReleaseOrder(ctx context.Context, snapshot ordertypes.OrderSnapshot) error {
	quantities := make(map[domain.Kind]int, len(snapshot.Lines))
	for figureType, count := range snapshot.Quantities() {
		kind, err := domain.ParseKind(figureType)
		if err != nil {
			return err
		}
		quantities[kind] = count
	}
	return s.reservations.ReleaseAll(ctx, quantities)
}

func (s *Service) persist(ctx context.Context, order *domain.Order, idempotencyKey string) (*ordertypes.OrderReceipt, error) {
	snapshot := ordertypes.SnapshotFromOrder(order)
	if s.persister != nil {
		receipt, err := s.persister.PersistOrder(ctx, ports.PersistOrderInput{Order: snapshot, IdempotencyKey: idempotencyKey})
		if err != nil {
			return nil, wrapPersistence(err)
		}
		return receipt, nil
	}
	// Direct path: compensate immediately on failure so the reservation is
	// never orphaned.
	receipt, err := s.SaveOrder(ctx, snapshot)
	if err != nil {
		if releaseErr := s.ReleaseOrder(ctx, snapshot); releaseErr != nil {
			err = errors.Join(err, releaseErr)
		}
		return nil, wrapPersistence(err)
	}
	return receipt, nil
}

func (s *Service) replayedReceipt(ctx context.Context, input ordertypes.SubmitOrderInput) (string, *ordertypes.OrderReceipt, error) {
	if s.idempotency == nil || input.IdempotencyKey == "" {
		return "", nil, nil
	}
	fingerprint, err := FingerprintSubmitOrder(input)
	if err != nil {
		return "", nil, err
	}
	record, err := s.idempotency.Get(ctx, input.IdempotencyKey)
	if err != nil {
		return "", nil, err
	}
	if record == nil {
		return fingerprint, nil, nil
	}
	if record.RequestHash != fingerprint {
		return "", nil, ports.ErrIdempotencyConflict
	}
	stored, err := s.repo.GetByID(ctx, record.OrderID)
	if err != nil {
		return "", nil, err
	}
	return fingerprint, &ordertypes.OrderReceipt{
		OrderID:  stored.Entity.ID,
		Total:    stored.Entity.Total,
		Currency: domain.Currency,
	}, nil
}

// recordIdempotency stores the replay record after the order is accepted.
// A failed write must not fail the already-persisted order, but it does
// leave a retry with the same key free to place a duplicate, so it is
// logged loudly instead of dropped.
func (s *Service) recordIdempotency(ctx context.Context, key, fingerprint, orderID string) {
	if s.idempotency == nil || key == "" {
		return
	}
	_, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{
		Key:         key,
		RequestHash: fingerprint,
		OrderID:     orderID,
	})
	if err != nil {
		slog.Default().WarnContext(ctx, "failed to record idempotency key, a client retry may duplicate the order",
			slog.String("order.id", orderID),
			slog.String("error", err.Error()))
	}
}

// checkAvailability runs the read-only availability check for every line.
// Lines are independent, so the checks run concurrently; all must pass
// before any reservation proceeds.
func (s *Service) checkAvailability(ctx context.Context, cart domain.Cart) error {
	if len(cart) == 0 {
		return nil
	}
	results := make([]error, len(cart))
	var wg sync.WaitGroup
	for i, position := range cart {
		wg.Add(1)
		go func(i int, p domain.Position) {
			defer wg.Done()
			ok, err := s.reservations.CheckAvailable(ctx, p.Kind, p.Count)
			if err != nil {
				results[i] = err
				return
			}
			if !ok {
				results[i] = fmt.Errorf("%w: %s x %d", ErrUnavailable, p.Kind, p.Count)
			}
		}(i, position)
	}
	wg.Wait()
	for _, err := range results {
		if err != nil {
			return mapError(err)
		}
	}
	return nil
}

func cartFromInput(input ordertypes.SubmitOrderInput) (domain.Cart, error) {
	cart := make(domain.Cart, 0, len(input.Positions))
	for _, position := range input.Positions {
		kind, err := domain.ParseKind(position.FigureType)
		if err != nil {
			return nil, err
		}
		cart = append(cart, domain.Position{
			Kind:       kind,
			Dimensions: domain.Dimensions{A: position.SideA, B: position.SideB, C: position.SideC},
			Count:      position.Count,
		})
	}
	if err := cart.Validate(); err != nil {
		return nil, err
	}
	return cart, nil
}

func wrapPersistence(err error) error {
	if errors.Is(err, ErrPersistenceFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
}

func orderViewOf(stored *projection.Projection[*domain.Order]) *ordertypes.OrderView {
	order := stored.Entity
	view := &ordertypes.OrderView{
		ID:        order.ID,
		Lines:     make([]ordertypes.LineView, 0, len(order.Lines)),
		Total:     order.Total,
		Currency:  domain.Currency,
		PlacedAt:  order.PlacedAt,
		CreatedAt: stored.Metadata.CreatedAt,
		UpdatedAt: stored.Metadata.UpdatedAt,
	}
	for _, line := range order.Lines {
		view.Lines = append(view.Lines, ordertypes.LineView{
			FigureType: string(line.Figure.Kind()),
			Dimensions: ordertypes.FigureDimensions(line.Figure),
			Quantity:   line.Quantity,
			LineTotal:  line.LineTotal,
		})
	}
	return view
}

var _ ports.Service = (*Service)(nil)

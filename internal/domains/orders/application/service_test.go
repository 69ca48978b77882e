package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	ordertypes "github.com/figurestore/go-order-api/internal/domains/orders/application/types"
	"github.com/figurestore/go-order-api/internal/domains/orders/domain"
	"github.com/figurestore/go-order-api/internal/domains/orders/ports"
	"github.com/figurestore/go-order-api/internal/shared/projection"
)

type fakeOrderRepo struct {
	orders  map[string]*domain.Order
	saveErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*domain.Order{}}
}

func (f *fakeOrderRepo) Save(_ context.Context, order *domain.Order) (*projection.Projection[*domain.Order], error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	clone := *order
	f.orders[order.ID] = &clone
	now := time.Now()
	return &projection.Projection[*domain.Order]{Entity: &clone, Metadata: projection.Metadata{CreatedAt: now, UpdatedAt: now}}, nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id string) (*projection.Projection[*domain.Order], error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *order
	return &projection.Projection[*domain.Order]{Entity: &clone}, nil
}

func (f *fakeOrderRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.orders[id]; !ok {
		return ports.ErrNotFound
	}
	delete(f.orders, id)
	return nil
}

func (f *fakeOrderRepo) List(_ context.Context) ([]*projection.Projection[*domain.Order], error) {
	list := make([]*projection.Projection[*domain.Order], 0, len(f.orders))
	for _, order := range f.orders {
		clone := *order
		list = append(list, &projection.Projection[*domain.Order]{Entity: &clone})
	}
	return list, nil
}

type fakeIdempotencyStore struct {
	records map[string]ports.IdempotencyRecord
	saveErr error
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{records: map[string]ports.IdempotencyRecord{}}
}

func (f *fakeIdempotencyStore) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	record, ok := f.records[key]
	if !ok {
		return nil, nil
	}
	copy := record
	return &copy, nil
}

func (f *fakeIdempotencyStore) Save(_ context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	if existing, ok := f.records[record.Key]; ok {
		if existing.RequestHash != record.RequestHash || existing.OrderID != record.OrderID {
			copy := existing
			return &copy, ports.ErrIdempotencyConflict
		}
		copy := existing
		return &copy, nil
	}
	f.records[record.Key] = record
	saved := record
	return &saved, nil
}

func newTestService(repo *fakeOrderRepo, store *fakeInventory) *Service {
	return NewService(repo, store, nil, nil, newFakeIdempotencyStore())
}

func TestSubmitOrder_TriangleAccepted(t *testing.T) {
	repo := newFakeOrderRepo()
	store := newFakeInventory(map[domain.Kind]int{domain.KindTriangle: 5})
	svc := newTestService(repo, store)

	receipt, err := svc.SubmitOrder(context.Background(), ordertypes.SubmitOrderInput{
		Positions: []ordertypes.PositionInput{
			{FigureType: "triangle", SideA: 3, SideB: 4, SideC: 5, Count: 1},
		},
	})
	require.NoError(t, err)
	require.True(t, receipt.Total.Equal(decimal.NewFromFloat(7.2)), "got %s", receipt.Total)
	require.Equal(t, domain.Currency, receipt.Currency)
	require.Equal(t, 4, store.count(domain.KindTriangle))
	require.Len(t, repo.orders, 1)
}

func TestSubmitOrder_InvalidFigureLeavesStockUntouched(t *testing.T) {
	repo := newFakeOrderRepo()
	store := newFakeInventory(map[domain.Kind]int{domain.KindCircle: 5})
	svc := newTestService(repo, store)

	_, err := svc.SubmitOrder(context.Background(), ordertypes.SubmitOrderInput{
		Positions: []ordertypes.PositionInput{
			{FigureType: "circle", SideA: -1, Count: 1},
		},
	})
	require.ErrorIs(t, err, domain.ErrFigureInvalid)
	require.Zero(t, store.writes())
	require.Equal(t, 5, store.count(domain.KindCircle))
	require.Empty(t, repo.orders)
}

func TestSubmitOrder_UnavailableStock(t *testing.T) {
	repo := newFakeOrderRepo()
	store := newFakeInventory(map[domain.Kind]int{domain.KindSquare: 3})
	svc := newTestService(repo, store)

	_, err := svc.SubmitOrder(context.Background(), ordertypes.SubmitOrderInput{
		Positions: []ordertypes.PositionInput{
			{FigureType: "square", SideA: 2, Count: 10},
		},
	})
	require.ErrorIs(t, err, ErrUnavailable)
	require.Zero(t, store.writes())
	require.Equal(t, 3, store.count(domain.KindSquare))
	require.Empty(t, repo.orders)
}

func TestSubmitOrder_UnknownFigureType(t *testing.T) {
	repo := newFakeOrderRepo()
	store := newFakeInventory(map[domain.Kind]int{})
	svc := newTestService(repo, store)

	_, err := svc.SubmitOrder(context.Background(), ordertypes.SubmitOrderInput{
		Positions: []ordertypes.PositionInput{{FigureType: "pentagon", SideA: 1, Count: 1}},
	})
	require.ErrorIs(t, err, domain.ErrUnknownFigureType)
	require.Zero(t, store.writes())
}

func TestSubmitOrder_NonPositiveCount(t *testing.T) {
	svc := newTestService(newFakeOrderRepo(), newFakeInventory(map[domain.Kind]int{domain.KindCircle: 5}))

	_, err := svc.SubmitOrder(context.Background(), ordertypes.SubmitOrderInput{
		Positions: []ordertypes.PositionInput{{FigureType: "circle", SideA: 1, Count: 0}},
	})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestSubmitOrder_EmptyCartYieldsZeroTotal(t *testing.T) {
	repo := newFakeOrderRepo()
	store := newFakeInventory(map[domain.Kind]int{})
	svc := newTestService(repo, store)

	receipt, err := svc.SubmitOrder(context.Background(), ordertypes.SubmitOrderInput{})
	require.NoError(t, err)
	require.True(t, receipt.Total.IsZero())
	require.Zero(t, store.writes())
	require.Len(t, repo.orders, 1)
}

func TestSubmitOrder_MultiLineRollbackOnInsufficientStock(t *testing.T) {
	repo := newFakeOrderRepo()
	// Each line passes its own availability check, but both draw on the same
	// square counter, so the aggregated reservation hits the shortfall the
	// checks could not see.
	store := newFakeInventory(map[domain.Kind]int{domain.KindSquare: 3})
	svc := newTestService(repo, store)

	_, err := svc.SubmitOrder(context.Background(), ordertypes.SubmitOrderInput{
		Positions: []ordertypes.PositionInput{
			{FigureType: "square", SideA: 2, Count: 2},
			{FigureType: "square", SideA: 3, Count: 2},
		},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Equal(t, 3, store.count(domain.KindSquare), "stock must be back where it started")
	require.Empty(t, repo.orders)
}

func TestSubmitOrder_PersistenceFailureCompensatesReservation(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.saveErr = errors.New("order store down")
	store := newFakeInventory(map[domain.Kind]int{domain.KindTriangle: 5})
	svc := newTestService(repo, store)

	_, err := svc.SubmitOrder(context.Background(), ordertypes.SubmitOrderInput{
		Positions: []ordertypes.PositionInput{
			{FigureType: "triangle", SideA: 3, SideB: 4, SideC: 5, Count: 2},
		},
	})
	require.ErrorIs(t, err, ErrPersistenceFailure)
	require.Equal(t, 5, store.count(domain.KindTriangle), "reserved units must be released")
}

func TestSubmitOrder_IdempotentReplayDoesNotReserveTwice(t *testing.T) {
	repo := newFakeOrderRepo()
	store := newFakeInventory(map[domain.Kind]int{domain.KindTriangle: 5})
	svc := newTestService(repo, store)

	input := ordertypes.SubmitOrderInput{
		Positions: []ordertypes.PositionInput{
			{FigureType: "triangle", SideA: 3, SideB: 4, SideC: 5, Count: 1},
		},
		IdempotencyKey: "retry-123",
	}
	first, err := svc.SubmitOrder(context.Background(), input)
	require.NoError(t, err)

	second, err := svc.SubmitOrder(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, first.OrderID, second.OrderID)
	require.True(t, first.Total.Equal(second.Total))
	require.Equal(t, 4, store.count(domain.KindTriangle), "stock decremented exactly once")
}

func TestSubmitOrder_IdempotencyConflictOnDivergingCart(t *testing.T) {
	store := newFakeInventory(map[domain.Kind]int{domain.KindTriangle: 5, domain.KindSquare: 5})
	svc := newTestService(newFakeOrderRepo(), store)

	_, err := svc.SubmitOrder(context.Background(), ordertypes.SubmitOrderInput{
		Positions:      []ordertypes.PositionInput{{FigureType: "triangle", SideA: 3, SideB: 4, SideC: 5, Count: 1}},
		IdempotencyKey: "retry-456",
	})
	require.NoError(t, err)

	_, err = svc.SubmitOrder(context.Background(), ordertypes.SubmitOrderInput{
		Positions:      []ordertypes.PositionInput{{FigureType: "square", SideA: 2, Count: 1}},
		IdempotencyKey: "retry-456",
	})
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	require.Equal(t, 5, store.count(domain.KindSquare))
}

func TestSubmitOrder_IdempotencyRecordFailureDoesNotFailOrder(t *testing.T) {
	repo := newFakeOrderRepo()
	store := newFakeInventory(map[domain.Kind]int{domain.KindTriangle: 5})
	idempotency := newFakeIdempotencyStore()
	idempotency.saveErr = errors.New("idempotency store down")
	svc := NewService(repo, store, nil, nil, idempotency)

	receipt, err := svc.SubmitOrder(context.Background(), ordertypes.SubmitOrderInput{
		Positions: []ordertypes.PositionInput{
			{FigureType: "triangle", SideA: 3, SideB: 4, SideC: 5, Count: 1},
		},
		IdempotencyKey: "retry-789",
	})
	require.NoError(t, err, "a failed replay record must not fail the persisted order")
	require.NotNil(t, receipt)
	require.Equal(t, 4, store.count(domain.KindTriangle))
	require.Len(t, repo.orders, 1)
}

func TestWithOrchestrator_SharesReservations(t *testing.T) {
	store := newFakeInventory(map[domain.Kind]int{domain.KindCircle: 100})
	base := newTestService(newFakeOrderRepo(), store)
	derived := base.WithOrchestrator(nil)

	require.Same(t, base.Reservations(), derived.Reservations(),
		"both service handles must serialize on one reservation critical section")

	// Reserve through one handle, release through the other, concurrently.
	// The counter ends where it started only if both handles lock the same
	// per-variant mutex.
	const pairs = 200
	var wg sync.WaitGroup
	outcomes := make([]error, pairs)
	for i := 0; i < pairs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := base.Reservations().Reserve(context.Background(), domain.KindCircle, 1); err != nil {
				outcomes[i] = err
				return
			}
			outcomes[i] = derived.Reservations().Release(context.Background(), domain.KindCircle, 1)
		}(i)
	}
	wg.Wait()

	for _, err := range outcomes {
		require.NoError(t, err)
	}
	require.Equal(t, 100, store.count(domain.KindCircle))
}

func TestSubmitOrder_InventoryOutagePropagates(t *testing.T) {
	store := newFakeInventory(map[domain.Kind]int{domain.KindCircle: 5})
	store.getErr = ports.ErrInventoryUnavailable
	svc := newTestService(newFakeOrderRepo(), store)

	_, err := svc.SubmitOrder(context.Background(), ordertypes.SubmitOrderInput{
		Positions: []ordertypes.PositionInput{{FigureType: "circle", SideA: 2, Count: 1}},
	})
	require.ErrorIs(t, err, ports.ErrInventoryUnavailable)
}

func TestCancelOrder_ReleasesReservedUnits(t *testing.T) {
	repo := newFakeOrderRepo()
	store := newFakeInventory(map[domain.Kind]int{domain.KindCircle: 5})
	svc := newTestService(repo, store)

	receipt, err := svc.SubmitOrder(context.Background(), ordertypes.SubmitOrderInput{
		Positions: []ordertypes.PositionInput{{FigureType: "circle", SideA: 2, Count: 3}},
	})
	require.NoError(t, err)
	require.Equal(t, 2, store.count(domain.KindCircle))

	require.NoError(t, svc.CancelOrder(context.Background(), ordertypes.OrderIdentifier{ID: receipt.OrderID}))
	require.Equal(t, 5, store.count(domain.KindCircle))
	require.Empty(t, repo.orders)
}

func TestCancelOrder_UnknownOrder(t *testing.T) {
	svc := newTestService(newFakeOrderRepo(), newFakeInventory(map[domain.Kind]int{}))
	err := svc.CancelOrder(context.Background(), ordertypes.OrderIdentifier{ID: "missing"})
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestGetOrder_ReturnsView(t *testing.T) {
	repo := newFakeOrderRepo()
	store := newFakeInventory(map[domain.Kind]int{domain.KindSquare: 5})
	svc := newTestService(repo, store)

	receipt, err := svc.SubmitOrder(context.Background(), ordertypes.SubmitOrderInput{
		Positions: []ordertypes.PositionInput{{FigureType: "square", SideA: 3, Count: 2}},
	})
	require.NoError(t, err)

	view, err := svc.GetOrder(context.Background(), ordertypes.OrderIdentifier{ID: receipt.OrderID})
	require.NoError(t, err)
	require.Equal(t, receipt.OrderID, view.ID)
	require.Len(t, view.Lines, 1)
	require.Equal(t, "square", view.Lines[0].FigureType)
	require.Equal(t, 2, view.Lines[0].Quantity)
	require.True(t, view.Total.Equal(decimal.NewFromInt(18)), "got %s", view.Total)
}

func TestSetStockAndInventory(t *testing.T) {
	store := newFakeInventory(map[domain.Kind]int{})
	svc := newTestService(newFakeOrderRepo(), store)

	level, err := svc.SetStock(context.Background(), ordertypes.SetStockInput{FigureType: "triangle", Count: 7})
	require.NoError(t, err)
	require.Equal(t, 7, level.Count)

	_, err = svc.SetStock(context.Background(), ordertypes.SetStockInput{FigureType: "triangle", Count: -1})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.SetStock(context.Background(), ordertypes.SetStockInput{FigureType: "nonagon", Count: 1})
	require.ErrorIs(t, err, domain.ErrUnknownFigureType)

	levels, err := svc.Inventory(context.Background())
	require.NoError(t, err)
	require.Len(t, levels, len(domain.Kinds))
	byType := map[string]int{}
	for _, l := range levels {
		byType[l.FigureType] = l.Count
	}
	require.Equal(t, 7, byType["triangle"])
}

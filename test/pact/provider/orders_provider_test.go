//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	pacttest "github.com/figurestore/go-order-api/test/pact"

	figurestoreserver "github.com/figurestore/go-order-api/go"
	ordersmemory "github.com/figurestore/go-order-api/internal/domains/orders/adapters/memory"
	ordersobs "github.com/figurestore/go-order-api/internal/domains/orders/adapters/observability"
	ordersapp "github.com/figurestore/go-order-api/internal/domains/orders/application"
	ordersdomain "github.com/figurestore/go-order-api/internal/domains/orders/domain"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/stretchr/testify/require"
)

func TestOrdersProviderPact(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateOrdersBaseline: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			return nil, nil
		},
		pacttest.StateOrderExists: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedOrder(t, pacttest.ExistingOrderID)
			}
			return nil, nil
		},
		pacttest.StateOrderMissing: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			return nil, nil
		},
		pacttest.StateStockSeeded: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedStock(t)
			}
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.reset(t)
			app.seedStock(t)
			return nil
		},
	})
	require.NoError(t, err)
}

type contractProviderApp struct {
	repo      *ordersmemory.Repository
	inventory *ordersmemory.InventoryStore
	server    *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()

	repo := ordersmemory.NewRepository()
	inventory := ordersmemory.NewInventoryStore()
	idempotency := ordersmemory.NewIdempotencyStore()
	service := ordersobs.New(ordersapp.NewService(repo, inventory, nil, nil, idempotency))

	handlers := figurestoreserver.ApiHandleFunctions{
		OrderAPI: figurestoreserver.NewOrderAPI(service),
		StoreAPI: figurestoreserver.NewStoreAPI(service),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router = figurestoreserver.NewRouterWithGinEngine(router, handlers)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &contractProviderApp{
		repo:      repo,
		inventory: inventory,
		server:    server,
	}
}

func (a *contractProviderApp) reset(t testing.TB) {
	t.Helper()
	ctx := context.Background()
	orders, err := a.repo.List(ctx)
	require.NoError(t, err)
	for _, projection := range orders {
		_ = a.repo.Delete(ctx, projection.Entity.ID)
	}
	for _, kind := range ordersdomain.Kinds {
		require.NoError(t, a.inventory.SetCount(ctx, kind, 0))
	}
}

func (a *contractProviderApp) seedOrder(t testing.TB, id string) {
	t.Helper()
	cart := ordersdomain.Cart{
		{Kind: ordersdomain.KindTriangle, Dimensions: ordersdomain.Dimensions{A: 3, B: 4, C: 5}, Count: 1},
	}
	order, err := ordersdomain.BuildOrder(cart, ordersdomain.DefaultPriceList())
	require.NoError(t, err)
	order.ID = id
	_, err = a.repo.Save(context.Background(), order)
	require.NoError(t, err)
}

func (a *contractProviderApp) seedStock(t testing.TB) {
	t.Helper()
	ctx := context.Background()
	for _, kind := range ordersdomain.Kinds {
		require.NoError(t, a.inventory.SetCount(ctx, kind, 10))
	}
}

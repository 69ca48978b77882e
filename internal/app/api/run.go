package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	figurestoreserver "github.com/figurestore/go-order-api/go"

	inventoryclient "github.com/figurestore/go-order-api/internal/clients/http/inventory"
	ordersmemory "github.com/figurestore/go-order-api/internal/domains/orders/adapters/memory"
	ordersobs "github.com/figurestore/go-order-api/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/figurestore/go-order-api/internal/domains/orders/adapters/persistence/postgres"
	ordersworkflows "github.com/figurestore/go-order-api/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/figurestore/go-order-api/internal/domains/orders/application"
	ordersports "github.com/figurestore/go-order-api/internal/domains/orders/ports"
	platformobservability "github.com/figurestore/go-order-api/internal/platform/observability"
	platformpostgres "github.com/figurestore/go-order-api/internal/platform/postgres"
)

// Run boots the figure store HTTP API with observability, repositories,
// inventory, and workflows wired.
func Run(ctx context.Context) error {
	const serviceName = "figure-order-api"

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	prices, err := cfg.PriceList()
	if err != nil {
		return fmt.Errorf("failed to build price list: %w", err)
	}

	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	db, cleanupDB := connectPostgres(ctx, cfg, logger)
	defer cleanupDB()

	repo := buildOrderRepository(db, logger)
	inventory := buildInventoryStore(cfg, db, logger)
	idempotency := buildIdempotencyStore(db)

	// The inner service persists directly; the inline orchestrator reuses it
	// without re-entering the workflow layer. The request-facing service is
	// derived from it so both handles share one reservation critical section
	// over the inventory store.
	inner := ordersapp.NewService(repo, inventory, prices, nil, idempotency)

	var persister ordersports.WorkflowOrchestrator = ordersworkflows.NewInlineOrderWorkflows(inner)
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, persisting orders inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		persister = ordersworkflows.NewTemporalOrderWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	core := inner.WithOrchestrator(persister)
	service := ordersobs.New(
		core,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	handlers := figurestoreserver.ApiHandleFunctions{
		OrderAPI: figurestoreserver.NewOrderAPI(service),
		StoreAPI: figurestoreserver.NewStoreAPI(service),
	}

	router := figurestoreserver.NewRouter(handlers)
	router.Use(otelgin.Middleware(serviceName))
	addr := ":" + cfg.Port
	logger.Info("figure order API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("figure order API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

func connectPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*gorm.DB, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory stores")
		return nil, func() {}
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to memory", slog.String("error", err.Error()))
		return nil, func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to memory", slog.String("error", err.Error()))
		return nil, func() {}
	}
	logger.Info("postgres connection established")
	return db, func() { _ = sqlDB.Close() }
}

func buildOrderRepository(db *gorm.DB, logger *slog.Logger) ordersports.Repository {
	if db == nil {
		return ordersmemory.NewRepository()
	}
	logger.Info("order repository configured with postgres")
	return orderspostgres.NewRepository(db)
}

// buildInventoryStore picks the counter backend: the external counter
// service when INVENTORY_URL is set, otherwise postgres, otherwise memory.
func buildInventoryStore(cfg Config, db *gorm.DB, logger *slog.Logger) ordersports.InventoryStore {
	if cfg.InventoryURL != "" {
		store, err := inventoryclient.NewClient(cfg.InventoryURL, &http.Client{Timeout: 5 * time.Second})
		if err == nil {
			logger.Info("inventory configured with external counter service", slog.String("url", cfg.InventoryURL))
			return store
		}
		logger.Warn("failed to build inventory client, falling back", slog.String("error", err.Error()))
	}
	if db != nil {
		logger.Info("inventory configured with postgres")
		return orderspostgres.NewInventoryStore(db)
	}
	return ordersmemory.NewInventoryStore()
}

func buildIdempotencyStore(db *gorm.DB) ordersports.IdempotencyStore {
	if db == nil {
		return ordersmemory.NewIdempotencyStore()
	}
	return orderspostgres.NewIdempotencyStore(db)
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	logger := workerlog.NewStructuredLogger(effectiveLogger(instruments))
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    logger,
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

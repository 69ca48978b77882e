package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	ordersmemory "github.com/figurestore/go-order-api/internal/domains/orders/adapters/memory"
	orderspostgres "github.com/figurestore/go-order-api/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/figurestore/go-order-api/internal/domains/orders/application"
	ordersports "github.com/figurestore/go-order-api/internal/domains/orders/ports"
	platformobservability "github.com/figurestore/go-order-api/internal/platform/observability"
	platformpostgres "github.com/figurestore/go-order-api/internal/platform/postgres"
	orderactivities "github.com/figurestore/go-order-api/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/figurestore/go-order-api/internal/platform/temporal/workflows/orders"
)

func main() {
	ctx := context.Background()
	const serviceName = "figure-order-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	repo, inventory, idempotency, cleanupStores := buildStores(ctx, logger)
	defer cleanupStores()
	// Activities persist directly; no orchestrator so the activity never
	// re-enters Temporal.
	service := ordersapp.NewService(repo, inventory, nil, nil, idempotency)
	activities := orderactivities.NewActivities(service)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.OrderPersistenceTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.OrderPersistenceWorkflow, workflow.RegisterOptions{Name: orderworkflows.OrderPersistenceWorkflowName})
	w.RegisterActivityWithOptions(activities.PersistOrder, activity.RegisterOptions{Name: orderactivities.PersistOrderActivityName})
	w.RegisterActivityWithOptions(activities.ReleaseReservations, activity.RegisterOptions{Name: orderactivities.ReleaseReservationsActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.OrderPersistenceTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func buildStores(ctx context.Context, logger *slog.Logger) (ordersports.Repository, ordersports.InventoryStore, ordersports.IdempotencyStore, func()) {
	dsn := strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	if dsn == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory stores")
		return ordersmemory.NewRepository(), ordersmemory.NewInventoryStore(), ordersmemory.NewIdempotencyStore(), func() {}
	}
	db, err := platformpostgres.Connect(ctx, dsn)
	if err != nil {
		logger.Warn("worker failed to connect to postgres, falling back to memory", slog.String("error", err.Error()))
		return ordersmemory.NewRepository(), ordersmemory.NewInventoryStore(), ordersmemory.NewIdempotencyStore(), func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("worker failed to unwrap postgres connection, falling back to memory", slog.String("error", err.Error()))
		return ordersmemory.NewRepository(), ordersmemory.NewInventoryStore(), ordersmemory.NewIdempotencyStore(), func() {}
	}
	logger.Info("worker stores configured with postgres")
	return orderspostgres.NewRepository(db), orderspostgres.NewInventoryStore(db), orderspostgres.NewIdempotencyStore(db), func() { _ = sqlDB.Close() }
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

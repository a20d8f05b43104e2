package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/earthenstore/storefront-api/internal/app/api"
	storageclient "github.com/earthenstore/storefront-api/internal/clients/http/storage"
	catalogmemory "github.com/earthenstore/storefront-api/internal/domains/catalog/adapters/memory"
	catalogpostgres "github.com/earthenstore/storefront-api/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/earthenstore/storefront-api/internal/domains/catalog/application"
	catalogports "github.com/earthenstore/storefront-api/internal/domains/catalog/ports"
	catalogworkflows "github.com/earthenstore/storefront-api/internal/durable/temporal/workflows/catalog"
	"github.com/earthenstore/storefront-api/internal/platform/migrations"
	platformobservability "github.com/earthenstore/storefront-api/internal/platform/observability"
	platformpostgres "github.com/earthenstore/storefront-api/internal/platform/postgres"
	catalogactivities "github.com/earthenstore/storefront-api/internal/platform/temporal/activities/catalog"
)

func main() {
	ctx := context.Background()
	const serviceName = "storefront-worker"

	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName, cfg.Environment)
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

	db, cleanupDB := platformpostgres.ConnectWithFallback(ctx, cfg.PostgresDSN, logger)
	defer cleanupDB()

	var catalogRepo catalogports.Repository
	var idempotency catalogports.IdempotencyStore
	if db != nil {
		if err := migrations.Run(db); err != nil {
			logger.Error("failed to run migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
		catalogRepo, err = catalogpostgres.NewRepository(db)
		if err != nil {
			logger.Error("failed to build catalog repository", slog.String("error", err.Error()))
			os.Exit(1)
		}
		idempotency, err = catalogpostgres.NewIdempotencyStore(db)
		if err != nil {
			logger.Error("failed to build idempotency store", slog.String("error", err.Error()))
			os.Exit(1)
		}
	} else {
		catalogRepo = catalogmemory.NewRepository()
		idempotency = catalogmemory.NewIdempotencyStore()
	}

	images := catalogports.NoopImageStore
	if cfg.StorageBaseURL != "" {
		store, err := storageclient.NewClient(cfg.StorageBaseURL)
		if err != nil {
			logger.Warn("failed to build storage client, image verification disabled", slog.String("error", err.Error()))
		} else {
			images = store
		}
	}

	catalogService := catalogapp.NewService(catalogRepo, idempotency, images)
	activities := catalogactivities.NewActivities(catalogService, images)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, catalogworkflows.ProductPublicationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(catalogworkflows.ProductPublicationWorkflow, workflow.RegisterOptions{Name: catalogworkflows.ProductPublicationWorkflowName})
	w.RegisterActivityWithOptions(activities.VerifyProductImages, activity.RegisterOptions{Name: catalogactivities.VerifyProductImagesActivityName})
	w.RegisterActivityWithOptions(activities.PersistProduct, activity.RegisterOptions{Name: catalogactivities.PersistProductActivityName})

	logger.Info("worker listening", slog.String("taskQueue", catalogworkflows.ProductPublicationTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

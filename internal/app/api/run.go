// Package api boots the storefront HTTP API with observability, repositories,
// and workflows wired.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	storageclient "github.com/earthenstore/storefront-api/internal/clients/http/storage"
	cataloghttp "github.com/earthenstore/storefront-api/internal/domains/catalog/adapters/http"
	catalogmemory "github.com/earthenstore/storefront-api/internal/domains/catalog/adapters/memory"
	catalogobs "github.com/earthenstore/storefront-api/internal/domains/catalog/adapters/observability"
	catalogpostgres "github.com/earthenstore/storefront-api/internal/domains/catalog/adapters/persistence/postgres"
	catalogworkflows "github.com/earthenstore/storefront-api/internal/domains/catalog/adapters/workflows"
	catalogapp "github.com/earthenstore/storefront-api/internal/domains/catalog/application"
	catalogports "github.com/earthenstore/storefront-api/internal/domains/catalog/ports"
	orderscatalog "github.com/earthenstore/storefront-api/internal/domains/orders/adapters/catalog"
	ordershttp "github.com/earthenstore/storefront-api/internal/domains/orders/adapters/http"
	ordersmemory "github.com/earthenstore/storefront-api/internal/domains/orders/adapters/memory"
	ordersobs "github.com/earthenstore/storefront-api/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/earthenstore/storefront-api/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/earthenstore/storefront-api/internal/domains/orders/application"
	ordersports "github.com/earthenstore/storefront-api/internal/domains/orders/ports"
	usershttp "github.com/earthenstore/storefront-api/internal/domains/users/adapters/http"
	usersmemory "github.com/earthenstore/storefront-api/internal/domains/users/adapters/memory"
	usersobs "github.com/earthenstore/storefront-api/internal/domains/users/adapters/observability"
	userspostgres "github.com/earthenstore/storefront-api/internal/domains/users/adapters/persistence/postgres"
	usersapp "github.com/earthenstore/storefront-api/internal/domains/users/application"
	usersports "github.com/earthenstore/storefront-api/internal/domains/users/ports"
	"github.com/earthenstore/storefront-api/internal/platform/migrations"
	platformobservability "github.com/earthenstore/storefront-api/internal/platform/observability"
	platformpostgres "github.com/earthenstore/storefront-api/internal/platform/postgres"
)

const serviceName = "storefront-api"

// Run boots the storefront API and blocks until shutdown.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	instruments, shutdown, err := platformobservability.Init(ctx, serviceName, cfg.Environment)
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

	db, cleanupDB := platformpostgres.ConnectWithFallback(ctx, cfg.PostgresDSN, logger)
	defer cleanupDB()
	if db != nil {
		if err := migrations.Run(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	images := buildImageStore(cfg, logger)
	services, err := buildServices(cfg, db, images, instruments)
	if err != nil {
		return err
	}

	var productWorkflows catalogports.WorkflowOrchestrator = catalogworkflows.NewInlineProductWorkflows(services.catalog)
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, publishing products inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		productWorkflows = catalogworkflows.NewTemporalProductWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	catalogHandler, err := cataloghttp.NewHandler(services.catalog, productWorkflows)
	if err != nil {
		return err
	}
	ordersHandler, err := ordershttp.NewHandler(services.orders)
	if err != nil {
		return err
	}
	usersHandler, err := usershttp.NewHandler(services.users, cfg.SecureCookies)
	if err != nil {
		return err
	}

	router := NewRouter(serviceName, Handlers{
		Catalog:   catalogHandler,
		Orders:    ordersHandler,
		Users:     usersHandler,
		Dashboard: Dashboard(services.catalog, services.orders),
	}, services.users)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(signalCtx)
	group.Go(func() error {
		logger.Info("storefront API listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down storefront API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if err := group.Wait(); err != nil {
		logger.Error("storefront API exited", slog.String("error", err.Error()))
		return err
	}
	return nil
}

type services struct {
	catalog catalogports.Service
	orders  ordersports.Service
	users   usersports.Service
}

// buildServices wires the bounded contexts against Postgres when available
// and in-memory adapters otherwise. Both cases feed the orders engine through
// the catalog glue adapter so stock always lives in one place.
func buildServices(cfg Config, db *gorm.DB, images catalogports.ImageStore, instruments *platformobservability.Instruments) (services, error) {
	logger := instruments.Logger

	var (
		catalogRepo  catalogports.Repository
		idempotency  catalogports.IdempotencyStore
		ordersRepo   ordersports.Repository
		usersRepo    usersports.Repository
		sessionStore usersports.SessionStore
	)
	if db != nil {
		var err error
		catalogRepo, err = catalogpostgres.NewRepository(db)
		if err != nil {
			return services{}, fmt.Errorf("failed to build catalog repository: %w", err)
		}
		idempotency, err = catalogpostgres.NewIdempotencyStore(db)
		if err != nil {
			return services{}, fmt.Errorf("failed to build idempotency store: %w", err)
		}
		ordersRepo = orderspostgres.NewRepository(db)
		usersRepo, err = userspostgres.NewRepository(db)
		if err != nil {
			return services{}, fmt.Errorf("failed to build users repository: %w", err)
		}
		sessionStore, err = userspostgres.NewSessionStore(db, cfg.SessionTTL)
		if err != nil {
			return services{}, fmt.Errorf("failed to build session store: %w", err)
		}
	} else {
		memCatalog := catalogmemory.NewRepository()
		catalogRepo = memCatalog
		idempotency = catalogmemory.NewIdempotencyStore()
		ordersRepo = ordersmemory.NewRepository(memCatalog)
		usersRepo = usersmemory.NewRepository()
		sessionStore = usersmemory.NewSessionStore(cfg.SessionTTL)
	}

	catalogService := catalogobs.New(
		catalogapp.NewService(catalogRepo, idempotency, images),
		catalogobs.WithLogger(logger),
		catalogobs.WithTracer(instruments.Tracer("internal.catalog.application")),
		catalogobs.WithMeter(instruments.Meter("internal.catalog.application")),
	)

	catalogReader, err := orderscatalog.NewReader(catalogRepo)
	if err != nil {
		return services{}, err
	}
	ordersService := ordersobs.New(
		ordersapp.NewService(catalogReader, ordersRepo),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	coreUsers, err := usersapp.NewService(usersRepo, sessionStore, []byte(cfg.SessionSecret), cfg.SessionTTL)
	if err != nil {
		return services{}, fmt.Errorf("failed to build users service: %w", err)
	}
	usersService := usersobs.New(
		coreUsers,
		usersobs.WithLogger(logger),
		usersobs.WithTracer(instruments.Tracer("internal.users.application")),
		usersobs.WithMeter(instruments.Meter("internal.users.application")),
	)

	return services{
		catalog: catalogService,
		orders:  ordersService,
		users:   usersService,
	}, nil
}

func buildImageStore(cfg Config, logger *slog.Logger) catalogports.ImageStore {
	if cfg.StorageBaseURL == "" {
		logger.Warn("STORAGE_BASE_URL not set, serving image keys as-is")
		return catalogports.NoopImageStore
	}
	opts := []storageclient.Option{}
	if cfg.StoragePublicURL != "" {
		opts = append(opts, storageclient.WithPublicURL(cfg.StoragePublicURL))
	}
	store, err := storageclient.NewClient(cfg.StorageBaseURL, opts...)
	if err != nil {
		logger.Warn("failed to build storage client, serving image keys as-is", slog.String("error", err.Error()))
		return catalogports.NoopImageStore
	}
	return store
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
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(instruments.Logger),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

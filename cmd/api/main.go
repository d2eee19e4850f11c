package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/devrep/reputation-registry/internal/api/http"
	"github.com/devrep/reputation-registry/internal/api/http/handlers"
	"github.com/devrep/reputation-registry/internal/auth"
	"github.com/devrep/reputation-registry/internal/config"
	"github.com/devrep/reputation-registry/internal/domain"
	"github.com/devrep/reputation-registry/internal/events"
	"github.com/devrep/reputation-registry/internal/observability"
	"github.com/devrep/reputation-registry/internal/persistence"
	"github.com/devrep/reputation-registry/internal/repository"
	"github.com/devrep/reputation-registry/internal/service"
	"github.com/devrep/reputation-registry/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Name)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, closeStore, err := openStateRepository(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open state store", zap.String("store", cfg.Registry.Store), zap.Error(err))
	}
	defer closeStore()

	metrics := observability.NewMetrics("reputation")
	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, logger.Named("audit"), 0)
	waitWorker := worker.StartNotificationWorker(ctx, notifications)

	registrySvc, err := service.NewRegistryService(ctx, service.RegistryDependencies{
		Store:         repo,
		Owner:         domain.Identity(cfg.Registry.Owner),
		InitialHeight: cfg.Registry.InitialHeight,
		Dispatcher:    dispatcher,
		Metrics:       metrics,
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal("failed to start registry", zap.Error(err))
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true, Immutable: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, repository.Backend{Name: cfg.Registry.Store, Repo: repo}),
		Profiles:       handlers.NewProfilesHandler(registrySvc),
		Platform:       handlers.NewPlatformHandler(registrySvc),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
		Metrics:        metrics,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("store", cfg.Registry.Store))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	cancel()
	waitWorker()
}

// openStateRepository connects the configured backend. The returned func releases it.
func openStateRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.StateRepository, func(), error) {
	switch cfg.Registry.Store {
	case config.StoreMemory:
		repo, err := repository.NewMemoryRepository(cfg.Registry.SnapshotPath)
		return repo, func() {}, err
	case config.StoreSQLite:
		db, err := persistence.NewSQLite(ctx, cfg.SQLite, logger)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewSQLiteRepository(db.DB), db.Close, nil
	case config.StorePostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, nil, err
			}
		}
		return repository.NewPostgresRepository(pg.PoolHandle()), pg.Close, nil
	case config.StoreRedis:
		rdb := persistence.NewRedis(ctx, cfg.Redis, logger)
		if err := rdb.Ping(ctx); err != nil {
			rdb.Close()
			return nil, nil, err
		}
		return repository.NewRedisRepository(rdb.Client, cfg.Redis.KeyPrefix), rdb.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q", cfg.Registry.Store)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

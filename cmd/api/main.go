package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/tutorconnect/tutor-connect/internal/api/http"
	"github.com/tutorconnect/tutor-connect/internal/api/http/handlers"
	"github.com/tutorconnect/tutor-connect/internal/auth"
	"github.com/tutorconnect/tutor-connect/internal/config"
	"github.com/tutorconnect/tutor-connect/internal/events"
	"github.com/tutorconnect/tutor-connect/internal/observability"
	"github.com/tutorconnect/tutor-connect/internal/persistence"
	"github.com/tutorconnect/tutor-connect/internal/repository"
	"github.com/tutorconnect/tutor-connect/internal/service"
	"github.com/tutorconnect/tutor-connect/internal/storage"
	"github.com/tutorconnect/tutor-connect/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	if err != nil {
		logger.Fatal("failed to init token manager", zap.Error(err))
	}

	files, err := storage.NewLocalStorage(cfg.Upload)
	if err != nil {
		logger.Fatal("failed to init upload storage", zap.Error(err))
	}

	store := repository.NewStore(pg.PoolHandle())
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification), logger)

	accountService := service.NewAccountService(*cfg, service.AccountDependencies{
		Store:      store,
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	adminService := service.NewAdminService(store, dispatcher, logger)
	jobService := service.NewJobService(store)
	applicationService := service.NewApplicationService(store, dispatcher, logger)

	app := fiber.New(httptransport.ServerConfig(*cfg, logger))
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	var limiter httptransport.Limiter
	if rl := httptransport.NewRedisLimiter(redis.Client); rl != nil {
		limiter = rl
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version,
			handlers.Dependency{Name: "postgres", Check: pg},
			handlers.Dependency{Name: "redis", Check: redis, Optional: true},
		),
		Auth:           handlers.NewAuthHandler(accountService),
		Jobs:           handlers.NewJobsHandler(jobService),
		Applications:   handlers.NewApplicationsHandler(applicationService),
		Admin:          handlers.NewAdminHandler(adminService),
		Upload:         handlers.NewUploadHandler(files),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, store.Repos().Users),
		Metrics:        metrics,
		Limiter:        limiter,
		RateLimit:      cfg.RateLimit,
		Uploads:        cfg.Upload,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

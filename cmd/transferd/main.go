package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/careteam-transfer/internal/api/http"
	"github.com/spec-kit/careteam-transfer/internal/api/http/handlers"
	"github.com/spec-kit/careteam-transfer/internal/auth"
	"github.com/spec-kit/careteam-transfer/internal/config"
	"github.com/spec-kit/careteam-transfer/internal/domain"
	"github.com/spec-kit/careteam-transfer/internal/events"
	"github.com/spec-kit/careteam-transfer/internal/observability"
	"github.com/spec-kit/careteam-transfer/internal/persistence"
	"github.com/spec-kit/careteam-transfer/internal/repository"
	"github.com/spec-kit/careteam-transfer/internal/scheduler"
	"github.com/spec-kit/careteam-transfer/internal/service"
	"github.com/spec-kit/careteam-transfer/internal/worker"
)

func main() {
	once := flag.Bool("once", false, "execute a single transfer run immediately and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	dispatcher := events.NewInMemoryDispatcher()
	notifier := service.NewNotifierService(dispatcher, logger, cfg.Notify)
	worker.StartRunEventWorker(notifier)

	transferService := service.NewTransferService(cfg.Job, service.TransferDependencies{
		NetworkRepo:     repository.NewNetworkRepository(pool),
		EligibilityRepo: repository.NewEligibilityRepository(pool),
		CareTeamRepo:    repository.NewCareTeamRepository(pool),
		MembershipRepo:  repository.NewMembershipRepository(pool),
		Dispatcher:      dispatcher,
		Logger:          logger,
	})
	runLock := scheduler.NewRunLock(redis, cfg.Job.RunLockTTL(), logger)

	if *once {
		// runOnce releases the run lock before returning; only then is
		// it safe to exit with its code.
		code := runOnce(ctx, cfg, transferService, runLock, logger)
		if code != 0 {
			redis.Close()
			pg.Close()
			_ = logger.Sync()
			os.Exit(code)
		}
		return
	}

	metrics := observability.NewMetrics()
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TriggerTokenTTLHours)
	authMiddleware := auth.NewAuthMiddleware(tokenManager)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	jobsHandler := handlers.NewJobsHandler(transferService, runLock, metrics, logger, cfg.Job.ScopeName)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Jobs:           jobsHandler,
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func runOnce(ctx context.Context, cfg *config.Config, transfers *service.TransferService, runLock *scheduler.RunLock, logger *zap.Logger) int {
	trigger := service.Trigger{FireTime: time.Now(), Scope: cfg.Job.ScopeName}

	token, acquired, err := runLock.Acquire(ctx, trigger.Scope)
	if err != nil {
		logger.Error("failed to acquire run lock", zap.Error(err))
		return 1
	}
	if !acquired {
		logger.Warn("a transfer run is already in progress", zap.String("scope", trigger.Scope))
		return 0
	}
	defer runLock.Release(ctx, trigger.Scope, token)

	summary, err := transfers.Run(ctx, trigger)
	if err != nil {
		logger.Error("transfer run failed", zap.Error(err))
		return 1
	}
	if summary.Outcome == domain.RunCompleted && len(summary.Failures) > 0 {
		logger.Warn("transfer run completed with failures",
			zap.Int("failed", len(summary.Failures)))
	}
	return 0
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

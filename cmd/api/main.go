package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/kaveyan18/resolve-desk/internal/api/http"
	"github.com/kaveyan18/resolve-desk/internal/api/http/handlers"
	"github.com/kaveyan18/resolve-desk/internal/auth"
	"github.com/kaveyan18/resolve-desk/internal/config"
	"github.com/kaveyan18/resolve-desk/internal/events"
	"github.com/kaveyan18/resolve-desk/internal/observability"
	"github.com/kaveyan18/resolve-desk/internal/persistence"
	"github.com/kaveyan18/resolve-desk/internal/realtime"
	"github.com/kaveyan18/resolve-desk/internal/repository"
	"github.com/kaveyan18/resolve-desk/internal/scheduler"
	"github.com/kaveyan18/resolve-desk/internal/service"
	"github.com/kaveyan18/resolve-desk/internal/worker"
)

func main() {
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

	rdb := persistence.NewRedis(cfg.Redis, logger)
	defer rdb.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	chatRepo := repository.NewChatMessageRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	notificationService := service.NewNotificationService(notificationRepo, userRepo, dispatcher, logger)
	worker.StartNotificationWorker(notificationService)

	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo: ticketRepo,
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	escalationService := service.NewEscalationService(service.EscalationDependencies{
		TicketRepo: ticketRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	lifecycleService := service.NewLifecycleService(service.LifecycleDependencies{
		TicketRepo:   ticketRepo,
		UserRepo:     userRepo,
		SettingsRepo: settingsRepo,
		Assigner:     assignmentService,
		Dispatcher:   dispatcher,
		Logger:       logger,
		SLAWindow:    cfg.Scheduler.SLAWindow(),
	})
	settingsService := service.NewSettingsService(settingsRepo)
	userService := service.NewUserService(userRepo)
	authService := service.NewAuthService(cfg.Auth, userRepo)

	hub := realtime.NewHub(rdb.Client, logger)
	go func() {
		if err := hub.Run(ctx); err != nil {
			logger.Warn("realtime hub stopped", zap.Error(err))
		}
	}()
	chatService := service.NewChatService(ticketRepo, chatRepo, userRepo, hub, logger)

	sweeper := scheduler.New(assignmentService, escalationService, settingsRepo, cfg.Scheduler.DefaultTick(), metrics, logger)
	go sweeper.Run(ctx)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, rdb),
		Auth:           handlers.NewAuthHandler(authService),
		Complaints:     handlers.NewComplaintsHandler(lifecycleService, chatService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		Settings:       handlers.NewSettingsHandler(settingsService),
		Users:          handlers.NewUsersHandler(userService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

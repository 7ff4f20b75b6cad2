package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	tele "gopkg.in/telebot.v3"

	httpAdapter "github.com/avetra/support-bot-backend/internal/adapters/primary/http"
	"github.com/avetra/support-bot-backend/internal/adapters/primary/telegram"
	"github.com/avetra/support-bot-backend/internal/adapters/primary/websocket"
	"github.com/avetra/support-bot-backend/internal/adapters/secondary/postgres"
	"github.com/avetra/support-bot-backend/internal/config"
	"github.com/avetra/support-bot-backend/internal/core/services"
	"github.com/avetra/support-bot-backend/internal/core/session"
	"github.com/avetra/support-bot-backend/internal/infrastructure/logging"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	// 3. Initialize Database Pool
	ctx := context.Background()
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		logger.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.Database.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database connection established")

	// 4. Run Migrations
	if err := runMigrations(cfg.Database.MigrationsPath, cfg.Database.URL); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("migrations applied")

	// 5. Real-time Event Hub
	hub := websocket.NewHub(logger)
	go hub.Run()

	// 6. Dependency Injection (Wiring the Hexagon)

	// Repositories (Secondary Adapters)
	ticketRepo := postgres.NewTicketRepository(pool)
	blacklistRepo := postgres.NewBlacklistRepository(pool)
	adminRepo := postgres.NewAdminRepository(pool)

	// Telegram bot (Primary Adapter transport)
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.Bot.Token,
		Poller: &tele.LongPoller{Timeout: cfg.Bot.PollTimeout},
	})
	if err != nil {
		logger.Error("failed to create telegram bot", "error", err)
		os.Exit(1)
	}

	notifier := telegram.NewNotifier(bot, logger)
	sessions := session.NewTracker()

	// Services (Core)
	adminService := services.NewAdminService(adminRepo, logger)
	blacklistService := services.NewBlacklistService(blacklistRepo, ticketRepo, logger)
	batcher := services.NewNotificationBatcher(ticketRepo, adminService, notifier, hub, services.BatcherConfig{
		Window:    cfg.Notifications.Window,
		Threshold: cfg.Notifications.Threshold,
		Interval:  cfg.Notifications.Interval,
	}, logger)
	routerService := services.NewRouterService(
		ticketRepo,
		blacklistService,
		sessions,
		notifier,
		batcher,
		hub,
		cfg.Tickets.MaxActivePerUser,
		logger,
	)

	// Reconcile the configured administrator set into storage.
	if err := adminService.Reconcile(ctx, cfg.Bot.AdminIDs); err != nil {
		logger.Error("failed to reconcile administrators", "error", err)
		os.Exit(1)
	}

	// 7. Telegram Handler Registration
	bot.Use(telegram.Recover(logger))
	bot.Use(telegram.UpdateLogger(logger))
	if cfg.RateLimit.Enabled {
		limiter := telegram.NewRateLimiter(telegram.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               5 * time.Minute,
		})
		bot.Use(limiter.Middleware)
	}

	handler := telegram.NewHandler(
		bot,
		routerService,
		blacklistService,
		adminService,
		sessions,
		cfg.App.Name,
		cfg.Tickets.MaxActivePerUser,
		logger,
	)
	handler.Register()

	// 8. Ops HTTP Server
	healthHandler := httpAdapter.NewHealthHandler(pool, hub, cfg.App.Version)
	wsHandler := httpAdapter.NewWebSocketHandler(hub, cfg.Ops.AllowedOrigins, logger)
	router := httpAdapter.NewRouter(healthHandler, wsHandler, cfg.Ops.AllowedOrigins, logger)

	srv := &http.Server{
		Addr:         cfg.Ops.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("ops server starting", "addr", cfg.Ops.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ops server error", "error", err)
			os.Exit(1)
		}
	}()

	// 9. Periodic Digest Loop
	batcherCtx, stopBatcher := context.WithCancel(ctx)
	go batcher.Run(batcherCtx)

	// 10. Start Bot with Graceful Shutdown
	go func() {
		logger.Info("bot polling started")
		bot.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", "signal", sig.String())

	bot.Stop()
	stopBatcher()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Ops.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("ops server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

// runMigrations applies pending schema migrations. The migrate postgres driver
// understands the same postgres:// URLs the pool does.
func runMigrations(path, databaseURL string) error {
	mig, err := migrate.New("file://"+path, databaseURL)
	if err != nil {
		return err
	}
	defer mig.Close()

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

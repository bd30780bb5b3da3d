// Package app wires together all dependencies and runs the service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orlengos-star/Your-Day-MiniApp/internal/config"
	handler "github.com/orlengos-star/Your-Day-MiniApp/internal/handler/http"
	"github.com/orlengos-star/Your-Day-MiniApp/internal/notifier"
	"github.com/orlengos-star/Your-Day-MiniApp/internal/repository/postgres"
	"github.com/orlengos-star/Your-Day-MiniApp/internal/scheduler"
	"github.com/orlengos-star/Your-Day-MiniApp/internal/service"
	"github.com/orlengos-star/Your-Day-MiniApp/migrations"
	"github.com/orlengos-star/Your-Day-MiniApp/pkg/database"
	"github.com/orlengos-star/Your-Day-MiniApp/pkg/health"
)

// App holds the long-lived components of the journaling service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	scheduler  *scheduler.Scheduler
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", pgCfg.Host),
		slog.Int("port", pgCfg.Port),
		slog.String("database", pgCfg.DBName),
	)

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	database.RegisterPoolMetrics(pool, "yourday")

	// Build the dependency graph.
	users := postgres.NewUserRepository(pool)
	invites := postgres.NewInviteRepository(pool)
	relationships := postgres.NewRelationshipRepository(pool)
	entries := postgres.NewEntryRepository(pool)
	ratings := postgres.NewRatingRepository(pool)
	settings := postgres.NewSettingsRepository(pool)

	telegramNotifier := notifier.NewTelegramNotifier(cfg.BotToken, logger)

	authorizer := service.NewAuthorizer(relationships)
	identity := service.NewIdentityService(users, logger)
	journal := service.NewJournalService(entries, settings, authorizer, telegramNotifier, cfg.MiniAppLink, logger)
	ratingSvc := service.NewRatingService(ratings, authorizer, logger)
	pairing := service.NewPairingService(users, invites, relationships, cfg.BotUsername, logger)
	settingsSvc := service.NewSettingsService(settings, logger)

	sched := scheduler.New(entries, settings, telegramNotifier, cfg.MiniAppLink, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})

	// HTTP router.
	router := handler.NewRouter(handler.RouterDeps{
		Journal:       journal,
		Ratings:       ratingSvc,
		Pairing:       pairing,
		Settings:      settingsSvc,
		Authenticator: handler.NewAuthenticator(identity, cfg.BotToken, cfg.Environment, logger),
		Health:        healthHandler,
		CORSOrigins:   cfg.CORSAllowedOrigins,
		Logger:        logger,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		scheduler:  sched,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and the notification scheduler, then blocks
// until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go a.scheduler.Run(ctx)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return nil
}

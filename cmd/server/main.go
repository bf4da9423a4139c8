package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/nusabooks/nusabooks/internal/adapter/http"
	"github.com/nusabooks/nusabooks/internal/adapter/http/handler"
	postgresRepo "github.com/nusabooks/nusabooks/internal/adapter/repository/postgres"
	redisRepo "github.com/nusabooks/nusabooks/internal/adapter/repository/redis"
	"github.com/nusabooks/nusabooks/internal/infrastructure/config"
	"github.com/nusabooks/nusabooks/internal/infrastructure/logger"
	"github.com/nusabooks/nusabooks/internal/infrastructure/metrics"
	"github.com/nusabooks/nusabooks/internal/infrastructure/postgres"
	"github.com/nusabooks/nusabooks/internal/infrastructure/redis"
	"github.com/nusabooks/nusabooks/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	ctx := context.Background()

	// Run migrations
	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			appLogger.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	appLogger.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	appLogger.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	journalRepo := postgresRepo.NewJournalRepository(pool)
	templateRepo := postgresRepo.NewTemplateRepository(pool)
	scheduleRepo := postgresRepo.NewScheduleRepository(pool)
	documentRepo := postgresRepo.NewDocumentRepository(pool)
	cache := redisRepo.NewCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(appLogger)

	// Initialize metrics
	appMetrics := metrics.New()

	// Initialize use cases
	templateUC := usecase.NewTemplateUseCase(txManager, templateRepo, journalRepo, idGen, retrier, appMetrics, appLogger)
	scheduleUC := usecase.NewScheduleUseCase(txManager, scheduleRepo, journalRepo, idGen, retrier, appMetrics, appLogger)
	ledgerUC := usecase.NewLedgerUseCase(accountRepo, journalRepo)
	reportUC := usecase.NewReportUseCase(accountRepo, journalRepo, documentRepo, cache, cfg.ReportCacheTTL, appMetrics, appLogger)

	// Initialize handlers
	accountHandler := handler.NewAccountHandler(ledgerUC)
	templateHandler := handler.NewTemplateHandler(templateUC)
	scheduleHandler := handler.NewScheduleHandler(scheduleUC)
	reportHandler := handler.NewReportHandler(ledgerUC, reportUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:  accountHandler,
		TemplateHandler: templateHandler,
		ScheduleHandler: scheduleHandler,
		ReportHandler:   reportHandler,
		HealthHandler:   healthHandler,
		Logger:          appLogger,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server stopped")
}

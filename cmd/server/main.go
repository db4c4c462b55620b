package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/discussion-activity-api/internal/api"
	"github.com/discussion-activity-api/internal/config"
	"github.com/discussion-activity-api/internal/database"
	"github.com/discussion-activity-api/internal/metrics"
	"github.com/discussion-activity-api/internal/repository"
	"github.com/discussion-activity-api/internal/service"
	"github.com/discussion-activity-api/pkg/logger"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Initialize logger
	log := logger.New()
	log.Info().Msg("Starting Discussion Activity API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Redis is only needed by the redis changelog backend
	var rdb *redis.Client
	if cfg.Discussion.ChangelogBackend == config.ChangelogRedis {
		rdb, err = repository.NewRedisClient(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to redis")
		}
		defer rdb.Close()
	}

	// Initialize repositories
	repos, err := repository.New(db, rdb, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize repositories")
	}
	log.Info().
		Str("changelog_backend", cfg.Discussion.ChangelogBackend).
		Int("max_scan_lines", cfg.Discussion.MaxScanLines).
		Msg("Repositories initialized")

	// Initialize services
	m := metrics.New()
	services, err := service.NewServices(repos, cfg, m, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}

	// Initialize router
	router := api.NewRouter(services, cfg, m, db.HealthCheck, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}

package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/adapter/cache"
	httpadapter "github.com/mhansen003/servicing-ticket-analysis-sub001/internal/adapter/http"
	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/adapter/persistence"
	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/adapter/snapshot"
	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/config"
	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/logger"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logger
	structuredLogger := logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "ticket-analytics",
	})
	structuredLogger.Info(ctx, "Application starting", map[string]interface{}{
		"env": cfg.Environment,
	})

	// Connect to database
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		structuredLogger.Error(ctx, "Failed to connect to database", err, nil)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		structuredLogger.Error(ctx, "Failed to ping database", err, nil)
		log.Fatalf("Failed to ping database: %v", err)
	}
	structuredLogger.Info(ctx, "Database connection established", nil)

	// Initialize the response cache (Redis-backed or noop based on config)
	responseCache := cache.NewCache(ctx, cache.CacheConfig{
		Enabled:  cfg.CacheEnabled,
		RedisURL: cfg.RedisURL,
	}, structuredLogger)

	// Initialize adapters
	ticketRepo := persistence.NewPostgresTicketRepository(db)
	snapshotStore := snapshot.NewFileStore(cfg.SnapshotDir, structuredLogger)

	// Create server
	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Host:               cfg.ServerHost,
		Port:               cfg.ServerPort,
		ReadTimeout:        15 * time.Second,
		WriteTimeout:       30 * time.Second,
		IdleTimeout:        60 * time.Second,
		CacheTTL:           cfg.CacheTTL,
		DefaultPageSize:    cfg.DefaultPageSize,
		MaxPageSize:        cfg.MaxPageSize,
		CORSEnabled:        cfg.CORSEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}, ticketRepo, snapshotStore, responseCache, structuredLogger)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			structuredLogger.Error(ctx, "Server failed to start", err, nil)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "Server forced to shutdown", err, nil)
	}
	structuredLogger.Info(ctx, "Server exited", nil)
}

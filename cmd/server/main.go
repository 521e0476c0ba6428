package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gradepilot/evaluator-api/internal/config"
	"github.com/gradepilot/evaluator-api/internal/db"
	"github.com/gradepilot/evaluator-api/internal/evaluation"
	"github.com/gradepilot/evaluator-api/internal/extraction"
	"github.com/gradepilot/evaluator-api/internal/providers"
	"github.com/gradepilot/evaluator-api/internal/questions"
	"github.com/gradepilot/evaluator-api/internal/registry"
	"github.com/gradepilot/evaluator-api/internal/relevance"
	"github.com/gradepilot/evaluator-api/internal/resolver"
	"github.com/gradepilot/evaluator-api/internal/router"
	"github.com/gradepilot/evaluator-api/internal/services"
	"github.com/gradepilot/evaluator-api/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel)

	// Initialize database
	database, err := db.NewSQLiteDB(cfg.DBFile)
	if err != nil {
		logger.Fatal("Failed to open database", "error", err)
	}
	defer database.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.DBFile); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	// Provider registry and adapters
	providerStore := registry.NewStore(database)
	reg := registry.New(providerStore, cfg.RegistryRefreshInterval)
	factory := providers.NewFactory(cfg, logger)

	// Document resolution
	documents, err := resolver.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize document resolver", "error", err)
	}

	// Pipeline stages
	orchestrator := extraction.NewOrchestrator(reg, factory, documents, logger)
	validator := relevance.NewValidator(reg, factory, logger)
	evaluator := evaluation.NewService(reg, factory, logger)

	questionStore := questions.NewStore(database)
	pipeline := services.NewPipeline(questionStore, orchestrator, validator, evaluator, logger)

	// Setup HTTP router
	handler := router.NewRouter(pipeline, providerStore, reg, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}

package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"forum-bans/internal/config"
	"forum-bans/internal/handler"
	"forum-bans/internal/logger"
	"forum-bans/internal/service"
	"forum-bans/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	// Define command line flags
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	flag.Parse()

	// Optional .env overlay for local development
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging first
	if err := logger.Setup(cfg); err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	// Initialize database
	if err := storage.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	store := storage.NewStore(storage.GetDB())
	if err := store.Migrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	banService := service.NewBanService(store)
	queryService := service.NewQueryService(store)
	banHandler := handler.NewBanHandler(banService, queryService)

	router := handler.SetupRouter(cfg, banHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.ListenPort,
		Handler: router,
	}

	// Start HTTP server in a goroutine
	go func() {
		logger.Infof("Server listening on port %s", cfg.Server.ListenPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Create a channel for receiving OS signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Wait for signal
	sig := <-sigChan
	logger.Infof("Received signal: %v, shutting down...", sig)

	// Gracefully shutdown server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP server shutdown error: %v", err)
	}

	logger.Infof("Server gracefully stopped")
}

/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the expense tracker API server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags and load configuration
  2. Initialize SQLite store (migrates schema, seeds default categories)
  3. Create API handler with dependencies
  4. Start the overdue debt sweeper
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to config.yaml (optional; defaults + env vars apply
           when absent)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the sweeper and close the database
  4. Exit

EXAMPLES:
  # Run with defaults (expenses.db in working directory)
  ./server

  # Run with a config file
  ./server -config=./config.yaml

  # Override via environment
  EXPENSE_SERVER_PORT=3000 EXPENSE_JWT_SECRET=s3cret ./server

SEE ALSO:
  - config/config.go: Configuration loading
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Abdalrhmankhashashneh/expense-tracker-api/api"
	"github.com/Abdalrhmankhashashneh/expense-tracker-api/config"
	"github.com/Abdalrhmankhashashneh/expense-tracker-api/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize store
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize handler
	handler := api.NewHandler(store, store, cfg.JWT.Secret, cfg.TokenTTL())

	// Background sweeper marks debts overdue when their due date passes
	sweeper := api.NewOverdueSweeper(store)
	sweeper.CheckInterval = cfg.SweepInterval()
	sweeper.Enabled = cfg.Sweeper.Enabled
	sweeper.Start()
	defer sweeper.Stop()

	// Create router
	router := api.NewRouter(handler, cfg.Server.AllowedOrigins)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", cfg.Server.Port)
		log.Printf("📊 API available at http://localhost:%d/api", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

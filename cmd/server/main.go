package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asakaida/todomap/internal/handlers"
	"github.com/asakaida/todomap/internal/infrastructure/config"
	"github.com/asakaida/todomap/internal/infrastructure/database"
	"github.com/asakaida/todomap/internal/infrastructure/metrics"
	"github.com/asakaida/todomap/internal/repositories"
	"github.com/asakaida/todomap/internal/repositories/postgres"
	"github.com/asakaida/todomap/internal/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultEnv = "dev"

func main() {
	// Get environment from ENV variable or use default
	env := os.Getenv("ENV")
	if env == "" {
		env = defaultEnv
	}

	// Initialize configuration
	if err := config.InitConfig(env); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	pg, err := database.NewPostgres(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pg.Close()

	log.Printf("Connected to database: %s@%s:%d/%s",
		cfg.Database.User,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Database)

	// Relationship row defaults come from configuration, not globals
	defaults := repositories.RelationshipDefaults{
		RelationshipType: cfg.General.DefaultRelationshipType,
		SortOrder:        cfg.General.DefaultSortOrder,
		IsActive:         cfg.General.DefaultIsActive,
	}

	// Initialize repositories
	relationshipRepo := postgres.NewPostgresRelationshipRepository(pg.DB, defaults)
	userRepo := postgres.NewPostgresUserRepository(pg.DB)
	todoRepo := postgres.NewPostgresTodoRepository(pg.DB)

	// Initialize services
	userService := services.NewUserService(userRepo, todoRepo, relationshipRepo, defaults)
	todoService := services.NewTodoService(todoRepo, userRepo, relationshipRepo, defaults)

	// Initialize metrics
	collector := metrics.NewCollector()
	exporter := metrics.NewPrometheusExporter()

	router := handlers.NewRouter(handlers.RouterConfig{
		Users:    userService,
		Todos:    todoService,
		Health:   pg,
		Metrics:  collector,
		Exporter: exporter,
	})

	apiServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler: metricsMux,
	}

	// Start servers in goroutines
	serverErrors := make(chan error, 2)
	go func() {
		log.Printf("HTTP server listening on %s", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()
	go func() {
		log.Printf("Metrics server listening on %s", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("metrics server error: %w", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErrors:
		log.Fatalf("Server error: %v", err)
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
		log.Println("Initiating graceful shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Metrics server shutdown error: %v", err)
		}

		// Close database connection
		if err := pg.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
		}

		log.Println("Shutdown complete")
	}
}

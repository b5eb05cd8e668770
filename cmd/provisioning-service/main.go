// Package main is the entry point for the Provisioning Service.
// It serves the SCIM 2.0 resource endpoints and the login reconciliation
// endpoint over a shared user directory.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dirbridge/dirbridge/internal/common/config"
	"github.com/dirbridge/dirbridge/internal/common/database"
	"github.com/dirbridge/dirbridge/internal/common/logger"
	"github.com/dirbridge/dirbridge/internal/common/middleware"
	"github.com/dirbridge/dirbridge/internal/directory"
	"github.com/dirbridge/dirbridge/internal/login"
	"github.com/dirbridge/dirbridge/internal/scim"
)

var (
	Version    = "dev"
	BuildTime  = "unknown"
	CommitHash = "unknown"
)

func main() {
	// Initialize logger
	log := logger.New()
	defer log.Sync()

	log.Info("Starting Provisioning Service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", CommitHash),
	)

	// Load configuration
	cfg, err := config.Load("provisioning-service")
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize the directory store. An empty database_url selects the
	// in-memory store for local development.
	var store directory.Store
	var db *database.PostgresDB
	if cfg.DatabaseURL != "" {
		db, err = database.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		pgStore := directory.NewPostgresStore(db.Pool)
		if err := pgStore.EnsureSchema(context.Background()); err != nil {
			log.Fatal("Failed to ensure database schema", zap.Error(err))
		}
		store = pgStore
	} else {
		log.Warn("No database_url configured, using in-memory store")
		store = directory.NewMemoryStore()
	}

	// Redis is optional; without it the rate limiter fails open.
	var redis *database.RedisClient
	if cfg.RedisURL != "" {
		redis, err = database.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redis.Close()
	}

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(logger.GinMiddleware(log))
	router.Use(middleware.RequestID())
	if cfg.EnableRateLimit {
		var client *goredis.Client
		if redis != nil {
			client = redis.Client
		}
		router.Use(middleware.DistributedRateLimit(client, middleware.RateLimitConfig{
			Requests:      cfg.RateLimitRequests,
			Window:        time.Duration(cfg.RateLimitWindow) * time.Second,
			LoginRequests: cfg.LoginRateLimitRequests,
			LoginWindow:   time.Duration(cfg.LoginRateLimitWindow) * time.Second,
		}, log))
	}
	router.Use(middleware.PrometheusMetrics("provisioning-service"))

	// Metrics endpoint
	router.GET("/metrics", middleware.MetricsHandler())

	// Register SCIM and login routes
	scimService := scim.NewService(store, log)
	scimService.RegisterRoutes(router, cfg.SCIMToken)

	reconciler := login.NewReconciler(store, log)
	login.RegisterRoutes(router, reconciler, cfg.SCIMToken)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "provisioning-service",
			"version": Version,
		})
	})

	// Readiness check endpoint
	router.GET("/ready", func(c *gin.Context) {
		status := gin.H{"status": "ready", "postgres": "ok", "redis": "ok"}
		if db != nil {
			if err := db.Ping(); err != nil {
				status["status"] = "not ready"
				status["postgres"] = err.Error()
				c.JSON(http.StatusServiceUnavailable, status)
				return
			}
		} else {
			status["postgres"] = "in-memory"
		}
		if redis != nil {
			if err := redis.Ping(); err != nil {
				status["redis"] = "unhealthy"
			}
		} else {
			status["redis"] = "disabled"
		}
		c.JSON(http.StatusOK, status)
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", zap.Int("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

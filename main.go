package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/lms-service/internal/config"
	"github.com/SAP-F-2025/lms-service/internal/events"
	"github.com/SAP-F-2025/lms-service/internal/handlers"
	"github.com/SAP-F-2025/lms-service/internal/repositories/cloudinary"
	"github.com/SAP-F-2025/lms-service/internal/repositories/payment"
	"github.com/SAP-F-2025/lms-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/SAP-F-2025/lms-service/internal/validator"
	"github.com/SAP-F-2025/lms-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	// Initialize database
	db, err := pkg.InitDatabase(cfg, slogLogger)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis (if configured)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, continuing without cache", "error", err)
			redisClient = nil
		}
	}

	// Event publisher: Kafka when brokers are configured, in-process otherwise
	var publisher events.EventPublisher
	if len(cfg.Events.KafkaBrokers) > 0 {
		publisher, err = events.NewKafkaEventPublisher(cfg.Events.KafkaBrokers, cfg.Events.TopicPrefix, slogLogger)
		if err != nil {
			log.Fatalf("Failed to initialize event publisher: %v", err)
		}
	} else {
		publisher, _ = events.NewInMemoryEventPublisher(cfg.Events.TopicPrefix, slogLogger)
	}

	// Initialize repositories
	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
		Media: cloudinary.NewMediaCloudinary(cloudinary.CloudinaryConfig{
			BaseURL:   cfg.Media.BaseURL,
			CloudName: cfg.Media.CloudName,
			APIKey:    cfg.Media.APIKey,
			APISecret: cfg.Media.APISecret,
			Timeout:   cfg.Media.Timeout,
		}, slogLogger),
		PaymentGateway: payment.NewPaymentStripe(payment.StripeConfig{
			SecretKey:     cfg.Stripe.SecretKey,
			WebhookSecret: cfg.Stripe.WebhookSecret,
			Currency:      cfg.Stripe.Currency,
			SuccessURL:    cfg.Stripe.SuccessURL,
			CancelURL:     cfg.Stripe.CancelURL,
		}),
	})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	// Initialize services
	serviceManager := services.NewServiceManager(db, repoManager.GetRepository(), slogLogger, validator.New(), services.ServiceManagerConfig{
		Auth:      cfg.Auth,
		Publisher: publisher,
	})
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Stale pending purchase sweep
	var sweeper *services.PurchaseSweeper
	if cfg.Scheduler.Enabled {
		sweeper = services.NewPurchaseSweeper(serviceManager.Purchase(), slogLogger, cfg.Scheduler.SweepSpec, cfg.Scheduler.PendingTTL)
		if err := sweeper.Start(); err != nil {
			log.Fatalf("Failed to start purchase sweeper: %v", err)
		}
	}

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger, handlers.MiddlewareConfig{
		AllowedOrigin: cfg.ClientURL,
		RateLimit:     cfg.Server.RateLimit,
		Redis:         redisClient,
	})
	handlers.NewHandlerManager(serviceManager, logger, cfg.Auth).SetupRoutes(router)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	if sweeper != nil {
		sweeper.Stop(ctx)
	}

	// Closes the event publisher
	if err := serviceManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}

	// Closes the database and Redis connections
	if err := repoManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to close repositories", "error", err)
	}

	logger.Info("Server exited")
}

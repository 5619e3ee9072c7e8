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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pet-platform/service-registry/internal/application"
	"github.com/pet-platform/service-registry/internal/config"
	"github.com/pet-platform/service-registry/internal/events"
	"github.com/pet-platform/service-registry/internal/handler"
	"github.com/pet-platform/service-registry/internal/integration/wetclinic"
	"github.com/pet-platform/service-registry/internal/metrics"
	"github.com/pet-platform/service-registry/internal/platform/database"
	"github.com/pet-platform/service-registry/internal/platform/health"
	platformkafka "github.com/pet-platform/service-registry/internal/platform/kafka"
	"github.com/pet-platform/service-registry/internal/platform/logger"
	"github.com/pet-platform/service-registry/internal/platform/middleware"
	"github.com/pet-platform/service-registry/internal/platform/storage"
	"github.com/pet-platform/service-registry/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-registry")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-registry",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.PetModel{}, &repository.OwnerModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(dbConfig.DatabaseURL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize Kafka producer
	kafkaProducer := platformkafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize object store
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	objectStore, err := storage.NewMinioStore(startupCtx, storage.MinioConfig{
		Endpoint:  cfg.Minio.Endpoint,
		AccessKey: cfg.Minio.AccessKey,
		SecretKey: cfg.Minio.SecretKey,
		Bucket:    cfg.Minio.Bucket,
		UseSSL:    cfg.Minio.UseSSL,
	}, log)
	startupCancel()
	if err != nil {
		log.Fatal("failed to connect to object store", zap.Error(err))
	}

	// Initialize repositories
	petRepo := repository.NewGormPetRepository(db)
	ownerRepo := repository.NewGormOwnerRepository(db)

	// Initialize wet clinic integration
	clinic := wetclinic.NewClient(wetclinic.Config{
		BaseURL: cfg.WetClinic.BaseURL,
		Timeout: cfg.WetClinic.Timeout,
	}, kafkaProducer, log)

	// Initialize metrics
	petMetrics := metrics.NewPetMetrics()

	// Initialize application services
	ownerService := application.NewOwnerService(ownerRepo)

	// Seed the configured default owner so pet reads can always enrich
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = ownerService.EnsureExists(seedCtx, cfg.DefaultOwnerID, cfg.DefaultOwnerName)
	seedCancel()
	if err != nil {
		log.Fatal("failed to seed default owner", zap.Error(err))
	}

	petService := application.NewPetService(
		petRepo,
		ownerService,
		clinic,
		objectStore,
		petMetrics,
		cfg.DefaultOwnerID,
		cfg.DisallowedNames,
		log,
	)

	// Initialize and start the registration confirmation consumer
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "registry-service"
	confirmationConsumer := events.NewRegistrationConfirmationConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		petService,
		log,
	)
	defer func() { _ = confirmationConsumer.Close() }()

	go func() {
		log.Info("starting registration confirmation consumer")
		if err := confirmationConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("registration confirmation consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	petHandler := handler.NewPetHandler(petService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check and metrics routes
	healthHandler := health.NewHandler(db, "service-registry")
	healthHandler.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Register routes
	petHandler.RegisterRoutes(&router.RouterGroup, cfg.APIKey)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-registry...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-registry stopped")
}

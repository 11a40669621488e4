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

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/venue-reservation/internal/di"
	"github.com/prohmpiriya/venue-reservation/internal/handler"
	"github.com/prohmpiriya/venue-reservation/internal/service"
	"github.com/prohmpiriya/venue-reservation/pkg/config"
	"github.com/prohmpiriya/venue-reservation/pkg/database"
	"github.com/prohmpiriya/venue-reservation/pkg/logger"
	"github.com/prohmpiriya/venue-reservation/pkg/middleware"
	"github.com/prohmpiriya/venue-reservation/pkg/redis"
	"github.com/prohmpiriya/venue-reservation/pkg/telemetry"
	"go.uber.org/zap"
)

const serviceName = "venue-reservation-api"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       cfg.App.LogLevel,
		ServiceName: serviceName,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Venue Reservation API...")

	ctx := context.Background()

	// Initialize OpenTelemetry
	telemetryCfg := &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}
	if _, err := telemetry.Init(ctx, telemetryCfg); err != nil {
		appLog.Warn("Failed to initialize telemetry", zap.Error(err))
	} else if telemetryCfg.Enabled {
		appLog.Info("Telemetry initialized", zap.String("collector", telemetryCfg.CollectorAddr))
	}
	defer telemetry.Shutdown(ctx)

	// Initialize database connection
	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MinIdleConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
		EnableTracing:   cfg.OTel.Enabled,
		ServiceName:     serviceName,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal("Database connection failed", zap.Error(err))
	}
	defer db.Close()
	appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", dbCfg.MinConns, dbCfg.MaxConns))

	// Initialize Redis connection (optional - city cache, rate limiting and
	// idempotency are disabled without it)
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisCfg := &redis.Config{
			Host:          cfg.Redis.Host,
			Port:          cfg.Redis.Port,
			Password:      cfg.Redis.Password,
			DB:            cfg.Redis.DB,
			PoolSize:      cfg.Redis.PoolSize,
			MinIdleConns:  cfg.Redis.MinIdleConns,
			DialTimeout:   cfg.Redis.DialTimeout,
			ReadTimeout:   cfg.Redis.ReadTimeout,
			WriteTimeout:  cfg.Redis.WriteTimeout,
			MaxRetries:    3,
			RetryInterval: time.Second,
		}
		redisClient, err = redis.NewClient(ctx, redisCfg)
		if err != nil {
			appLog.Warn("Redis connection failed (caching disabled)", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			appLog.Info("Redis connected", zap.String("addr", redisCfg.Addr()))
		}
	}

	// Initialize event publisher (optional - falls back to no-op)
	var publisher service.EventPublisher = service.NewNoOpEventPublisher()
	if cfg.Kafka.Enabled {
		kafkaPublisher, err := service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.Topic,
			ServiceName: serviceName,
			ClientID:    cfg.Kafka.ClientID,
		})
		if err != nil {
			appLog.Warn("Kafka connection failed (events will not be published)", zap.Error(err))
		} else {
			publisher = kafkaPublisher
			appLog.Info("Kafka publisher connected", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	}
	defer publisher.Close()

	var geocoder service.Geocoder = service.NoOpGeocoder{}
	if cfg.Geocoding.Enabled {
		geocoder = service.NewNominatimGeocoder(&service.GeocoderConfig{
			BaseURL:    cfg.Geocoding.BaseURL,
			UserAgent:  cfg.Geocoding.UserAgent,
			Timeout:    cfg.Geocoding.Timeout,
			MaxRetries: cfg.Geocoding.MaxRetries,
		})
	}

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:        db,
		Redis:     redisClient,
		Publisher: publisher,
		Geocoder:  geocoder,
		Scoring:   cfg.Scoring,
		RateLimit: cfg.RateLimit,
	})

	// Bring stored statuses up to date before serving
	reconcileTimeout := cfg.Reconciler.Timeout
	if reconcileTimeout <= 0 {
		reconcileTimeout = 2 * time.Minute
	}
	startupCtx, cancelStartup := context.WithTimeout(ctx, reconcileTimeout)
	if changed, err := container.Reconciler.ReconcileAll(startupCtx); err != nil {
		appLog.Warn("Startup status reconciliation failed", zap.Error(err))
	} else {
		appLog.Info("Startup status reconciliation done", zap.Int("changed", changed))
	}
	cancelStartup()

	if cfg.Reconciler.Schedule != "" {
		scheduler, err := service.NewReconcileScheduler(container.Reconciler, cfg.Reconciler.Schedule, cfg.Reconciler.Timeout)
		if err != nil {
			appLog.Fatal("Invalid reconciler schedule", zap.Error(err))
		}
		scheduler.Start()
		defer scheduler.Stop()
		appLog.Info("Status reconciler scheduled", zap.String("schedule", cfg.Reconciler.Schedule))
	}

	// Setup Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := handler.RegisterValidators(); err != nil {
		appLog.Fatal("Failed to register validators", zap.Error(err))
	}

	routerCfg := handler.RouterConfig{
		Logger: appLog,
		JWT: &middleware.JWTConfig{
			Secret: cfg.JWT.Secret,
			Issuer: cfg.JWT.Issuer,
		},
		ReservationGuards: container.ReservationGuards(),
	}
	if cfg.OTel.Enabled {
		routerCfg.ServiceName = serviceName
	}
	router := handler.NewRouter(routerCfg, container.Handlers())

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Venue Reservation API listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server forced to shutdown", zap.Error(err))
	}

	appLog.Info("Server exited gracefully")
}

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prohmpiriya/venue-reservation/internal/repository"
	"github.com/prohmpiriya/venue-reservation/internal/service"
	"github.com/prohmpiriya/venue-reservation/pkg/config"
	"github.com/prohmpiriya/venue-reservation/pkg/database"
	"github.com/prohmpiriya/venue-reservation/pkg/logger"
	"go.uber.org/zap"
)

const serviceName = "status-reconciler"

func main() {
	once := flag.Bool("once", false, "reconcile a single time and exit, ignoring RECONCILER_SCHEDULE")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
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
	appLog.Info("Starting Status Reconciler...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection
	dbCfg := &database.PostgresConfig{
		Host:          cfg.Database.Host,
		Port:          cfg.Database.Port,
		User:          cfg.Database.User,
		Password:      cfg.Database.Password,
		Database:      cfg.Database.DBName,
		SSLMode:       cfg.Database.SSLMode,
		MaxConns:      4,
		MinConns:      1,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	appLog.Info("Database connected")

	// Status changes are announced when Kafka is configured
	var publisher service.EventPublisher = service.NewNoOpEventPublisher()
	if cfg.Kafka.Enabled {
		kafkaPublisher, err := service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.Topic,
			ServiceName: serviceName,
			ClientID:    cfg.Kafka.ClientID + "-reconciler",
		})
		if err != nil {
			appLog.Warn("Kafka connection failed (status changes will not be published)", zap.Error(err))
		} else {
			publisher = kafkaPublisher
		}
	}
	defer publisher.Close()

	reconciler := service.NewReconciler(repository.NewPostgresEventRepository(db.Pool()), publisher)

	if *once || cfg.Reconciler.Schedule == "" {
		timeout := cfg.Reconciler.Timeout
		if timeout <= 0 {
			timeout = 2 * time.Minute
		}
		runCtx, cancelRun := context.WithTimeout(ctx, timeout)
		defer cancelRun()
		changed, err := reconciler.ReconcileAll(runCtx)
		if err != nil {
			appLog.Error("Status reconciliation failed", zap.Error(err))
			os.Exit(1)
		}
		appLog.Info("Status reconciliation done", zap.Int("changed", changed))
		return
	}

	scheduler, err := service.NewReconcileScheduler(reconciler, cfg.Reconciler.Schedule, cfg.Reconciler.Timeout)
	if err != nil {
		appLog.Fatal("Invalid reconciler schedule", zap.Error(err))
	}
	scheduler.Start()
	appLog.Info("Status reconciler started", zap.String("schedule", cfg.Reconciler.Schedule))

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("Shutting down reconciler...")
	// Stop returns a context that is done once the running job finishes
	<-scheduler.Stop().Done()

	appLog.Info("Reconciler exited gracefully")
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/prohmpiriya/venue-reservation/internal/repository"
	"github.com/prohmpiriya/venue-reservation/pkg/logger"
	"github.com/prohmpiriya/venue-reservation/pkg/telemetry"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// statusReconciler implements Reconciler
type statusReconciler struct {
	eventRepo repository.EventRepository
	status    *statusRefresher
}

// NewReconciler creates a new Reconciler
func NewReconciler(eventRepo repository.EventRepository, publisher EventPublisher) Reconciler {
	return &statusReconciler{
		eventRepo: eventRepo,
		status:    newStatusRefresher(eventRepo, publisher),
	}
}

// ReconcileAll derives the status of every event and persists the changes
func (r *statusReconciler) ReconcileAll(ctx context.Context) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reconciler.reconcile_all")
	defer span.End()

	events, err := r.eventRepo.List(ctx, &repository.EventFilter{})
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, fmt.Errorf("failed to load events: %w", err)
	}

	changed, err := r.status.refresh(ctx, events...)
	span.SetAttributes(
		attribute.Int("events", len(events)),
		attribute.Int("changed", changed),
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return changed, err
	}
	return changed, nil
}

// NewReconcileScheduler runs ReconcileAll on a cron schedule. Overlapping
// runs are skipped. The caller starts and stops the returned scheduler.
func NewReconcileScheduler(reconciler Reconciler, schedule string, timeout time.Duration) (*cron.Cron, error) {
	if timeout <= 0 {
		timeout = time.Minute
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		log := logger.Get()
		start := time.Now()
		changed, err := reconciler.ReconcileAll(ctx)
		if err != nil {
			log.Error("scheduled reconciliation failed", zap.Error(err))
			return
		}
		log.Info("scheduled reconciliation finished",
			zap.Int("changed", changed),
			zap.Duration("took", time.Since(start)),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reconciler schedule %q: %w", schedule, err)
	}
	return c, nil
}

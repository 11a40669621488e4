package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/venue-reservation/internal/domain"
	"github.com/prohmpiriya/venue-reservation/internal/repository"
	"github.com/prohmpiriya/venue-reservation/pkg/logger"
	"go.uber.org/zap"
)

// Reasons attached to status change messages
const (
	reasonDerived         = "derived"
	reasonReservation     = "reservation"
	reasonLocalityDeleted = "locality_deleted"
	reasonRoomDeleted     = "room_deleted"
)

// statusRefresher derives event statuses and persists only the ones that changed
type statusRefresher struct {
	eventRepo repository.EventRepository
	publisher EventPublisher
	now       func() time.Time
}

func newStatusRefresher(eventRepo repository.EventRepository, publisher EventPublisher) *statusRefresher {
	if publisher == nil {
		publisher = NewNoOpEventPublisher()
	}
	return &statusRefresher{
		eventRepo: eventRepo,
		publisher: publisher,
		now:       time.Now,
	}
}

// refresh updates each event in place and returns how many were persisted
func (r *statusRefresher) refresh(ctx context.Context, events ...*domain.Event) (int, error) {
	now := r.now()
	changed := 0
	for _, event := range events {
		previous := event.Status
		if !event.Refresh(now) {
			continue
		}
		if err := r.eventRepo.UpdateStatus(ctx, event.ID, event.Status); err != nil {
			return changed, fmt.Errorf("failed to persist status of event %s: %w", event.ID, err)
		}
		changed++
		r.announce(ctx, event.ID, previous, event.Status, reasonDerived)
	}
	return changed, nil
}

// announce publishes a status change; failures are logged, never returned
func (r *statusRefresher) announce(ctx context.Context, eventID string, from, to domain.EventStatus, reason string) {
	if from == to {
		return
	}
	change := &domain.StatusChangeMessage{EventID: eventID, From: from, To: to, Reason: reason}
	if err := r.publisher.PublishStatusChanged(ctx, change); err != nil {
		logger.Get().WithContext(ctx).Warn("failed to publish status change",
			zap.String("event_id", eventID),
			zap.String("to", string(to)),
			zap.Error(err),
		)
	}
}

// announceAll publishes the changes reported by a cascading repository write
func (r *statusRefresher) announceAll(ctx context.Context, changes []repository.StatusChange, reason string) {
	for _, c := range changes {
		r.announce(ctx, c.EventID, c.From, c.To, reason)
	}
}

// requireRole fails for anonymous callers and callers of another role
func requireRole(identity domain.Identity, role domain.Role) error {
	if identity.UserID == "" {
		return domain.ErrUnauthenticated
	}
	if !identity.Is(role) {
		return domain.ErrWrongRole
	}
	return nil
}

// validateIDs rejects anything that is not a UUID
func validateIDs(ids ...string) error {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return fmt.Errorf("%w: %q", domain.ErrInvalidID, id)
		}
	}
	return nil
}

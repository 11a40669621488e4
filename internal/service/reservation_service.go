package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/prohmpiriya/venue-reservation/internal/domain"
	"github.com/prohmpiriya/venue-reservation/internal/repository"
	"github.com/prohmpiriya/venue-reservation/pkg/logger"
	"github.com/prohmpiriya/venue-reservation/pkg/telemetry"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// reservationService implements ReservationService
type reservationService struct {
	reservationRepo repository.ReservationRepository
	eventRepo       repository.EventRepository
	personRepo      repository.PersonRepository
	publisher       EventPublisher
	status          *statusRefresher
}

// NewReservationService creates a new ReservationService
func NewReservationService(
	reservationRepo repository.ReservationRepository,
	eventRepo repository.EventRepository,
	personRepo repository.PersonRepository,
	publisher EventPublisher,
) ReservationService {
	status := newStatusRefresher(eventRepo, publisher)
	return &reservationService{
		reservationRepo: reservationRepo,
		eventRepo:       eventRepo,
		personRepo:      personRepo,
		publisher:       status.publisher,
		status:          status,
	}
}

// CreateReservation admits the user while holding the event lock. The
// status derived from the locked count is the only capacity check; a
// status change observed on the way is persisted even when admission fails.
func (s *reservationService) CreateReservation(ctx context.Context, identity domain.Identity, eventID string) (*domain.Reservation, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.create")
	defer span.End()

	if err := requireRole(identity, domain.RoleRegisteredUser); err != nil {
		span.SetStatus(codes.Error, "wrong role")
		return nil, err
	}
	if err := validateIDs(eventID); err != nil {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, err
	}
	span.SetAttributes(
		telemetry.AttrUserID.String(identity.UserID),
		telemetry.AttrEventID.String(eventID),
	)

	if err := s.personRepo.Ensure(ctx, identity); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	now := s.status.now()
	var (
		reservation   *domain.Reservation
		rejected      error
		stored, final domain.EventStatus
	)

	err := s.reservationRepo.WithEventLock(ctx, eventID, func(tx repository.AdmissionTx, event *domain.Event) error {
		if event == nil {
			return domain.ErrEventNotFound
		}
		stored = event.Status
		defer func() { final = event.Status }()

		if event.Refresh(now) {
			if err := tx.SetEventStatus(ctx, event.Status); err != nil {
				return err
			}
		}

		switch event.Status {
		case domain.EventStatusInactive:
			rejected = domain.ErrEventInactive
			return nil
		case domain.EventStatusFull:
			rejected = domain.ErrEventFull
			return nil
		}

		exists, err := tx.HasActiveReservation(ctx, identity.UserID)
		if err != nil {
			return err
		}
		if exists {
			rejected = domain.ErrDuplicateReservation
			return nil
		}

		candidate := &domain.Reservation{
			ID:              uuid.New().String(),
			UserID:          identity.UserID,
			EventID:         event.ID,
			ReservationDate: now,
			Status:          domain.ReservationStatusConfirmed,
		}
		if err := tx.InsertReservation(ctx, candidate); err != nil {
			return err
		}

		event.ReservationCount++
		if event.Refresh(now) {
			if err := tx.SetEventStatus(ctx, event.Status); err != nil {
				return err
			}
		}
		reservation = candidate
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.status.announce(ctx, eventID, stored, final, reasonReservation)

	if rejected != nil {
		span.SetStatus(codes.Error, rejected.Error())
		return nil, rejected
	}

	span.SetAttributes(telemetry.AttrReservationID.String(reservation.ID))
	if err := s.publisher.PublishReservationCreated(ctx, reservation); err != nil {
		logger.Get().WithContext(ctx).Warn("failed to publish reservation created",
			zap.String("reservation_id", reservation.ID),
			zap.Error(err),
		)
	}
	return reservation, nil
}

// getOwned loads a reservation and checks that it belongs to the caller
func (s *reservationService) getOwned(ctx context.Context, identity domain.Identity, id string) (*domain.Reservation, error) {
	if err := requireRole(identity, domain.RoleRegisteredUser); err != nil {
		return nil, err
	}
	if err := validateIDs(id); err != nil {
		return nil, err
	}
	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation == nil {
		return nil, domain.ErrReservationNotFound
	}
	if reservation.UserID != identity.UserID {
		return nil, domain.ErrAccessDenied
	}
	return reservation, nil
}

// CancelReservation marks the reservation CANCELLED, freeing its slot
func (s *reservationService) CancelReservation(ctx context.Context, identity domain.Identity, id string) (*domain.Reservation, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.cancel")
	defer span.End()
	span.SetAttributes(telemetry.AttrReservationID.String(id))

	reservation, err := s.getOwned(ctx, identity, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var (
		cancelled     *domain.Reservation
		stored, final domain.EventStatus
	)
	err = s.reservationRepo.WithEventLock(ctx, reservation.EventID, func(tx repository.AdmissionTx, event *domain.Event) error {
		current, err := tx.GetReservation(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrReservationNotFound
		}
		if current.Status == domain.ReservationStatusCancelled {
			return domain.ErrAlreadyCancelled
		}
		if err := tx.SetReservationStatus(ctx, id, domain.ReservationStatusCancelled); err != nil {
			return err
		}
		current.Status = domain.ReservationStatusCancelled
		cancelled = current

		if event == nil {
			return nil
		}
		stored = event.Status
		if event.ReservationCount > 0 {
			event.ReservationCount--
		}
		if event.Refresh(s.status.now()) {
			if err := tx.SetEventStatus(ctx, event.Status); err != nil {
				return err
			}
		}
		final = event.Status
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.status.announce(ctx, reservation.EventID, stored, final, reasonReservation)
	if err := s.publisher.PublishReservationCancelled(ctx, cancelled); err != nil {
		logger.Get().WithContext(ctx).Warn("failed to publish reservation cancelled",
			zap.String("reservation_id", cancelled.ID),
			zap.Error(err),
		)
	}
	return cancelled, nil
}

// DeleteReservation hard-deletes the caller's reservation
func (s *reservationService) DeleteReservation(ctx context.Context, identity domain.Identity, id string) error {
	if _, err := s.getOwned(ctx, identity, id); err != nil {
		return err
	}
	return s.reservationRepo.Delete(ctx, id)
}

// ListMyReservations lists the caller's reservations. The event status of
// each entry is the freshly derived one.
func (s *reservationService) ListMyReservations(ctx context.Context, identity domain.Identity) ([]*domain.ReservationDetails, error) {
	if err := requireRole(identity, domain.RoleRegisteredUser); err != nil {
		return nil, err
	}

	events, err := s.eventRepo.List(ctx, &repository.EventFilter{ReservedBy: identity.UserID})
	if err != nil {
		return nil, err
	}
	if _, err := s.status.refresh(ctx, events...); err != nil {
		return nil, err
	}
	statuses := make(map[string]domain.EventStatus, len(events))
	for _, e := range events {
		statuses[e.ID] = e.Status
	}

	details, err := s.reservationRepo.ListByUser(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	for _, d := range details {
		if status, ok := statuses[d.EventID]; ok {
			d.EventStatus = status
		}
	}
	if details == nil {
		details = []*domain.ReservationDetails{}
	}
	return details, nil
}

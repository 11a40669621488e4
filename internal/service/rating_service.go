package service

import (
	"context"

	"github.com/prohmpiriya/venue-reservation/internal/domain"
	"github.com/prohmpiriya/venue-reservation/internal/repository"
	"github.com/prohmpiriya/venue-reservation/pkg/logger"
	"github.com/prohmpiriya/venue-reservation/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// ratingService implements RatingService
type ratingService struct {
	ratingRepo      repository.RatingRepository
	reservationRepo repository.ReservationRepository
	eventRepo       repository.EventRepository
	personRepo      repository.PersonRepository
	publisher       EventPublisher
	status          *statusRefresher
}

// NewRatingService creates a new RatingService
func NewRatingService(
	ratingRepo repository.RatingRepository,
	reservationRepo repository.ReservationRepository,
	eventRepo repository.EventRepository,
	personRepo repository.PersonRepository,
	publisher EventPublisher,
) RatingService {
	status := newStatusRefresher(eventRepo, publisher)
	return &ratingService{
		ratingRepo:      ratingRepo,
		reservationRepo: reservationRepo,
		eventRepo:       eventRepo,
		personRepo:      personRepo,
		publisher:       status.publisher,
		status:          status,
	}
}

// loadEvent returns the event with a fresh status
func (s *ratingService) loadEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	if err := validateIDs(eventID); err != nil {
		return nil, err
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrEventNotFound
	}
	if _, err := s.status.refresh(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// RateEvent stores the rating and recomputes the organizer average in one
// transaction serialized per organizer
func (s *ratingService) RateEvent(ctx context.Context, identity domain.Identity, eventID string, rating int) (*domain.Reservation, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.rating.rate_event")
	defer span.End()
	span.SetAttributes(
		telemetry.AttrEventID.String(eventID),
		attribute.Int("rating", rating),
	)

	if err := requireRole(identity, domain.RoleRegisteredUser); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if rating < domain.MinRating || rating > domain.MaxRating {
		span.SetStatus(codes.Error, "rating out of range")
		return nil, domain.ErrInvalidRating
	}

	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if event.Status != domain.EventStatusInactive {
		span.SetStatus(codes.Error, "event not concluded")
		return nil, domain.ErrEventNotConcluded
	}

	reservation, err := s.reservationRepo.FindByUserAndEvent(ctx, identity.UserID, eventID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if reservation == nil || !reservation.IsActive() {
		span.SetStatus(codes.Error, "no reservation")
		return nil, domain.ErrNoReservation
	}

	var average *float64
	err = s.ratingRepo.WithOrganizerLock(ctx, event.OrganizerID, func(tx repository.RatingTx) error {
		if err := tx.SetReservationRating(ctx, reservation.ID, rating); err != nil {
			return err
		}
		ratings, err := tx.OrganizerRatings(ctx)
		if err != nil {
			return err
		}
		average = domain.MeanRating(ratings)
		return tx.SetOrganizerAverage(ctx, average)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	reservation.Rating = &rating

	message := &domain.RatingMessage{
		ReservationID: reservation.ID,
		UserID:        identity.UserID,
		EventID:       eventID,
		OrganizerID:   event.OrganizerID,
		Rating:        rating,
		OrganizerAvg:  average,
	}
	if err := s.publisher.PublishEventRated(ctx, message); err != nil {
		logger.Get().WithContext(ctx).Warn("failed to publish event rated",
			zap.String("event_id", eventID),
			zap.Error(err),
		)
	}
	return reservation, nil
}

// EventRatingStats summarizes an event's ratings
func (s *ratingService) EventRatingStats(ctx context.Context, eventID string) (*domain.RatingStats, error) {
	if _, err := s.loadEvent(ctx, eventID); err != nil {
		return nil, err
	}
	ratings, err := s.reservationRepo.EventRatings(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return domain.NewRatingStats(eventID, ratings), nil
}

// UserRating returns the caller's rating, 0 when there is none
func (s *ratingService) UserRating(ctx context.Context, identity domain.Identity, eventID string) (int, error) {
	if err := requireRole(identity, domain.RoleRegisteredUser); err != nil {
		return 0, err
	}
	if err := validateIDs(eventID); err != nil {
		return 0, err
	}
	reservation, err := s.reservationRepo.FindByUserAndEvent(ctx, identity.UserID, eventID)
	if err != nil {
		return 0, err
	}
	if reservation == nil || reservation.Rating == nil {
		return 0, nil
	}
	return *reservation.Rating, nil
}

// OrganizerRating returns the stored average of an organizer
func (s *ratingService) OrganizerRating(ctx context.Context, organizerID string) (*float64, error) {
	if err := validateIDs(organizerID); err != nil {
		return nil, err
	}
	person, err := s.personRepo.GetByID(ctx, organizerID)
	if err != nil {
		return nil, err
	}
	if person == nil || person.Organizer == nil {
		return nil, domain.ErrPersonNotFound
	}
	return person.Organizer.AverageRating, nil
}
